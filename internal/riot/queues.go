package riot

import "strings"

var queueLabels = map[int]string{
	400:  "Normal Draft",
	420:  "Ranked Solo/Duo",
	430:  "Normal Blind",
	440:  "Ranked Flex",
	450:  "ARAM",
	1700: "Arena",
}

var rankedQueueIDs = map[int]bool{
	420: true,
	440: true,
}

// QueueName returns the display label for a queue id, or "" when unknown.
func QueueName(queueID int) string {
	return queueLabels[queueID]
}

// IsRankedQueue reports whether a match should count for ranked-only logic.
// Unknown queues fall back to a name check so renamed upstream queues still
// register as ranked.
func IsRankedQueue(queueID int, queueName string) bool {
	if rankedQueueIDs[queueID] {
		return true
	}
	return strings.Contains(strings.ToLower(queueName), "ranked")
}
