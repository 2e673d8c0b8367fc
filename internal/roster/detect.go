package roster

import (
	"fmt"
	"strings"
	"time"

	"league-dashboard/internal/constants"
	"league-dashboard/internal/riot"
)

// Sample is one member's poll result handed to the detectors.
type Sample struct {
	Key      string
	Cached   *Snapshot
	Snapshot Snapshot
	Now      time.Time
}

func (s Sample) cacheKey() string {
	return strings.ToLower(s.Key)
}

// TierState maps a member cache key to the last tier seen for them.
type TierState map[string]string

// DetectTierChange compares the member's current primary-queue tier against
// the last seen one and emits a promotion or demotion announcement when it
// moved on the ladder. The recorded tier is updated unconditionally so a
// change fires exactly once.
func DetectTierChange(state TierState, sample Sample) (TierState, []Announcement) {
	primary := PickPrimaryRank(sample.Snapshot.Ranked)
	if primary == nil || primary.Tier == "" {
		return state, nil
	}

	next := cloneMap(state)
	key := sample.cacheKey()
	currentTier := primary.Tier
	previousTier := state[key]
	next[key] = currentTier

	if previousTier == "" || previousTier == currentTier {
		return next, nil
	}

	delta := TierOrder(currentTier) - TierOrder(previousTier)
	if delta == 0 {
		return next, nil
	}

	direction, emoji := "promoted", "\U0001F973"
	if delta < 0 {
		direction, emoji = "demoted", "\U0001F940"
	}

	return next, []Announcement{{
		ID:        fmt.Sprintf("tier:%s:%s", key, currentTier),
		Emoji:     emoji,
		Message:   fmt.Sprintf("%s %s from %s to %s.", sample.Key, direction, previousTier, currentTier),
		CreatedAt: sample.Now.UnixMilli(),
	}}
}

// GoalState records (member, target rank) pairs that have already been
// announced so a completed goal never re-fires.
type GoalState map[string]bool

// DetectGoalCompletion emits a celebratory announcement the first time a
// member's current tier reaches an open goal's target rank, and returns the
// goal so the caller can mark it completed server-side.
func DetectGoalCompletion(state GoalState, sample Sample, goal *SkinGoal) (GoalState, []Announcement, *SkinGoal) {
	if goal == nil {
		return state, nil, nil
	}
	primary := PickPrimaryRank(sample.Snapshot.Ranked)
	if primary == nil || primary.Tier == "" {
		return state, nil, nil
	}

	targetOrder := TierOrder(goal.TargetRank)
	if targetOrder == 0 || TierOrder(primary.Tier) < targetOrder {
		return state, nil, nil
	}

	rewardKey := strings.ToLower(fmt.Sprintf("%s-%s", sample.cacheKey(), goal.TargetRank))
	if state[rewardKey] {
		return state, nil, nil
	}

	next := cloneMap(state)
	next[rewardKey] = true

	announcement := Announcement{
		ID:        "goal:" + rewardKey,
		Emoji:     "\U0001F973",
		Message:   fmt.Sprintf("%s hit %s and earned %s.", sample.Key, goal.TargetRank, goal.Skin),
		CreatedAt: sample.Now.UnixMilli(),
	}
	return next, []Announcement{announcement}, goal
}

// MatchState maps a member cache key to the last match id that went through
// the result detector.
type MatchState map[string]string

// DetectMatchResult announces a member's most recent ranked match when it is
// genuinely new: a different id than last time, newer activity than the
// cached snapshot, finished inside the trailing announcement window, and the
// member is not currently in a game (a stale "recent match" while a newer
// game runs must not fire). The match id is recorded even when the in-game
// guard suppresses the announcement, matching the long-standing behavior that
// such a match is skipped rather than announced late.
func DetectMatchResult(state MatchState, sample Sample) (MatchState, []Announcement) {
	if len(sample.Snapshot.MatchSummaries) == 0 {
		return state, nil
	}
	lastMatch := sample.Snapshot.MatchSummaries[0]
	if lastMatch.MatchID == "" {
		return state, nil
	}

	key := sample.cacheKey()
	previousMatchID := state[key]

	var cachedLast int64
	if sample.Cached != nil {
		cachedLast = sample.Cached.LastPlayed()
	}
	incomingLast := sample.Snapshot.LastPlayed()

	isNewer := incomingLast != 0
	if incomingLast != 0 && cachedLast != 0 {
		isNewer = incomingLast > cachedLast
	}

	matchEnd := lastMatch.GameCreation + lastMatch.GameDuration*1000
	justFinished := matchEnd > 0 && sample.Now.UnixMilli()-matchEnd < constants.AnnouncementWindow.Milliseconds()

	shouldAnnounce := isNewer && justFinished && !sample.Snapshot.inGame()
	if previousMatchID != "" {
		shouldAnnounce = shouldAnnounce && previousMatchID != lastMatch.MatchID
	}

	next := cloneMap(state)
	next[key] = lastMatch.MatchID

	if !shouldAnnounce {
		return next, nil
	}
	if !riot.IsRankedQueue(lastMatch.QueueID, lastMatch.QueueName) {
		return next, nil
	}

	createdAt := matchEnd
	if createdAt == 0 {
		createdAt = sample.Now.UnixMilli()
	}

	return next, []Announcement{{
		ID:        fmt.Sprintf("match:%s:%s", key, lastMatch.MatchID),
		Emoji:     resultEmoji(lastMatch.Win, lastMatch.Kills, lastMatch.Deaths, lastMatch.Assists),
		Message:   resultMessage(sample.Key, lastMatch.Win, lastMatch.Kills, lastMatch.Deaths, lastMatch.Assists, queueLabel(lastMatch.QueueName, lastMatch.GameMode)),
		CreatedAt: createdAt,
		QueueID:   lastMatch.QueueID,
		QueueName: lastMatch.QueueName,
	}}
}

func queueLabel(queueName, gameMode string) string {
	if queueName != "" {
		return queueName
	}
	if gameMode != "" {
		return gameMode
	}
	return "game"
}

func resultEmoji(win bool, kills, deaths, assists int) string {
	kda := matchKDA(kills, deaths, assists)
	switch {
	case win && kda >= 3 && kills+assists >= 10:
		return "\U0001F525"
	case !win && kda < 1:
		return "\U0001F480"
	case win:
		return "\U0001F973"
	default:
		return "\U0001F940"
	}
}

func resultMessage(key string, win bool, kills, deaths, assists int, queue string) string {
	kda := matchKDA(kills, deaths, assists)
	switch {
	case win && kda >= 3 && kills+assists >= 10:
		return fmt.Sprintf("%s popped off and won a %s match.", key, queue)
	case !win && kda < 1:
		return fmt.Sprintf("%s got stomped in a %s match.", key, queue)
	case win:
		return fmt.Sprintf("%s won a %s match.", key, queue)
	default:
		return fmt.Sprintf("%s lost a %s match.", key, queue)
	}
}

func matchKDA(kills, deaths, assists int) float64 {
	d := deaths
	if d < 1 {
		d = 1
	}
	return float64(kills+assists) / float64(d)
}

func cloneMap[V any](m map[string]V) map[string]V {
	next := make(map[string]V, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	return next
}
