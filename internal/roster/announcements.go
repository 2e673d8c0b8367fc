package roster

import (
	"fmt"

	"league-dashboard/internal/constants"
)

// MergeAnnouncements prepends next onto prev, dropping duplicate ids and
// capping the list at the most recent entries. An item without an id gets a
// deterministic one from its message and timestamp.
func MergeAnnouncements(prev, next []Announcement) []Announcement {
	merged := make([]Announcement, 0, len(prev)+len(next))
	seen := make(map[string]bool, len(prev)+len(next))

	add := func(item Announcement) {
		if item.ID == "" {
			message := item.Message
			if message == "" {
				message = "announcement"
			}
			item.ID = fmt.Sprintf("%s-%d", message, item.CreatedAt)
		}
		if seen[item.ID] {
			return
		}
		seen[item.ID] = true
		merged = append(merged, item)
	}

	for _, item := range next {
		add(item)
	}
	for _, item := range prev {
		add(item)
	}

	if len(merged) > constants.AnnouncementCap {
		merged = merged[:constants.AnnouncementCap]
	}
	return merged
}
