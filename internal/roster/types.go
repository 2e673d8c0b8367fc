// Package roster tracks every roster member's live status across poll
// cycles: it merges fresh fetches against the previous snapshot without
// regressing to staler data, and detects tier changes, completed rank goals
// and freshly finished ranked matches to emit announcements. The merge and
// the three detectors are pure functions over explicit state so they can be
// exercised with plain before/after fixtures.
package roster

import (
	"fmt"
	"strings"

	"league-dashboard/internal/riot"
	"league-dashboard/internal/stats"
)

// Member is one roster entry, keyed by the riot id "name#tagline".
type Member struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
	Region  string `json:"region"`
}

func (m Member) Key() string {
	return fmt.Sprintf("%s#%s", m.Name, m.Tagline)
}

type Status struct {
	InGame       bool  `json:"inGame"`
	LastPlayedAt int64 `json:"lastPlayedAt"`
}

type ActiveGameInfo struct {
	GameID        int64  `json:"gameId"`
	GameMode      string `json:"gameMode"`
	GameStartTime int64  `json:"gameStartTime"`
	QueueName     string `json:"queueName,omitempty"`
}

// Snapshot is the per-member state carried between poll cycles.
type Snapshot struct {
	Ranked         []riot.RankedEntry   `json:"ranked"`
	MatchSummaries []stats.MatchSummary `json:"matchSummaries"`
	Status         *Status              `json:"status"`
	ActiveGame     *ActiveGameInfo      `json:"activeGame"`
	Stale          bool                 `json:"stale,omitempty"`
}

// LastPlayed resolves a snapshot's effective last-activity timestamp: the
// later of the status timestamp and the newest match summary's creation.
func (s Snapshot) LastPlayed() int64 {
	var statusTime, summaryTime int64
	if s.Status != nil {
		statusTime = s.Status.LastPlayedAt
	}
	if len(s.MatchSummaries) > 0 {
		summaryTime = s.MatchSummaries[0].GameCreation
	}
	if statusTime > summaryTime {
		return statusTime
	}
	return summaryTime
}

func (s Snapshot) inGame() bool {
	return s.Status != nil && s.Status.InGame
}

type Announcement struct {
	ID        string `json:"id"`
	Emoji     string `json:"emoji"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"createdAt"`
	QueueID   int    `json:"queueId,omitempty"`
	QueueName string `json:"queueName,omitempty"`
}

// SkinGoal is an open rank-target goal: reaching TargetRank earns Skin.
type SkinGoal struct {
	ID          string `json:"id"`
	PlayerName  string `json:"player_name"`
	Tagline     string `json:"tagline"`
	TargetRank  string `json:"target_rank"`
	Skin        string `json:"skin"`
	Notes       string `json:"notes"`
	CompletedAt string `json:"completed_at,omitempty"`
}

func (g SkinGoal) Key() string {
	return strings.ToLower(fmt.Sprintf("%s#%s", g.PlayerName, g.Tagline))
}

var tierOrder = map[string]int{
	"IRON":        1,
	"BRONZE":      2,
	"SILVER":      3,
	"GOLD":        4,
	"PLATINUM":    5,
	"EMERALD":     6,
	"DIAMOND":     7,
	"MASTER":      8,
	"GRANDMASTER": 9,
	"CHALLENGER":  10,
}

// TierOrder maps a tier name onto the monotonic ranked ladder, 0 for unknown.
// Non-letter characters are stripped so "Grand Master" still resolves.
func TierOrder(tier string) int {
	var b strings.Builder
	for _, r := range strings.ToUpper(tier) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return tierOrder[b.String()]
}

// PickPrimaryRank selects the queue a player's visible rank comes from:
// solo queue, then flex, then whatever is first.
func PickPrimaryRank(entries []riot.RankedEntry) *riot.RankedEntry {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		if entries[i].QueueType == "RANKED_SOLO_5x5" {
			return &entries[i]
		}
	}
	for i := range entries {
		if entries[i].QueueType == "RANKED_FLEX_SR" {
			return &entries[i]
		}
	}
	return &entries[0]
}
