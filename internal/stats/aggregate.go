// Package stats derives player statistics from raw match and timeline data:
// windowed summaries, qualitative traits, champion breakdowns and per-match
// percentile performance scores. Everything here is a pure function over its
// inputs so it can be tested without any upstream fixtures.
package stats

import (
	"math"
	"sort"

	"league-dashboard/internal/constants"
	"league-dashboard/internal/riot"
)

// PlayerSummary aggregates one player's recent matches. Averages are rounded
// to one decimal; kdaRatio keeps full precision with the death count
// floor-clamped to 1 so it never divides by zero.
type PlayerSummary struct {
	Games              int     `json:"games"`
	AvgKills           float64 `json:"avgKills"`
	AvgDeaths          float64 `json:"avgDeaths"`
	AvgAssists         float64 `json:"avgAssists"`
	AvgVision          float64 `json:"avgVision"`
	KDARatio           float64 `json:"kdaRatio"`
	EarlyDeathsPerGame float64 `json:"earlyDeathsPerGame"`
	MainRole           string  `json:"mainRole"`
	RoleShare          float64 `json:"roleShare"`
}

// Summarize computes a PlayerSummary for puuid over matches. timelines is
// parallel to matches; nil entries skip the early-death count for that match.
// Matches where the player is missing are skipped defensively.
func Summarize(matches []*riot.Match, puuid string, timelines []*riot.Timeline) PlayerSummary {
	var totalKills, totalDeaths, totalAssists, totalVision, earlyDeaths int
	roleCounts := make(map[string]int)

	for i, match := range matches {
		participant := findParticipant(match, puuid)
		if participant == nil {
			continue
		}
		totalKills += participant.Kills
		totalDeaths += participant.Deaths
		totalAssists += participant.Assists
		totalVision += participant.VisionScore

		role := participant.TeamPosition
		if role == "" {
			role = "UNKNOWN"
		}
		roleCounts[role]++

		if i < len(timelines) && timelines[i] != nil && participant.ParticipantID != 0 {
			earlyDeaths += earlyDeathCount(timelines[i], participant.ParticipantID)
		}
	}

	games := len(matches)
	mainRole, mainCount := topRole(roleCounts)

	summary := PlayerSummary{
		Games:    games,
		KDARatio: float64(totalKills+totalAssists) / math.Max(1, float64(totalDeaths)),
		MainRole: mainRole,
	}
	if games > 0 {
		summary.AvgKills = round1(float64(totalKills) / float64(games))
		summary.AvgDeaths = round1(float64(totalDeaths) / float64(games))
		summary.AvgAssists = round1(float64(totalAssists) / float64(games))
		summary.AvgVision = round1(float64(totalVision) / float64(games))
		summary.EarlyDeathsPerGame = float64(earlyDeaths) / float64(games)
		summary.RoleShare = float64(mainCount) / float64(games)
	}
	return summary
}

func earlyDeathCount(timeline *riot.Timeline, participantID int) int {
	windowMs := constants.EarlyDeathWindow.Milliseconds()
	deaths := 0
	for _, frame := range timeline.Info.Frames {
		for _, event := range frame.Events {
			if event.Type == "CHAMPION_KILL" && event.VictimID == participantID && event.Timestamp <= windowMs {
				deaths++
			}
		}
	}
	return deaths
}

func topRole(counts map[string]int) (string, int) {
	role, best := "UNKNOWN", 0
	// Roles sorted so equal counts resolve deterministically.
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > best {
			role, best = k, counts[k]
		}
	}
	return role, best
}

// Traits evaluates the qualitative labels for a summary. The rules are
// independent booleans checked in a fixed order; every applicable label is
// emitted.
func Traits(summary PlayerSummary) []string {
	if summary.Games == 0 {
		return nil
	}
	var traits []string
	if summary.AvgKills >= 6 || (summary.KDARatio >= 3 && summary.AvgKills >= 4) {
		traits = append(traits, "Aggressive")
	}
	if summary.EarlyDeathsPerGame >= 0.6 {
		traits = append(traits, "Prone to ganks")
	} else if summary.EarlyDeathsPerGame >= 0.4 {
		traits = append(traits, "Dies early")
	}
	if summary.AvgDeaths <= 3 && summary.EarlyDeathsPerGame <= 0.2 {
		traits = append(traits, "Safe laner")
	}
	visionTarget := 20.0
	if summary.MainRole == "UTILITY" {
		visionTarget = 30
	}
	if summary.AvgVision >= visionTarget {
		traits = append(traits, "Good warder")
	}
	if summary.RoleShare > 0 && summary.RoleShare < 0.5 {
		traits = append(traits, "Off-role risk")
	}
	return traits
}

func findParticipant(match *riot.Match, puuid string) *riot.Participant {
	if match == nil {
		return nil
	}
	for i := range match.Info.Participants {
		if match.Info.Participants[i].Puuid == puuid {
			return &match.Info.Participants[i]
		}
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
