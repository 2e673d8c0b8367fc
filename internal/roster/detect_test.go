package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"league-dashboard/internal/riot"
	"league-dashboard/internal/stats"
)

var detectNow = time.UnixMilli(1_700_000_000_000)

func rankedSample(key, tier string) Sample {
	return Sample{
		Key: key,
		Snapshot: Snapshot{
			Ranked: []riot.RankedEntry{{QueueType: "RANKED_SOLO_5x5", Tier: tier}},
		},
		Now: detectNow,
	}
}

func TestDetectTierChangePromotion(t *testing.T) {
	state := TierState{"faker#kr1": "GOLD"}

	next, anns := DetectTierChange(state, rankedSample("Faker#KR1", "PLATINUM"))

	require.Len(t, anns, 1)
	require.Equal(t, "tier:faker#kr1:PLATINUM", anns[0].ID)
	require.Equal(t, "\U0001F973", anns[0].Emoji)
	require.Contains(t, anns[0].Message, "promoted from GOLD to PLATINUM")
	require.Equal(t, "PLATINUM", next["faker#kr1"])
	// Input state untouched.
	require.Equal(t, "GOLD", state["faker#kr1"])
}

func TestDetectTierChangeDemotion(t *testing.T) {
	state := TierState{"faker#kr1": "DIAMOND"}

	_, anns := DetectTierChange(state, rankedSample("Faker#KR1", "EMERALD"))

	require.Len(t, anns, 1)
	require.Equal(t, "\U0001F940", anns[0].Emoji)
	require.Contains(t, anns[0].Message, "demoted")
}

func TestDetectTierChangeFiresOnce(t *testing.T) {
	state, anns := DetectTierChange(TierState{"p#t": "GOLD"}, rankedSample("P#T", "PLATINUM"))
	require.Len(t, anns, 1)

	_, anns = DetectTierChange(state, rankedSample("P#T", "PLATINUM"))
	require.Empty(t, anns)
}

func TestDetectTierChangeFirstSightingIsSilent(t *testing.T) {
	next, anns := DetectTierChange(TierState{}, rankedSample("P#T", "GOLD"))

	require.Empty(t, anns)
	require.Equal(t, "GOLD", next["p#t"])
}

func TestDetectTierChangeUnrankedNoop(t *testing.T) {
	state := TierState{"p#t": "GOLD"}
	sample := Sample{Key: "P#T", Now: detectNow}

	next, anns := DetectTierChange(state, sample)

	require.Empty(t, anns)
	require.Equal(t, "GOLD", next["p#t"])
}

func TestDetectGoalCompletion(t *testing.T) {
	goal := &SkinGoal{ID: "g1", PlayerName: "P", Tagline: "T", TargetRank: "PLATINUM", Skin: "Star Guardian Ahri"}

	state, anns, completed := DetectGoalCompletion(GoalState{}, rankedSample("P#T", "EMERALD"), goal)

	require.Len(t, anns, 1)
	require.Equal(t, "goal:p#t-platinum", anns[0].ID)
	require.Contains(t, anns[0].Message, "Star Guardian Ahri")
	require.NotNil(t, completed)

	// Already-announced pair stays silent.
	_, anns, completed = DetectGoalCompletion(state, rankedSample("P#T", "DIAMOND"), goal)
	require.Empty(t, anns)
	require.Nil(t, completed)
}

func TestDetectGoalCompletionBelowTarget(t *testing.T) {
	goal := &SkinGoal{TargetRank: "DIAMOND", Skin: "x"}

	_, anns, completed := DetectGoalCompletion(GoalState{}, rankedSample("P#T", "GOLD"), goal)

	require.Empty(t, anns)
	require.Nil(t, completed)
}

func matchSample(key, matchID string, end time.Time, win bool, k, d, a int) Sample {
	creation := end.UnixMilli() - 1800*1000
	return Sample{
		Key: key,
		Snapshot: Snapshot{
			Status: &Status{LastPlayedAt: end.UnixMilli()},
			MatchSummaries: []stats.MatchSummary{{
				MatchID:      matchID,
				QueueID:      420,
				QueueName:    "Ranked Solo/Duo",
				GameCreation: creation,
				GameDuration: 1800,
				Win:          win,
				Kills:        k,
				Deaths:       d,
				Assists:      a,
			}},
		},
		Now: detectNow,
	}
}

func TestDetectMatchResultWin(t *testing.T) {
	sample := matchSample("P#T", "EUW1_1", detectNow.Add(-time.Hour), true, 5, 4, 3)

	state, anns := DetectMatchResult(MatchState{}, sample)

	require.Len(t, anns, 1)
	require.Equal(t, "match:p#t:EUW1_1", anns[0].ID)
	require.Equal(t, "\U0001F973", anns[0].Emoji)
	require.Contains(t, anns[0].Message, "won a Ranked Solo/Duo match")
	require.Equal(t, 420, anns[0].QueueID)
	require.Equal(t, "EUW1_1", state["p#t"])
}

func TestDetectMatchResultPoppedOff(t *testing.T) {
	sample := matchSample("P#T", "EUW1_2", detectNow.Add(-time.Hour), true, 12, 2, 8)

	_, anns := DetectMatchResult(MatchState{}, sample)

	require.Len(t, anns, 1)
	require.Equal(t, "\U0001F525", anns[0].Emoji)
	require.Contains(t, anns[0].Message, "popped off")
}

func TestDetectMatchResultStomped(t *testing.T) {
	sample := matchSample("P#T", "EUW1_3", detectNow.Add(-time.Hour), false, 1, 9, 2)

	_, anns := DetectMatchResult(MatchState{}, sample)

	require.Len(t, anns, 1)
	require.Equal(t, "\U0001F480", anns[0].Emoji)
	require.Contains(t, anns[0].Message, "got stomped")
}

func TestDetectMatchResultOutsideWindow(t *testing.T) {
	sample := matchSample("P#T", "EUW1_4", detectNow.Add(-7*time.Hour), true, 5, 4, 3)

	state, anns := DetectMatchResult(MatchState{}, sample)

	require.Empty(t, anns)
	require.Equal(t, "EUW1_4", state["p#t"])
}

func TestDetectMatchResultSameMatchTwice(t *testing.T) {
	sample := matchSample("P#T", "EUW1_5", detectNow.Add(-time.Hour), true, 5, 4, 3)

	state, anns := DetectMatchResult(MatchState{}, sample)
	require.Len(t, anns, 1)

	_, anns = DetectMatchResult(state, sample)
	require.Empty(t, anns)
}

func TestDetectMatchResultUnrankedQueue(t *testing.T) {
	sample := matchSample("P#T", "EUW1_6", detectNow.Add(-time.Hour), true, 5, 4, 3)
	sample.Snapshot.MatchSummaries[0].QueueID = 450
	sample.Snapshot.MatchSummaries[0].QueueName = "ARAM"

	state, anns := DetectMatchResult(MatchState{}, sample)

	require.Empty(t, anns)
	require.Equal(t, "EUW1_6", state["p#t"])
}

func TestDetectMatchResultNotNewerThanCache(t *testing.T) {
	sample := matchSample("P#T", "EUW1_7", detectNow.Add(-time.Hour), true, 5, 4, 3)
	cached := snapshotAt(sample.Snapshot.LastPlayed()+1000, "EUW1_8")
	sample.Cached = &cached

	_, anns := DetectMatchResult(MatchState{}, sample)

	require.Empty(t, anns)
}

func TestDetectMatchResultInGameRecordsWithoutAnnouncing(t *testing.T) {
	sample := matchSample("P#T", "EUW1_9", detectNow.Add(-time.Hour), true, 5, 4, 3)
	sample.Snapshot.Status.InGame = true

	state, anns := DetectMatchResult(MatchState{}, sample)

	require.Empty(t, anns)
	// The suppressed match is recorded, so it will not be announced late
	// after the current game ends.
	require.Equal(t, "EUW1_9", state["p#t"])

	sample.Snapshot.Status.InGame = false
	_, anns = DetectMatchResult(state, sample)
	require.Empty(t, anns)
}

func TestTierOrder(t *testing.T) {
	require.Equal(t, 1, TierOrder("IRON"))
	require.Equal(t, 10, TierOrder("CHALLENGER"))
	require.Equal(t, 9, TierOrder("Grand Master"))
	require.Equal(t, 0, TierOrder("WOOD"))
	require.Greater(t, TierOrder("EMERALD"), TierOrder("PLATINUM"))
}
