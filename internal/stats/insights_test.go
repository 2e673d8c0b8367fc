package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"league-dashboard/internal/riot"
)

func teamMatch(id string, me riot.Participant, teammates ...riot.Participant) *riot.Match {
	me.TeamID = 100
	participants := []riot.Participant{me}
	for _, tm := range teammates {
		tm.TeamID = 100
		participants = append(participants, tm)
	}
	return &riot.Match{
		Metadata: riot.MatchMetadata{MatchID: id},
		Info: riot.MatchInfo{
			QueueID:      420,
			GameDuration: 1800,
			Participants: participants,
		},
	}
}

func TestBuildInsightsChampionBreakdown(t *testing.T) {
	matches := []*riot.Match{
		teamMatch("m1", riot.Participant{Puuid: "p1", ChampionName: "Ahri", Win: true}),
		teamMatch("m2", riot.Participant{Puuid: "p1", ChampionName: "Ahri", Win: false}),
		teamMatch("m3", riot.Participant{Puuid: "p1", ChampionName: "Lux", Win: true}),
	}

	insights := BuildInsights(matches, "p1", nil)

	require.Equal(t, 3, insights.Summary.Games)
	require.Equal(t, 2, insights.Summary.Wins)
	require.InDelta(t, 2.0/3.0, insights.Summary.Winrate, 1e-9)

	require.Len(t, insights.ChampionStats, 2)
	require.Equal(t, "Ahri", insights.ChampionStats[0].ChampionName)
	require.Equal(t, 2, insights.ChampionStats[0].Games)
	require.InDelta(t, 0.5, insights.ChampionStats[0].Winrate, 1e-9)

	require.Equal(t, "Ahri", insights.MostPlayedChampion.ChampionName)
	require.Equal(t, "Lux", insights.HighestWinrateChampion.ChampionName)
	require.Equal(t, "Ahri", insights.LowestWinrateChampion.ChampionName)
}

func TestBuildInsightsTeammates(t *testing.T) {
	duo := riot.Participant{Puuid: "p2", RiotIDGameName: "Duo", RiotIDTagline: "EUW"}
	filler := riot.Participant{Puuid: "p3", SummonerName: "Filler"}
	once := riot.Participant{Puuid: "p4", SummonerName: "Once"}
	rare := riot.Participant{Puuid: "p5", SummonerName: "Rare"}

	matches := []*riot.Match{
		teamMatch("m1", riot.Participant{Puuid: "p1"}, duo, filler, once, rare),
		teamMatch("m2", riot.Participant{Puuid: "p1"}, duo, filler),
		teamMatch("m3", riot.Participant{Puuid: "p1"}, duo),
	}

	insights := BuildInsights(matches, "p1", nil)

	require.Len(t, insights.MostPlayedWith, 3)
	require.Equal(t, TeammateStat{Name: "Duo#EUW", Games: 3}, insights.MostPlayedWith[0])
	require.Equal(t, TeammateStat{Name: "Filler", Games: 2}, insights.MostPlayedWith[1])
}

func TestBuildMatchSummaries(t *testing.T) {
	me := riot.Participant{
		Puuid: "p1", ChampionName: "Ahri", Win: true,
		Kills: 7, Deaths: 2, Assists: 9,
		TotalMinionsKilled: 180, NeutralMinionsKilled: 20,
		Item0: 3089, Item6: 3364,
	}
	match := teamMatch("EUW1_9", me)
	match.Info.GameCreation = 1_700_000_000_000

	summaries := BuildMatchSummaries([]*riot.Match{match}, "p1", nil)

	require.Len(t, summaries, 1)
	s := summaries[0]
	require.Equal(t, "EUW1_9", s.MatchID)
	require.Equal(t, "Ranked Solo/Duo", s.QueueName)
	require.True(t, s.Win)
	require.Equal(t, 200, s.CS)
	// Empty item slots are dropped; without a catalog names are placeholders.
	require.Len(t, s.Items, 2)
	require.Equal(t, 3089, s.Items[0].ID)
}

func TestBuildMatchSummariesSkipsForeignMatches(t *testing.T) {
	match := teamMatch("m1", riot.Participant{Puuid: "someone-else"})

	require.Empty(t, BuildMatchSummaries([]*riot.Match{match}, "p1", nil))
}
