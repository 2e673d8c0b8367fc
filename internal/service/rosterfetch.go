package service

import (
	"context"
	"fmt"

	"league-dashboard/internal/roster"
)

// RosterFetcher adapts the summoner service into the poller's per-member
// fetch: a status+summary query condensed into a snapshot.
func RosterFetcher(summoners *SummonerService) roster.MemberFetcher {
	return func(ctx context.Context, member roster.Member) (roster.Snapshot, error) {
		payload, err := summoners.Fetch(ctx, Query{
			GameName: member.Name,
			TagLine:  member.Tagline,
			Region:   member.Region,
			Summary:  true,
			Status:   true,
		})
		if err != nil {
			return roster.Snapshot{}, fmt.Errorf("fetch %s: %w", member.Key(), err)
		}

		snapshot := roster.Snapshot{
			Ranked:         payload.Ranked,
			MatchSummaries: payload.MatchSummaries,
		}
		if payload.Status != nil {
			status := roster.Status(*payload.Status)
			snapshot.Status = &status
		}
		if payload.ActiveGame != nil {
			snapshot.ActiveGame = &roster.ActiveGameInfo{
				GameID:        payload.ActiveGame.GameID,
				GameMode:      payload.ActiveGame.GameMode,
				GameStartTime: payload.ActiveGame.GameStartTime,
				QueueName:     payload.ActiveGame.QueueName,
			}
		}
		return snapshot, nil
	}
}
