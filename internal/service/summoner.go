package service

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"league-dashboard/internal/constants"
	"league-dashboard/internal/ddragon"
	"league-dashboard/internal/riot"
	"league-dashboard/internal/stats"
)

// RequestError carries the HTTP status a handler should answer with.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func NewRequestError(status int, message string) *RequestError {
	if status == 0 {
		status = 500
	}
	if message == "" {
		message = "Unexpected error."
	}
	return &RequestError{Status: status, Message: message}
}

// Query selects how much of the composite payload to assemble. Lite skips
// matches, mastery, challenges and the active game; Status fetches a single
// match to compute last-played; Summary widens the match window to 20.
type Query struct {
	GameName string
	TagLine  string
	Region   string
	Lite     bool
	Summary  bool
	Status   bool
}

type MasteryEntry struct {
	riot.Mastery
	ChampionName  string `json:"championName,omitempty"`
	ChampionImage string `json:"championImage,omitempty"`
}

type ActiveGamePayload struct {
	riot.ActiveGame
	QueueName string `json:"queueName,omitempty"`
}

type StatusPayload struct {
	InGame       bool  `json:"inGame"`
	LastPlayedAt int64 `json:"lastPlayedAt"`
}

// SummonerPayload is the composite answer for one player. Sub-fetch failures
// land in Warnings while the rest of the payload stays populated.
type SummonerPayload struct {
	Puuid          string                    `json:"puuid"`
	ProfileIconID  int                       `json:"profileIconId"`
	SummonerLevel  int64                     `json:"summonerLevel"`
	RiotID         RiotID                    `json:"riotId"`
	Ranked         []riot.RankedEntry        `json:"ranked"`
	MasteryTop     []MasteryEntry            `json:"masteryTop"`
	Challenges     json.RawMessage           `json:"challenges"`
	ActiveGame     *ActiveGamePayload        `json:"activeGame"`
	Status         *StatusPayload            `json:"status"`
	Matches        []*riot.Match             `json:"matches"`
	MatchSummaries []stats.MatchSummary      `json:"matchSummaries"`
	Insights       *stats.Insights           `json:"insights"`
	MatchScores    map[string]map[string]int `json:"matchScores,omitempty"`
	DDVersion      string                    `json:"ddVersion,omitempty"`
	Warnings       []string                  `json:"warnings"`
}

type RiotID struct {
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type SummonerService struct {
	riot    *riot.Client
	ddragon *ddragon.Client
	logger  zerolog.Logger
}

func NewSummonerService(riotClient *riot.Client, ddragonClient *ddragon.Client, logger zerolog.Logger) *SummonerService {
	return &SummonerService{riot: riotClient, ddragon: ddragonClient, logger: logger}
}

// Fetch assembles the composite payload. Account and summoner lookups are
// hard prerequisites; everything after them degrades into warnings.
func (s *SummonerService) Fetch(ctx context.Context, q Query) (*SummonerPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	gameName, err := url.QueryUnescape(q.GameName)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape game name: %w", err)
	}
	tagLine, err := url.QueryUnescape(q.TagLine)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape tagline: %w", err)
	}

	region := q.Region
	if region == "" {
		region = riot.DefaultRegion
	}
	route := riot.RouteFor(region)

	s.logger.Info().
		Str("game_name", gameName).
		Str("tag_line", tagLine).
		Str("region", region).
		Bool("lite", q.Lite).
		Bool("summary", q.Summary).
		Bool("status", q.Status).
		Msg("fetching summoner")

	account, res, err := s.riot.AccountByRiotID(ctx, route, gameName, tagLine, constants.RiotCacheTTL)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, NewRequestError(res.Status, res.Err)
	}

	summoner, res, err := s.riot.SummonerByPUUID(ctx, region, account.Puuid, constants.RiotCacheTTL)
	if err != nil {
		return nil, err
	}
	if summoner == nil {
		return nil, NewRequestError(res.Status, res.Err)
	}

	payload := &SummonerPayload{
		Puuid:         summoner.Puuid,
		ProfileIconID: summoner.ProfileIconID,
		SummonerLevel: summoner.SummonerLevel,
		RiotID:        RiotID{GameName: account.GameName, TagLine: account.TagLine},
		Warnings:      []string{},
	}

	matchCount := constants.MaxMatches
	if q.Summary {
		matchCount = constants.SummaryMatches
	} else if q.Status {
		matchCount = 1
	}

	var (
		mu       sync.Mutex
		matchIDs []string
	)
	warn := func(message string) {
		if message == "" {
			return
		}
		mu.Lock()
		payload.Warnings = append(payload.Warnings, message)
		mu.Unlock()
	}

	wantsMastery := !q.Lite && !q.Status && !q.Summary
	wantsMatchList := q.Status || !q.Lite

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ranked, res, err := s.riot.RankedEntries(gCtx, region, summoner.Puuid)
		if err != nil {
			return err
		}
		if !res.OK {
			warn(res.Err)
			return nil
		}
		payload.Ranked = ranked
		return nil
	})

	if wantsMatchList {
		g.Go(func() error {
			ids, res, err := s.riot.MatchIDs(gCtx, route, summoner.Puuid, matchCount, constants.RiotCacheTTL)
			if err != nil {
				return err
			}
			if !res.OK {
				warn(res.Err)
				return nil
			}
			mu.Lock()
			matchIDs = ids
			mu.Unlock()
			return nil
		})
	}

	if wantsMastery {
		g.Go(func() error {
			mastery, res, err := s.riot.MasteryTop(gCtx, region, summoner.Puuid, constants.MasteryTopCount)
			if err != nil {
				return err
			}
			if !res.OK {
				warn(res.Err)
				return nil
			}
			for _, entry := range mastery {
				payload.MasteryTop = append(payload.MasteryTop, MasteryEntry{Mastery: entry})
			}
			return nil
		})

		g.Go(func() error {
			challenges, res, err := s.riot.Challenges(gCtx, region, summoner.Puuid)
			if err != nil {
				return err
			}
			if !res.OK {
				warn(res.Err)
				return nil
			}
			payload.Challenges = challenges
			return nil
		})
	}

	if !q.Lite {
		g.Go(func() error {
			active, res, err := s.riot.ActiveGame(gCtx, region, summoner.Puuid)
			if err != nil {
				return err
			}
			if !res.OK {
				warn(res.Err)
				return nil
			}
			if active != nil {
				payload.ActiveGame = &ActiveGamePayload{
					ActiveGame: *active,
					QueueName:  riot.QueueName(int(active.GameQueueConfigID)),
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	wantsMatchDetails := !q.Lite && (!q.Status || q.Summary)

	var matches []*riot.Match
	if wantsMatchDetails {
		matches, err = s.fetchMatches(ctx, route, matchIDs, warn)
		if err != nil {
			return nil, err
		}
	}

	var statusMatch *riot.Match
	if q.Status && len(matchIDs) > 0 {
		match, res, err := s.riot.Match(ctx, route, matchIDs[0])
		if err != nil {
			return nil, err
		}
		if !res.OK {
			warn(res.Err)
		}
		statusMatch = match
	}

	var catalog *ddragon.Catalog
	if wantsMatchDetails {
		catalog, err = s.ddragon.Catalog(ctx)
		if err != nil {
			warn(fmt.Sprintf("Data Dragon: %s", err.Error()))
		}
	}

	if wantsMatchDetails {
		insights := stats.BuildInsights(matches, summoner.Puuid, catalog)
		payload.Insights = &insights
		payload.MatchSummaries = stats.BuildMatchSummaries(matches, summoner.Puuid, catalog)
		payload.MatchScores = buildMatchScores(matches)
		if !q.Summary {
			payload.Matches = matches
		}
		if catalog != nil {
			payload.DDVersion = catalog.Version
			for i := range payload.MasteryTop {
				if meta, ok := catalog.ChampionsByID[payload.MasteryTop[i].ChampionID]; ok {
					payload.MasteryTop[i].ChampionName = meta.Name
					payload.MasteryTop[i].ChampionImage = meta.Image
				}
			}
		}
	}

	if q.Status {
		status := &StatusPayload{InGame: payload.ActiveGame != nil}
		if statusMatch != nil {
			status.LastPlayedAt = statusMatch.Info.GameEndTimestamp
		} else if len(matches) > 0 {
			status.LastPlayedAt = matches[0].Info.GameEndTimestamp
		}
		payload.Status = status
	}

	s.logger.Info().
		Str("puuid", summoner.Puuid).
		Int("matches", len(matches)).
		Int("warnings", len(payload.Warnings)).
		Msg("summoner fetched")

	return payload, nil
}

// fetchMatches loads match details concurrently; an individual failure
// becomes a warning and a dropped match, not a request failure.
func (s *SummonerService) fetchMatches(ctx context.Context, route string, matchIDs []string, warn func(string)) ([]*riot.Match, error) {
	results := make([]*riot.Match, len(matchIDs))
	g, gCtx := errgroup.WithContext(ctx)
	for i, matchID := range matchIDs {
		g.Go(func() error {
			match, res, err := s.riot.Match(gCtx, route, matchID)
			if err != nil {
				return err
			}
			if !res.OK {
				warn(res.Err)
				return nil
			}
			results[i] = match
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]*riot.Match, 0, len(results))
	for _, match := range results {
		if match != nil {
			matches = append(matches, match)
		}
	}
	return matches, nil
}

func buildMatchScores(matches []*riot.Match) map[string]map[string]int {
	if len(matches) == 0 {
		return nil
	}
	scores := make(map[string]map[string]int, len(matches))
	for _, match := range matches {
		scores[match.Metadata.MatchID] = stats.MatchScores(match)
	}
	return scores
}
