package service

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"league-dashboard/internal/constants"
	"league-dashboard/internal/ddragon"
	"league-dashboard/internal/riot"
	"league-dashboard/internal/stats"
)

type ChampionMeta struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type SpellMeta struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// LiveParticipant is one lobby member with their recent ranked form attached.
type LiveParticipant struct {
	Puuid      string               `json:"puuid"`
	TeamID     int                  `json:"teamId"`
	ChampionID int                  `json:"championId"`
	RiotID     *RiotID              `json:"riotId"`
	Champion   *ChampionMeta        `json:"champion"`
	Spells     []SpellMeta          `json:"spells"`
	Summary    *stats.PlayerSummary `json:"summary"`
	Traits     []string             `json:"traits"`
	Error      string               `json:"error,omitempty"`
}

type LiveIntelPayload struct {
	ActiveGame     *ActiveGamePayload `json:"activeGame"`
	Participants   []LiveParticipant  `json:"participants"`
	FriendlyTeamID int                `json:"friendlyTeamId,omitempty"`
	DDVersion      string             `json:"ddVersion,omitempty"`
	Warnings       []string           `json:"warnings"`
}

type LiveIntelService struct {
	riot    *riot.Client
	ddragon *ddragon.Client
	logger  zerolog.Logger
}

func NewLiveIntelService(riotClient *riot.Client, ddragonClient *ddragon.Client, logger zerolog.Logger) *LiveIntelService {
	return &LiveIntelService{riot: riotClient, ddragon: ddragonClient, logger: logger}
}

// Fetch resolves the player's current lobby and enriches every participant
// with their recent ranked performance. Not being in a game is a normal
// answer, not an error.
func (s *LiveIntelService) Fetch(ctx context.Context, gameName, tagLine, region string) (*LiveIntelPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	gameName, err := url.QueryUnescape(gameName)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape game name: %w", err)
	}
	tagLine, err = url.QueryUnescape(tagLine)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape tagline: %w", err)
	}
	if region == "" {
		region = riot.DefaultRegion
	}
	route := riot.RouteFor(region)

	account, res, err := s.riot.AccountByRiotID(ctx, route, gameName, tagLine, constants.LiveRiotCacheTTL)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, NewRequestError(res.Status, res.Err)
	}

	summoner, res, err := s.riot.SummonerByPUUID(ctx, region, account.Puuid, constants.LiveRiotCacheTTL)
	if err != nil {
		return nil, err
	}
	if summoner == nil {
		return nil, NewRequestError(res.Status, res.Err)
	}

	payload := &LiveIntelPayload{Participants: []LiveParticipant{}, Warnings: []string{}}

	active, res, err := s.riot.ActiveGame(ctx, region, summoner.Puuid)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, NewRequestError(res.Status, res.Err)
	}
	if active == nil {
		return payload, nil
	}
	payload.ActiveGame = &ActiveGamePayload{
		ActiveGame: *active,
		QueueName:  riot.QueueName(int(active.GameQueueConfigID)),
	}

	catalog, err := s.ddragon.Catalog(ctx)
	if err != nil {
		payload.Warnings = append(payload.Warnings, fmt.Sprintf("Data Dragon: %s", err.Error()))
	}
	if catalog != nil {
		payload.DDVersion = catalog.Version
	}

	for _, p := range active.Participants {
		if p.Puuid == summoner.Puuid {
			payload.FriendlyTeamID = p.TeamID
			break
		}
	}

	payload.Participants = s.enrichParticipants(ctx, route, active.Participants, catalog)

	s.logger.Info().
		Str("puuid", summoner.Puuid).
		Int64("game_id", active.GameID).
		Int("participants", len(payload.Participants)).
		Msg("live intel fetched")

	return payload, nil
}

// enrichParticipants drains the lobby through a small worker pool so one
// live-intel request never fans out into ten parallel match-history pulls.
func (s *LiveIntelService) enrichParticipants(ctx context.Context, route string, participants []riot.ActiveGameParticipant, catalog *ddragon.Catalog) []LiveParticipant {
	results := make([]LiveParticipant, len(participants))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range constants.LiveIntelWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.enrichParticipant(ctx, route, participants[i], catalog)
			}
		}()
	}

	for i := range participants {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (s *LiveIntelService) enrichParticipant(ctx context.Context, route string, p riot.ActiveGameParticipant, catalog *ddragon.Catalog) LiveParticipant {
	out := LiveParticipant{
		Puuid:      p.Puuid,
		TeamID:     p.TeamID,
		ChampionID: p.ChampionID,
		Spells:     []SpellMeta{},
		Traits:     []string{},
	}

	if catalog != nil {
		if meta, ok := catalog.ChampionsByID[p.ChampionID]; ok {
			out.Champion = &ChampionMeta{Name: meta.Name, Image: meta.Image}
		}
		for _, spellID := range []int{p.Spell1ID, p.Spell2ID} {
			if spell, ok := catalog.SpellsByID[spellID]; ok {
				out.Spells = append(out.Spells, SpellMeta{Name: spell.Name, Image: spell.Image})
			}
		}
	}

	account, _, err := s.riot.AccountByPUUID(ctx, route, p.Puuid, constants.LiveRiotCacheTTL)
	if err == nil && account != nil {
		out.RiotID = &RiotID{GameName: account.GameName, TagLine: account.TagLine}
	}

	matches, timelines, err := s.recentRankedMatches(ctx, route, p.Puuid)
	if err != nil {
		s.logger.Warn().Err(err).Str("puuid", p.Puuid).Msg("failed to enrich lobby participant")
		out.Error = "Recent matches unavailable."
		return out
	}

	summary := stats.Summarize(matches, p.Puuid, timelines)
	out.Summary = &summary
	if traits := stats.Traits(summary); traits != nil {
		out.Traits = traits
	}
	return out
}

// recentRankedMatches walks the participant's latest match ids and keeps the
// ranked ones, up to the live cap. Timelines feed the early-death count; a
// missing timeline just drops that signal for the match.
func (s *LiveIntelService) recentRankedMatches(ctx context.Context, route, puuid string) ([]*riot.Match, []*riot.Timeline, error) {
	ids, res, err := s.riot.MatchIDs(ctx, route, puuid, constants.LiveMatchLookback, constants.LiveRiotCacheTTL)
	if err != nil {
		return nil, nil, err
	}
	if !res.OK {
		return nil, nil, fmt.Errorf("%s", res.Err)
	}

	var matches []*riot.Match
	var timelines []*riot.Timeline
	for _, id := range ids {
		if len(matches) >= constants.LiveMaxMatches {
			break
		}
		match, res, err := s.riot.Match(ctx, route, id)
		if err != nil {
			return nil, nil, err
		}
		if !res.OK || match == nil {
			continue
		}
		if !riot.IsRankedQueue(match.Info.QueueID, riot.QueueName(match.Info.QueueID)) {
			continue
		}
		matches = append(matches, match)

		timeline, _, err := s.riot.Timeline(ctx, route, id)
		if err != nil {
			return nil, nil, err
		}
		timelines = append(timelines, timeline)
	}
	return matches, timelines, nil
}
