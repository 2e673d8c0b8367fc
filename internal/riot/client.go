package riot

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"league-dashboard/internal/cache"
	"league-dashboard/internal/config"
	"league-dashboard/internal/constants"
)

const DefaultRegion = "euw1"

// regionToRoute maps platform regions to the regional routing values used by
// account and match endpoints.
var regionToRoute = map[string]string{
	"na1":  "americas",
	"br1":  "americas",
	"la1":  "americas",
	"la2":  "americas",
	"oc1":  "sea",
	"euw1": "europe",
	"eun1": "europe",
	"tr1":  "europe",
	"ru":   "europe",
	"kr":   "asia",
}

func RouteFor(region string) string {
	if route, ok := regionToRoute[region]; ok {
		return route
	}
	return regionToRoute[DefaultRegion]
}

// Result is the outcome of a single upstream call. A failed call carries the
// upstream status and a "<stage>: <message>" error string so callers can tell
// which of several chained lookups failed. Transport and decode faults are
// returned as plain errors instead, and bubble up to the request handler.
type Result struct {
	OK     bool
	Status int
	Data   json.RawMessage
	Err    string
}

type FetchOptions struct {
	// Allow404 turns a 404 into a successful result with nil Data. Used for
	// the active-game endpoint where 404 means "not in a game".
	Allow404 bool
	// CacheTTL enables the two-tier cache for this call when positive.
	CacheTTL time.Duration
}

type Client struct {
	apiKey  string
	client  *fasthttp.Client
	cache   *cache.Cache
	limiter *rate.Limiter
	logger  zerolog.Logger
}

func NewClient(cfg *config.Config, store *cache.Cache, logger zerolog.Logger) *Client {
	return &Client{
		apiKey: cfg.RiotAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		cache:   store,
		limiter: rate.NewLimiter(rate.Limit(20), 40),
		logger:  logger,
	}
}

// Fetch issues an authenticated GET against the Riot API, consulting and
// populating the cache when opts.CacheTTL is positive. It never retries.
func (c *Client) Fetch(ctx context.Context, endpoint, stage string, opts FetchOptions) (Result, error) {
	if opts.CacheTTL > 0 {
		if data, ok := c.cache.Get(ctx, endpoint); ok {
			return Result{OK: true, Data: data}, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", c.apiKey)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return Result{}, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return Result{}, err
		}
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)

	if opts.Allow404 && status == fasthttp.StatusNotFound {
		return Result{OK: true, Data: nil}, nil
	}

	if status < 200 || status > 299 {
		message := upstreamMessage(body)
		c.logger.Debug().Int("status", status).Str("stage", stage).Msg("riot api error")
		return Result{OK: false, Status: status, Err: fmt.Sprintf("%s: %s", stage, message)}, nil
	}

	if opts.CacheTTL > 0 && len(body) > 0 {
		c.cache.Set(ctx, endpoint, body, opts.CacheTTL)
	}

	return Result{OK: true, Data: body}, nil
}

func upstreamMessage(body []byte) string {
	var payload struct {
		Status struct {
			Message string `json:"message"`
		} `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Status.Message != "" {
		return payload.Status.Message
	}
	return "Riot API error."
}

// decode unmarshals a successful result into T. A failed result passes
// through untouched so callers can surface the stage error.
func decode[T any](res Result, err error) (*T, Result, error) {
	if err != nil || !res.OK || res.Data == nil {
		return nil, res, err
	}
	var out T
	if err := json.Unmarshal(res.Data, &out); err != nil {
		return nil, res, err
	}
	return &out, res, nil
}

// Identity and match-list lookups take an explicit cache TTL: the dashboard
// route caches them for a minute while the live-intel route wants fresher
// data and passes its shorter TTL.
func (c *Client) AccountByRiotID(ctx context.Context, route, gameName, tagLine string, ttl time.Duration) (*Account, Result, error) {
	endpoint := fmt.Sprintf("https://%s.api.riotgames.com/riot/account/v1/accounts/by-riot-id/%s/%s",
		route, url.PathEscape(gameName), url.PathEscape(tagLine))
	res, err := c.Fetch(ctx, endpoint, "Account lookup", FetchOptions{CacheTTL: ttl})
	return decode[Account](res, err)
}

func (c *Client) AccountByPUUID(ctx context.Context, route, puuid string, ttl time.Duration) (*Account, Result, error) {
	endpoint := fmt.Sprintf("https://%s.api.riotgames.com/riot/account/v1/accounts/by-puuid/%s",
		route, url.PathEscape(puuid))
	res, err := c.Fetch(ctx, endpoint, "Account lookup", FetchOptions{CacheTTL: ttl})
	return decode[Account](res, err)
}

func (c *Client) SummonerByPUUID(ctx context.Context, region, puuid string, ttl time.Duration) (*Summoner, Result, error) {
	endpoint := fmt.Sprintf("https://%s.api.riotgames.com/lol/summoner/v4/summoners/by-puuid/%s",
		region, url.PathEscape(puuid))
	res, err := c.Fetch(ctx, endpoint, "Summoner lookup", FetchOptions{CacheTTL: ttl})
	return decode[Summoner](res, err)
}

func (c *Client) RankedEntries(ctx context.Context, region, puuid string) ([]RankedEntry, Result, error) {
	endpoint := fmt.Sprintf("https://%s.api.riotgames.com/lol/league/v4/entries/by-puuid/%s",
		region, url.PathEscape(puuid))
	res, err := c.Fetch(ctx, endpoint, "Ranked lookup", FetchOptions{CacheTTL: constants.RiotCacheTTL})
	out, res, err := decode[[]RankedEntry](res, err)
	if out == nil {
		return nil, res, err
	}
	return *out, res, err
}

// ActiveGame returns (nil, ok result) when the player is not in a game; the
// upstream 404 is a legitimate empty answer, not an error.
func (c *Client) ActiveGame(ctx context.Context, region, puuid string) (*ActiveGame, Result, error) {
	endpoint := fmt.Sprintf("https://%s.api.riotgames.com/lol/spectator/v5/active-games/by-summoner/%s",
		region, url.PathEscape(puuid))
	res, err := c.Fetch(ctx, endpoint, "Active game", FetchOptions{Allow404: true, CacheTTL: constants.ActiveGameCacheTTL})
	return decode[ActiveGame](res, err)
}

func (c *Client) MatchIDs(ctx context.Context, route, puuid string, count int, ttl time.Duration) ([]string, Result, error) {
	endpoint := fmt.Sprintf("https://%s.api.riotgames.com/lol/match/v5/matches/by-puuid/%s/ids?start=0&count=%d",
		route, url.PathEscape(puuid), count)
	res, err := c.Fetch(ctx, endpoint, "Match list", FetchOptions{CacheTTL: ttl})
	out, res, err := decode[[]string](res, err)
	if out == nil {
		return nil, res, err
	}
	return *out, res, err
}

func (c *Client) Match(ctx context.Context, route, matchID string) (*Match, Result, error) {
	endpoint := fmt.Sprintf("https://%s.api.riotgames.com/lol/match/v5/matches/%s", route, url.PathEscape(matchID))
	res, err := c.Fetch(ctx, endpoint, fmt.Sprintf("Match %s", matchID), FetchOptions{CacheTTL: constants.MatchCacheTTL})
	return decode[Match](res, err)
}

func (c *Client) Timeline(ctx context.Context, route, matchID string) (*Timeline, Result, error) {
	endpoint := fmt.Sprintf("https://%s.api.riotgames.com/lol/match/v5/matches/%s/timeline", route, url.PathEscape(matchID))
	res, err := c.Fetch(ctx, endpoint, fmt.Sprintf("Timeline %s", matchID), FetchOptions{CacheTTL: constants.TimelineCacheTTL})
	return decode[Timeline](res, err)
}

func (c *Client) MasteryTop(ctx context.Context, region, puuid string, count int) ([]Mastery, Result, error) {
	endpoint := fmt.Sprintf("https://%s.api.riotgames.com/lol/champion-mastery/v4/champion-masteries/by-puuid/%s/top?count=%d",
		region, url.PathEscape(puuid), count)
	res, err := c.Fetch(ctx, endpoint, "Champion mastery", FetchOptions{CacheTTL: constants.RiotCacheTTL})
	out, res, err := decode[[]Mastery](res, err)
	if out == nil {
		return nil, res, err
	}
	return *out, res, err
}

func (c *Client) Challenges(ctx context.Context, region, puuid string) (json.RawMessage, Result, error) {
	endpoint := fmt.Sprintf("https://%s.api.riotgames.com/lol/challenges/v1/player-data/%s",
		region, url.PathEscape(puuid))
	res, err := c.Fetch(ctx, endpoint, "Challenges", FetchOptions{CacheTTL: constants.RiotCacheTTL})
	if err != nil || !res.OK {
		return nil, res, err
	}
	return res.Data, res, nil
}
