// Package ddragon loads the static Data Dragon catalogs (champions, items,
// summoner spells) behind a single long-TTL slot that is refreshed wholesale
// when stale.
package ddragon

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"

	"league-dashboard/internal/constants"
)

const baseURL = "https://ddragon.leagueoflegends.com"

type Champion struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type Item struct {
	Name  string   `json:"name"`
	Image string   `json:"image"`
	From  []string `json:"from"`
}

type Spell struct {
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Cooldown float64 `json:"cooldown"`
}

// Catalog is an immutable snapshot of the asset metadata for one game
// version. ChampionsByID is keyed by the numeric champion key, ChampionsByName
// by the champion id string (e.g. "MonkeyKing").
type Catalog struct {
	Version         string
	ChampionsByID   map[int]Champion
	ChampionsByName map[string]Champion
	ItemsByID       map[int]Item
	SpellsByID      map[int]Spell
}

type Client struct {
	client *fasthttp.Client
	logger zerolog.Logger
	group  singleflight.Group

	mu        sync.RWMutex
	catalog   *Catalog
	fetchedAt time.Time

	now func() time.Time
}

func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		client: &fasthttp.Client{
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
		now:    time.Now,
	}
}

// Catalog returns the cached catalog, refreshing it wholesale when older than
// the Data Dragon TTL. Concurrent callers share one refresh.
func (c *Client) Catalog(ctx context.Context) (*Catalog, error) {
	c.mu.RLock()
	catalog, fetchedAt := c.catalog, c.fetchedAt
	c.mu.RUnlock()
	if catalog != nil && c.now().Sub(fetchedAt) < constants.DDragonTTL {
		return catalog, nil
	}

	v, err, _ := c.group.Do("catalog", func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

func (c *Client) refresh(ctx context.Context) (*Catalog, error) {
	version, err := c.latestVersion(ctx)
	if err != nil {
		return nil, err
	}

	var championsPayload struct {
		Data map[string]struct {
			Key   string `json:"key"`
			Name  string `json:"name"`
			Image struct {
				Full string `json:"full"`
			} `json:"image"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json", baseURL, version), &championsPayload); err != nil {
		return nil, fmt.Errorf("failed to load Data Dragon champions: %w", err)
	}

	var itemsPayload struct {
		Data map[string]struct {
			Name  string `json:"name"`
			Image struct {
				Full string `json:"full"`
			} `json:"image"`
			From []string `json:"from"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/cdn/%s/data/en_US/item.json", baseURL, version), &itemsPayload); err != nil {
		return nil, fmt.Errorf("failed to load Data Dragon items: %w", err)
	}

	var spellsPayload struct {
		Data map[string]struct {
			Key   string `json:"key"`
			Name  string `json:"name"`
			Image struct {
				Full string `json:"full"`
			} `json:"image"`
			Cooldown []float64 `json:"cooldown"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/cdn/%s/data/en_US/summoner.json", baseURL, version), &spellsPayload); err != nil {
		return nil, fmt.Errorf("failed to load Data Dragon summoners: %w", err)
	}

	catalog := &Catalog{
		Version:         version,
		ChampionsByID:   make(map[int]Champion, len(championsPayload.Data)),
		ChampionsByName: make(map[string]Champion, len(championsPayload.Data)),
		ItemsByID:       make(map[int]Item, len(itemsPayload.Data)),
		SpellsByID:      make(map[int]Spell, len(spellsPayload.Data)),
	}

	for id, champ := range championsPayload.Data {
		entry := Champion{Name: champ.Name, Image: champ.Image.Full}
		if key, err := strconv.Atoi(champ.Key); err == nil {
			catalog.ChampionsByID[key] = entry
		}
		catalog.ChampionsByName[id] = entry
	}
	for id, item := range itemsPayload.Data {
		numericID, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		catalog.ItemsByID[numericID] = Item{Name: item.Name, Image: item.Image.Full, From: item.From}
	}
	for _, spell := range spellsPayload.Data {
		key, err := strconv.Atoi(spell.Key)
		if err != nil {
			continue
		}
		cooldown := 0.0
		if len(spell.Cooldown) > 0 {
			cooldown = spell.Cooldown[0]
		}
		catalog.SpellsByID[key] = Spell{Name: spell.Name, Image: spell.Image.Full, Cooldown: cooldown}
	}

	c.mu.Lock()
	c.catalog = catalog
	c.fetchedAt = c.now()
	c.mu.Unlock()

	c.logger.Info().Str("version", version).
		Int("champions", len(catalog.ChampionsByID)).
		Int("items", len(catalog.ItemsByID)).
		Int("spells", len(catalog.SpellsByID)).
		Msg("data dragon catalog refreshed")

	return catalog, nil
}

func (c *Client) latestVersion(ctx context.Context) (string, error) {
	var versions []string
	if err := c.getJSON(ctx, baseURL+"/api/versions.json", &versions); err != nil {
		return "", fmt.Errorf("failed to load Data Dragon versions: %w", err)
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("no Data Dragon versions available")
	}
	return versions[0], nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("ddragon status %d", resp.StatusCode())
	}
	return json.Unmarshal(resp.Body(), out)
}
