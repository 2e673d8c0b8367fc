package riot

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"league-dashboard/internal/cache"
	"league-dashboard/internal/config"
	"league-dashboard/internal/constants"
)

func TestRouteFor(t *testing.T) {
	require.Equal(t, "europe", RouteFor("euw1"))
	require.Equal(t, "europe", RouteFor("eun1"))
	require.Equal(t, "americas", RouteFor("na1"))
	require.Equal(t, "asia", RouteFor("kr"))
	require.Equal(t, "sea", RouteFor("oc1"))

	// Unknown regions fall back to the default region's route.
	require.Equal(t, "europe", RouteFor("moon1"))
	require.Equal(t, "europe", RouteFor(""))
}

func TestLookupsServeFromCacheWithCallerTTL(t *testing.T) {
	ctx := context.Background()
	store := cache.NewLocal(zerolog.Nop())
	client := NewClient(&config.Config{RiotAPIKey: "test-key"}, store, zerolog.Nop())

	accountURL := "https://europe.api.riotgames.com/riot/account/v1/accounts/by-riot-id/Faker/KR1"
	store.Set(ctx, accountURL, []byte(`{"puuid":"abc","gameName":"Faker","tagLine":"KR1"}`), time.Minute)

	account, res, err := client.AccountByRiotID(ctx, "europe", "Faker", "KR1", constants.LiveRiotCacheTTL)
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, "abc", account.Puuid)

	idsURL := "https://europe.api.riotgames.com/lol/match/v5/matches/by-puuid/abc/ids?start=0&count=5"
	store.Set(ctx, idsURL, []byte(`["EUW1_1","EUW1_2"]`), time.Minute)

	ids, res, err := client.MatchIDs(ctx, "europe", "abc", 5, constants.LiveRiotCacheTTL)
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, []string{"EUW1_1", "EUW1_2"}, ids)
}
