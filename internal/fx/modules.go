package fx

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"league-dashboard/internal/cache"
	"league-dashboard/internal/config"
	"league-dashboard/internal/database"
	"league-dashboard/internal/ddragon"
	"league-dashboard/internal/logger"
	"league-dashboard/internal/repository"
	"league-dashboard/internal/riot"
	"league-dashboard/internal/roster"
	"league-dashboard/internal/server"
	"league-dashboard/internal/service"
)

func ProvideStateStore(cfg *config.Config) (roster.Store, error) {
	return roster.NewFileStore(cfg.StateDir)
}

func ProvidePoller(
	summoners *service.SummonerService,
	team *repository.TeamRepository,
	store roster.Store,
	logger zerolog.Logger,
) *roster.Poller {
	return roster.NewPoller(service.RosterFetcher(summoners), team, team, store, logger)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(cache.New),
	// riot surface
	fx.Provide(riot.NewClient),
	fx.Provide(ddragon.NewClient),
	// repos
	fx.Provide(repository.NewRecordStore),
	fx.Provide(repository.NewTeamRepository),
	// svc
	fx.Provide(service.NewSummonerService),
	fx.Provide(service.NewLiveIntelService),
	// poller
	fx.Provide(ProvideStateStore),
	fx.Provide(ProvidePoller),
	// server
	fx.Provide(server.New),
)
