package constants

import "time"

const (
	RiotCacheTTL       = 60 * time.Second
	LiveRiotCacheTTL   = 30 * time.Second
	MatchCacheTTL      = 5 * time.Minute
	TimelineCacheTTL   = 10 * time.Minute
	ActiveGameCacheTTL = 15 * time.Second
	DDragonTTL         = 6 * time.Hour
)

const (
	MaxMatches        = 10
	SummaryMatches    = 20
	LiveMatchLookback = 30
	LiveMaxMatches    = 20
	MasteryTopCount   = 5
)

const (
	EarlyDeathWindow   = 10 * time.Minute
	AnnouncementWindow = 6 * time.Hour
	AnnouncementCap    = 50
	PollInterval       = 2 * time.Minute
	SnapshotFreshness  = 5 * time.Minute
	LiveIntelWorkers   = 2
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	ChatMessageLimit = 50
)
