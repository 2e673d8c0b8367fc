package roster

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"league-dashboard/internal/constants"
)

// MemberFetcher produces a fresh snapshot for one member. The poller treats
// any error as a soft failure for that member only.
type MemberFetcher func(ctx context.Context, member Member) (Snapshot, error)

// GoalSource supplies open skin goals and records completions. Completion is
// best-effort; the poller logs and moves on when it fails.
type GoalSource interface {
	ListOpenGoals(ctx context.Context) ([]SkinGoal, error)
	CompleteGoal(ctx context.Context, id string, completedAt time.Time) error
}

// MemberSource lists the current roster.
type MemberSource interface {
	ListMembers(ctx context.Context) ([]Member, error)
}

type Poller struct {
	fetch   MemberFetcher
	members MemberSource
	goals   GoalSource
	store   Store
	logger  zerolog.Logger
	now     func() time.Time
}

func NewPoller(fetch MemberFetcher, members MemberSource, goals GoalSource, store Store, logger zerolog.Logger) *Poller {
	return &Poller{
		fetch:   fetch,
		members: members,
		goals:   goals,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock overrides the poller's time source.
func (p *Poller) SetClock(now func() time.Time) {
	p.now = now
}

// Run drives poll cycles on a fixed interval until ctx is cancelled. There is
// no cancellation of an in-flight cycle; a slow cycle is simply superseded by
// the next tick and stale results are filtered by the merge rule.
func (p *Poller) Run(ctx context.Context) {
	p.runCycle(ctx)

	ticker := time.NewTicker(constants.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runCycle(ctx)
		}
	}
}

func (p *Poller) runCycle(ctx context.Context) {
	if err := p.RunCycle(ctx); err != nil {
		p.logger.Error().Err(err).Msg("poll cycle failed")
	}
}

type fetchOutcome struct {
	member   Member
	snapshot Snapshot
	err      error
}

// RunCycle performs one poll: fetch every member concurrently, merge against
// the previous snapshots, run the three detectors and persist the state. A
// single member's failure does not block the rest; it marks hasErrors, which
// keeps the previous freshness timestamp so the whole roster retries sooner
// while the member's cached snapshot keeps being served as stale.
func (p *Poller) RunCycle(ctx context.Context) error {
	state, err := p.store.Load()
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to load poller state, starting fresh")
		state = NewState()
	}
	state.normalize()

	now := p.now()
	if !state.HasErrors && state.FetchedAt > 0 &&
		now.UnixMilli()-state.FetchedAt < constants.SnapshotFreshness.Milliseconds() {
		p.logger.Debug().Int64("fetched_at", state.FetchedAt).Msg("snapshot cache still fresh, skipping poll")
		return nil
	}

	members, err := p.members.ListMembers(ctx)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		p.logger.Debug().Msg("empty roster, nothing to poll")
		return nil
	}

	goals, err := p.goals.ListOpenGoals(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to load skin goals")
		goals = nil
	}
	goalsByKey := make(map[string]SkinGoal, len(goals))
	for _, goal := range goals {
		goalsByKey[goal.Key()] = goal
	}

	outcomes := make([]fetchOutcome, len(members))
	var g errgroup.Group
	for i, member := range members {
		g.Go(func() error {
			snapshot, err := p.fetch(ctx, member)
			outcomes[i] = fetchOutcome{member: member, snapshot: snapshot, err: err}
			return nil
		})
	}
	// Workers never return errors; failures ride in outcomes.
	_ = g.Wait()

	hasErrors := false
	var newAnnouncements []Announcement
	var completions []SkinGoal
	nextSnapshots := make(map[string]Snapshot, len(members))

	for _, outcome := range outcomes {
		key := outcome.member.Key()
		cached, hadCached := state.Snapshots[key]

		if outcome.err != nil {
			hasErrors = true
			p.logger.Warn().Err(outcome.err).Str("member", key).Msg("member fetch failed, serving cached snapshot")
			if hadCached {
				cached.Stale = true
				nextSnapshots[key] = cached
			}
			continue
		}

		var cachedPtr *Snapshot
		merged := outcome.snapshot
		if hadCached {
			cachedPtr = &cached
			merged = Merge(cached, outcome.snapshot)
		}
		nextSnapshots[key] = merged

		sample := Sample{Key: key, Cached: cachedPtr, Snapshot: merged, Now: now}

		var anns []Announcement
		state.Tiers, anns = DetectTierChange(state.Tiers, sample)
		newAnnouncements = append(newAnnouncements, anns...)

		var completed *SkinGoal
		if goal, ok := goalsByKey[strings.ToLower(key)]; ok {
			state.Goals, anns, completed = DetectGoalCompletion(state.Goals, sample, &goal)
			newAnnouncements = append(newAnnouncements, anns...)
			if completed != nil && completed.CompletedAt == "" {
				completions = append(completions, *completed)
			}
		}

		state.Matches, anns = DetectMatchResult(state.Matches, sample)
		newAnnouncements = append(newAnnouncements, anns...)
	}

	state.Snapshots = nextSnapshots
	state.HasErrors = hasErrors
	if !hasErrors {
		state.FetchedAt = now.UnixMilli()
	}
	if len(newAnnouncements) > 0 {
		state.Announcements = MergeAnnouncements(state.Announcements, newAnnouncements)
		p.logger.Info().Int("count", len(newAnnouncements)).Msg("new announcements")
	}

	if err := p.store.Save(state); err != nil {
		return err
	}

	for _, goal := range completions {
		if err := p.goals.CompleteGoal(ctx, goal.ID, now); err != nil {
			p.logger.Warn().Err(err).Str("goal_id", goal.ID).Msg("failed to mark skin goal completed")
		}
	}

	p.logger.Debug().Int("members", len(members)).Bool("has_errors", hasErrors).Msg("poll cycle completed")
	return nil
}

// Announcements returns the persisted announcement list, newest first.
func (p *Poller) Announcements() []Announcement {
	state, err := p.store.Load()
	if err != nil {
		return nil
	}
	return state.Announcements
}
