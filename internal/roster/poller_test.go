package roster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"league-dashboard/internal/riot"
	"league-dashboard/internal/stats"
)

type fakeTeam struct {
	mu        sync.Mutex
	members   []Member
	goals     []SkinGoal
	completed []string
}

func (f *fakeTeam) ListMembers(ctx context.Context) ([]Member, error) {
	return f.members, nil
}

func (f *fakeTeam) ListOpenGoals(ctx context.Context) ([]SkinGoal, error) {
	return f.goals, nil
}

func (f *fakeTeam) CompleteGoal(ctx context.Context, id string, completedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, id)
	return nil
}

type fakeFetcher struct {
	mu        sync.Mutex
	snapshots map[string]Snapshot
	errs      map[string]error
	calls     int
}

func (f *fakeFetcher) fetch(ctx context.Context, member Member) (Snapshot, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := f.errs[member.Key()]; err != nil {
		return Snapshot{}, err
	}
	return f.snapshots[member.Key()], nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func pollerUnderTest(t *testing.T, fetcher *fakeFetcher, team *fakeTeam, store Store, now time.Time) *Poller {
	t.Helper()
	p := NewPoller(fetcher.fetch, team, team, store, zerolog.Nop())
	p.SetClock(func() time.Time { return now })
	return p
}

func rankedSnapshot(tier string, lastPlayed int64) Snapshot {
	return Snapshot{
		Ranked:         []riot.RankedEntry{{QueueType: "RANKED_SOLO_5x5", Tier: tier}},
		Status:         &Status{LastPlayedAt: lastPlayed},
		MatchSummaries: []stats.MatchSummary{{MatchID: "EUW1_1", GameCreation: lastPlayed}},
	}
}

func TestRunCycleStoresSnapshots(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	team := &fakeTeam{members: []Member{{Name: "Faker", Tagline: "KR1", Region: "euw1"}}}
	fetcher := &fakeFetcher{snapshots: map[string]Snapshot{
		"Faker#KR1": rankedSnapshot("GOLD", now.UnixMilli()-time.Hour.Milliseconds()),
	}}
	store := NewMemoryStore()

	p := pollerUnderTest(t, fetcher, team, store, now)
	require.NoError(t, p.RunCycle(context.Background()))

	state, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, state.Snapshots, "Faker#KR1")
	require.Equal(t, now.UnixMilli(), state.FetchedAt)
	require.False(t, state.HasErrors)
	require.Equal(t, "GOLD", state.Tiers["faker#kr1"])
}

func TestRunCycleSkipsWhileFresh(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	team := &fakeTeam{members: []Member{{Name: "P", Tagline: "T"}}}
	fetcher := &fakeFetcher{snapshots: map[string]Snapshot{}}
	store := NewMemoryStore()

	fresh := NewState()
	fresh.FetchedAt = now.UnixMilli() - time.Minute.Milliseconds()
	require.NoError(t, store.Save(fresh))

	p := pollerUnderTest(t, fetcher, team, store, now)
	require.NoError(t, p.RunCycle(context.Background()))

	require.Zero(t, fetcher.callCount())
}

func TestRunCycleRetriesWhileFreshAfterErrors(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	team := &fakeTeam{members: []Member{{Name: "P", Tagline: "T"}}}
	fetcher := &fakeFetcher{snapshots: map[string]Snapshot{
		"P#T": rankedSnapshot("GOLD", now.UnixMilli()),
	}}
	store := NewMemoryStore()

	errored := NewState()
	errored.FetchedAt = now.UnixMilli() - time.Minute.Milliseconds()
	errored.HasErrors = true
	require.NoError(t, store.Save(errored))

	p := pollerUnderTest(t, fetcher, team, store, now)
	require.NoError(t, p.RunCycle(context.Background()))

	require.Equal(t, 1, fetcher.callCount())
}

func TestRunCycleMemberErrorKeepsCachedStale(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	team := &fakeTeam{members: []Member{{Name: "P", Tagline: "T"}}}
	fetcher := &fakeFetcher{errs: map[string]error{"P#T": errors.New("riot down")}}
	store := NewMemoryStore()

	seeded := NewState()
	seeded.Snapshots["P#T"] = rankedSnapshot("GOLD", 123)
	seeded.FetchedAt = now.UnixMilli() - 2*time.Hour.Milliseconds()
	require.NoError(t, store.Save(seeded))

	p := pollerUnderTest(t, fetcher, team, store, now)
	require.NoError(t, p.RunCycle(context.Background()))

	state, err := store.Load()
	require.NoError(t, err)
	require.True(t, state.HasErrors)
	require.True(t, state.Snapshots["P#T"].Stale)
	// The freshness timestamp is not advanced, so the next cycle retries.
	require.Equal(t, seeded.FetchedAt, state.FetchedAt)
}

func TestRunCycleEmitsTierAnnouncement(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	team := &fakeTeam{members: []Member{{Name: "P", Tagline: "T"}}}
	fetcher := &fakeFetcher{snapshots: map[string]Snapshot{
		"P#T": rankedSnapshot("PLATINUM", now.UnixMilli()-time.Hour.Milliseconds()),
	}}
	store := NewMemoryStore()

	seeded := NewState()
	seeded.Tiers["p#t"] = "GOLD"
	require.NoError(t, store.Save(seeded))

	p := pollerUnderTest(t, fetcher, team, store, now)
	require.NoError(t, p.RunCycle(context.Background()))

	announcements := p.Announcements()
	require.Len(t, announcements, 1)
	require.Equal(t, "tier:p#t:PLATINUM", announcements[0].ID)
}

func TestRunCycleCompletesGoals(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	team := &fakeTeam{
		members: []Member{{Name: "P", Tagline: "T"}},
		goals:   []SkinGoal{{ID: "g1", PlayerName: "P", Tagline: "T", TargetRank: "GOLD", Skin: "Ahri skin"}},
	}
	fetcher := &fakeFetcher{snapshots: map[string]Snapshot{
		"P#T": rankedSnapshot("GOLD", now.UnixMilli()-time.Hour.Milliseconds()),
	}}
	store := NewMemoryStore()

	p := pollerUnderTest(t, fetcher, team, store, now)
	require.NoError(t, p.RunCycle(context.Background()))

	require.Equal(t, []string{"g1"}, team.completed)

	// Second cycle must not complete the goal again.
	later := now.Add(10 * time.Minute)
	p.SetClock(func() time.Time { return later })
	require.NoError(t, p.RunCycle(context.Background()))
	require.Equal(t, []string{"g1"}, team.completed)
}

func TestRunCycleAllDetectorsFireTogether(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	team := &fakeTeam{
		members: []Member{{Name: "P", Tagline: "T"}},
		goals:   []SkinGoal{{ID: "g1", PlayerName: "P", Tagline: "T", TargetRank: "PLATINUM", Skin: "Ahri skin"}},
	}

	snapshot := Snapshot{
		Ranked: []riot.RankedEntry{{QueueType: "RANKED_SOLO_5x5", Tier: "PLATINUM"}},
		Status: &Status{LastPlayedAt: now.UnixMilli() - 30*time.Minute.Milliseconds()},
		MatchSummaries: []stats.MatchSummary{{
			MatchID:      "EUW1_99",
			QueueID:      420,
			QueueName:    "Ranked Solo/Duo",
			GameCreation: now.UnixMilli() - time.Hour.Milliseconds(),
			GameDuration: 1800,
			Win:          true,
			Kills:        5,
			Deaths:       4,
			Assists:      3,
		}},
	}
	fetcher := &fakeFetcher{snapshots: map[string]Snapshot{"P#T": snapshot}}
	store := NewMemoryStore()

	seeded := NewState()
	seeded.Tiers["p#t"] = "GOLD"
	require.NoError(t, store.Save(seeded))

	p := pollerUnderTest(t, fetcher, team, store, now)
	require.NoError(t, p.RunCycle(context.Background()))

	ids := make(map[string]bool)
	for _, a := range p.Announcements() {
		ids[a.ID] = true
	}
	// One cycle can promote, complete a goal and announce the match at once.
	require.True(t, ids["tier:p#t:PLATINUM"], "tier announcement missing: %v", ids)
	require.True(t, ids["goal:p#t-platinum"], "goal announcement missing: %v", ids)
	require.True(t, ids["match:p#t:EUW1_99"], "match announcement missing: %v", ids)
	require.Equal(t, []string{"g1"}, team.completed)
}
