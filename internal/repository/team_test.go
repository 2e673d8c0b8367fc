package repository

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestListMembersSkipsInvalidEntries(t *testing.T) {
	store := testStore(t)
	team := NewTeamRepository(store)
	ctx := context.Background()

	_, err := store.Insert(ctx, CollectionRoster, json.RawMessage(`{"role":"MID","name":"Faker","tagline":"KR1","region":"kr"}`))
	require.NoError(t, err)
	_, err = store.Insert(ctx, CollectionRoster, json.RawMessage(`{"role":"SUB","name":"NoTagline"}`))
	require.NoError(t, err)

	members, err := team.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "Faker#KR1", members[0].Key())
	require.Equal(t, "kr", members[0].Region)
}

func TestListOpenGoalsFiltersCompleted(t *testing.T) {
	store := testStore(t)
	team := NewTeamRepository(store)
	ctx := context.Background()

	open, err := store.Insert(ctx, CollectionSkinGoals, json.RawMessage(
		`{"player_name":"Faker","tagline":"KR1","target_rank":"CHALLENGER","skin":"Ahri skin"}`))
	require.NoError(t, err)
	_, err = store.Insert(ctx, CollectionSkinGoals, json.RawMessage(
		`{"player_name":"Done","tagline":"X","target_rank":"GOLD","skin":"y","completed_at":"2026-01-01T00:00:00Z"}`))
	require.NoError(t, err)

	goals, err := team.ListOpenGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	require.Equal(t, open.ID, goals[0].ID)
	require.Equal(t, "faker#kr1", goals[0].Key())
}

func TestCompleteGoal(t *testing.T) {
	store := testStore(t)
	team := NewTeamRepository(store)
	ctx := context.Background()

	inserted, err := store.Insert(ctx, CollectionSkinGoals, json.RawMessage(
		`{"player_name":"Faker","tagline":"KR1","target_rank":"CHALLENGER","skin":"Ahri skin"}`))
	require.NoError(t, err)

	completedAt := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, team.CompleteGoal(ctx, inserted.ID, completedAt))

	goals, err := team.ListOpenGoals(ctx)
	require.NoError(t, err)
	require.Empty(t, goals)

	rec, err := store.Get(ctx, CollectionSkinGoals, inserted.ID)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Data, &doc))
	require.Equal(t, "2026-03-04T05:06:07Z", doc["completed_at"])
}
