package repository

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"league-dashboard/internal/roster"
)

// TeamRepository reads the roster and skin-goal collections into the typed
// shapes the poller consumes, and records goal completions.
type TeamRepository struct {
	records *RecordStore
}

func NewTeamRepository(records *RecordStore) *TeamRepository {
	return &TeamRepository{records: records}
}

func (r *TeamRepository) ListMembers(ctx context.Context) ([]roster.Member, error) {
	recs, err := r.records.List(ctx, CollectionRoster, ListOptions{Ascending: true})
	if err != nil {
		return nil, err
	}

	members := make([]roster.Member, 0, len(recs))
	for _, rec := range recs {
		var member roster.Member
		if err := json.Unmarshal(rec.Data, &member); err != nil {
			continue
		}
		if member.Name == "" || member.Tagline == "" {
			continue
		}
		members = append(members, member)
	}
	return members, nil
}

func (r *TeamRepository) ListOpenGoals(ctx context.Context) ([]roster.SkinGoal, error) {
	recs, err := r.records.List(ctx, CollectionSkinGoals, ListOptions{})
	if err != nil {
		return nil, err
	}

	goals := make([]roster.SkinGoal, 0, len(recs))
	for _, rec := range recs {
		var goal roster.SkinGoal
		if err := json.Unmarshal(rec.Data, &goal); err != nil {
			continue
		}
		goal.ID = rec.ID
		if goal.CompletedAt != "" {
			continue
		}
		goals = append(goals, goal)
	}
	return goals, nil
}

func (r *TeamRepository) CompleteGoal(ctx context.Context, id string, completedAt time.Time) error {
	rec, err := r.records.Get(ctx, CollectionSkinGoals, id)
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := json.Unmarshal(rec.Data, &doc); err != nil {
		return err
	}
	doc["completed_at"] = completedAt.UTC().Format(time.RFC3339)

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = r.records.Update(ctx, CollectionSkinGoals, id, data)
	return err
}
