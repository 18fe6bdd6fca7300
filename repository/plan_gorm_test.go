package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"studyplan-backend/models"
)

func TestPlanRowKeepsChildOrderAndOwnership(t *testing.T) {
	responded := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	plan := &models.StudyPlan{
		ID:        "plan-1",
		CreatedBy: "a",
		Version:   3,
		Tasks: []models.Task{
			{ID: "t2", Title: "second"},
			{ID: "t1", Title: "first", AssignedTo: "b"},
		},
		Members:     []models.Member{{ID: "m1", User: "a", Role: models.RoleLeader}},
		Invitations: []models.Invitation{{ID: "i1", Email: "b@x.com", Status: models.InvitationAccepted, RespondedAt: &responded}},
	}

	row := toPlanRow(plan)
	for i, task := range row.Tasks {
		if task.PlanID != "plan-1" || task.Position != i {
			t.Fatalf("task %d has plan %q position %d", i, task.PlanID, task.Position)
		}
	}
	if row.Members[0].UserID != "a" {
		t.Fatalf("expected member user a, got %q", row.Members[0].UserID)
	}

	back := fromPlanRow(&row)
	if back.Version != 3 {
		t.Fatalf("expected version 3, got %d", back.Version)
	}
	if back.Tasks[0].ID != "t2" || back.Tasks[1].AssignedTo != "b" {
		t.Fatalf("unexpected tasks %+v", back.Tasks)
	}
	if back.Invitations[0].RespondedAt == nil || !back.Invitations[0].RespondedAt.Equal(responded) {
		t.Fatalf("expected responded timestamp to survive, got %v", back.Invitations[0].RespondedAt)
	}
}

func TestGormPlanRepositoryMalformedIDIsNotFound(t *testing.T) {
	// No connection: a malformed id must be answered before any query runs.
	repo := NewGormPlanRepository(nil)
	ctx := context.Background()

	for _, id := range []string{"abc", "", "plan-1", "123"} {
		if _, err := repo.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("get %q: expected %v, got %v", id, ErrNotFound, err)
		}
		if err := repo.Update(ctx, &models.StudyPlan{ID: id}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("update %q: expected %v, got %v", id, ErrNotFound, err)
		}
	}
}
