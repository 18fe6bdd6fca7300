package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"studyplan-backend/models"
)

func TestMemoryUserRepositoryDuplicateEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, &models.User{Email: "a@x.com", Name: "A"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(ctx, &models.User{Email: "a@x.com", Name: "A2"})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected %v, got %v", ErrDuplicateKey, err)
	}
}

func TestMemoryPlanRepositoryVersionConflict(t *testing.T) {
	repo := NewMemoryPlanRepository()
	ctx := context.Background()

	plan := &models.StudyPlan{ID: "plan-1", Title: "Physics", CreatedBy: "a"}
	if err := repo.Create(ctx, plan); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, _ := repo.Get(ctx, "plan-1")
	second, _ := repo.Get(ctx, "plan-1")

	first.Title = "Physics I"
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if first.Version != 1 {
		t.Fatalf("expected version 1 after update, got %d", first.Version)
	}

	second.Title = "Physics II"
	if err := repo.Update(ctx, second); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected %v, got %v", ErrVersionConflict, err)
	}

	stored, _ := repo.Get(ctx, "plan-1")
	if stored.Title != "Physics I" {
		t.Fatalf("expected first writer to win, got %q", stored.Title)
	}
}

func TestMemoryPlanRepositoryUpdateMissing(t *testing.T) {
	repo := NewMemoryPlanRepository()
	err := repo.Update(context.Background(), &models.StudyPlan{ID: "nope"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %v, got %v", ErrNotFound, err)
	}
}

func TestMemoryPlanRepositoryListings(t *testing.T) {
	repo := NewMemoryPlanRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	plans := []*models.StudyPlan{
		{ID: "p1", CreatedBy: "a", CreatedAt: base},
		{ID: "p2", CreatedBy: "b", CreatedAt: base.Add(time.Hour), Members: []models.Member{{User: "a", Role: models.RoleMember}}},
		{ID: "p3", CreatedBy: "b", CreatedAt: base.Add(2 * time.Hour), Invitations: []models.Invitation{{Email: "a@x.com", Status: models.InvitationPending}}},
		{ID: "p4", CreatedBy: "c", CreatedAt: base.Add(3 * time.Hour), Invitations: []models.Invitation{{Email: "a@x.com", Status: models.InvitationRejected}}},
	}
	for _, p := range plans {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.ID, err)
		}
	}

	mine, _ := repo.ListForUser(ctx, "a")
	if len(mine) != 2 || mine[0].ID != "p2" || mine[1].ID != "p1" {
		t.Fatalf("unexpected plans for user: %+v", ids(mine))
	}

	invited, _ := repo.ListWithPendingInvitation(ctx, "a@x.com")
	if len(invited) != 1 || invited[0].ID != "p3" {
		t.Fatalf("unexpected invited plans: %+v", ids(invited))
	}
}

func TestMemoryActivityRepositoryPagination(t *testing.T) {
	repo := NewMemoryActivityRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_ = repo.Create(ctx, &models.Activity{PlanID: "p1", Type: models.ActivityTaskCreated, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	_ = repo.Create(ctx, &models.Activity{PlanID: "p2", Type: models.ActivityPlanCreated, CreatedAt: base})

	page, err := repo.ListForPlans(ctx, []string{"p1"}, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(page))
	}
	if !page[0].CreatedAt.Equal(base.Add(3 * time.Minute)) {
		t.Fatalf("expected newest-first ordering, got %v", page[0].CreatedAt)
	}

	empty, _ := repo.ListForPlans(ctx, []string{"p1"}, 10, 2)
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d", len(empty))
	}
}

func TestCachedUserRepositoryWithoutRedis(t *testing.T) {
	inner := NewMemoryUserRepository()
	repo := NewCachedUserRepository(inner, nil, time.Minute, zerolog.Nop())
	ctx := context.Background()

	user := &models.User{Email: "a@x.com", Name: "A"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.UpdateFCMToken(ctx, user.ID, "device"); err != nil {
		t.Fatalf("update token: %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FCMToken != "device" {
		t.Fatalf("expected fcm token to pass through, got %q", got.FCMToken)
	}
}

func ids(plans []models.StudyPlan) []string {
	out := make([]string, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.ID)
	}
	return out
}

func TestMemoryActivityRepositoryNegativeOffset(t *testing.T) {
	repo := NewMemoryActivityRepository()
	ctx := context.Background()
	_ = repo.Create(ctx, &models.Activity{PlanID: "p1", Type: models.ActivityPlanCreated})

	if _, err := repo.ListForPlans(ctx, []string{"p1"}, -20, 20); !errors.Is(err, ErrInvalidOffset) {
		t.Fatalf("expected %v, got %v", ErrInvalidOffset, err)
	}
}
