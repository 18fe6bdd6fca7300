package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"studyplan-backend/models"
	"studyplan-backend/repository"
)

type fakeNotifier struct {
	mu       sync.Mutex
	invited  []string
	accepted []string
	assigned []string
}

func (n *fakeNotifier) NotifyInvitation(_ context.Context, email string, _ *models.User, _ *models.StudyPlan) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invited = append(n.invited, email)
}

func (n *fakeNotifier) NotifyInvitationAccepted(_ context.Context, creator, _ *models.User, _ *models.StudyPlan) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepted = append(n.accepted, creator.ID)
}

func (n *fakeNotifier) NotifyTaskAssigned(_ context.Context, assignee, _ *models.User, _ *models.StudyPlan, task *models.Task) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assigned = append(n.assigned, assignee.ID+":"+task.ID)
}

type testEnv struct {
	accounts   *AccountService
	plans      *PlanService
	activity   *ActivityService
	notifier   *fakeNotifier
	planRepo   *repository.MemoryPlanRepository
	activities *repository.MemoryActivityRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	users := repository.NewMemoryUserRepository()
	planRepo := repository.NewMemoryPlanRepository()
	activities := repository.NewMemoryActivityRepository()
	notifier := &fakeNotifier{}

	accounts := NewAccountService(logger, users, NewTokenIssuer("test-secret", "studyplan-test", time.Hour))
	accounts.hashCost = bcrypt.MinCost
	activity := NewActivityService(logger, activities, planRepo)

	return &testEnv{
		accounts:   accounts,
		plans:      NewPlanService(logger, planRepo, users, activity, notifier),
		activity:   activity,
		notifier:   notifier,
		planRepo:   planRepo,
		activities: activities,
	}
}

func (e *testEnv) register(t *testing.T, name, email string) *models.User {
	t.Helper()
	res, err := e.accounts.Register(context.Background(), RegisterParams{
		Name:     name,
		Email:    email,
		Password: "secret123",
		College:  "MIT",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res.User
}

func (e *testEnv) createPlan(t *testing.T, userID, title string) *models.StudyPlan {
	t.Helper()
	plan, err := e.plans.Create(context.Background(), userID, CreatePlanParams{
		Title:     title,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return plan
}

func (e *testEnv) addTask(t *testing.T, userID, planID, title string) string {
	t.Helper()
	plan, err := e.plans.CreateTask(context.Background(), userID, planID, CreateTaskParams{Title: title})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return plan.Tasks[len(plan.Tasks)-1].ID
}

func (e *testEnv) join(t *testing.T, creator, invitee *models.User, planID string) {
	t.Helper()
	ctx := context.Background()
	plan, err := e.plans.Invite(ctx, creator.ID, planID, invitee.Email)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	invitationID := plan.Invitations[len(plan.Invitations)-1].ID
	if _, err := e.plans.RespondToInvitation(ctx, invitee.ID, planID, invitationID, models.InvitationAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
}
