package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyplan-backend/models"
)

// MemoryUserRepository keeps users in process. Used for local runs with
// USER_STORE=memory and in tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return ErrDuplicateKey
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *MemoryUserRepository) UpdateFCMToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	user.FCMToken = token
	user.UpdatedAt = time.Now()
	r.byID[id] = user
	return nil
}

type MemoryPlanRepository struct {
	mu    sync.RWMutex
	plans map[string]*models.StudyPlan
}

func NewMemoryPlanRepository() *MemoryPlanRepository {
	return &MemoryPlanRepository{plans: make(map[string]*models.StudyPlan)}
}

func (r *MemoryPlanRepository) Create(_ context.Context, plan *models.StudyPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[plan.ID]; ok {
		return ErrDuplicateKey
	}
	r.plans[plan.ID] = plan.Clone()
	return nil
}

func (r *MemoryPlanRepository) Get(_ context.Context, id string) (*models.StudyPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, ok := r.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return plan.Clone(), nil
}

func (r *MemoryPlanRepository) Update(_ context.Context, plan *models.StudyPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.plans[plan.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != plan.Version {
		return ErrVersionConflict
	}
	plan.Version++
	r.plans[plan.ID] = plan.Clone()
	return nil
}

func (r *MemoryPlanRepository) ListForUser(_ context.Context, userID string) ([]models.StudyPlan, error) {
	return r.list(func(p *models.StudyPlan) bool {
		return p.CreatedBy == userID || p.IsMember(userID)
	}), nil
}

func (r *MemoryPlanRepository) ListWithPendingInvitation(_ context.Context, email string) ([]models.StudyPlan, error) {
	return r.list(func(p *models.StudyPlan) bool {
		return p.HasPendingInvitation(email)
	}), nil
}

func (r *MemoryPlanRepository) list(match func(*models.StudyPlan) bool) []models.StudyPlan {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.StudyPlan, 0)
	for _, p := range r.plans {
		if match(p) {
			out = append(out, *p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

type MemoryActivityRepository struct {
	mu         sync.RWMutex
	activities []models.Activity
}

func NewMemoryActivityRepository() *MemoryActivityRepository {
	return &MemoryActivityRepository{}
}

func (r *MemoryActivityRepository) Create(_ context.Context, activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	r.activities = append(r.activities, *activity)
	return nil
}

func (r *MemoryActivityRepository) ListForPlans(_ context.Context, planIDs []string, offset, limit int) ([]models.Activity, error) {
	if offset < 0 {
		return nil, ErrInvalidOffset
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(planIDs))
	for _, id := range planIDs {
		wanted[id] = struct{}{}
	}

	matched := make([]models.Activity, 0)
	for i := len(r.activities) - 1; i >= 0; i-- {
		if _, ok := wanted[r.activities[i].PlanID]; ok {
			matched = append(matched, r.activities[i])
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []models.Activity{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}
