package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"studyplan-backend/models"
	"studyplan-backend/policy"
	"studyplan-backend/repository"
)

// ActivityService keeps the per-plan activity feed. Writing to the feed
// never fails the operation that produced the entry.
type ActivityService struct {
	logger     zerolog.Logger
	activities repository.ActivityRepository
	plans      repository.PlanRepository
	now        func() time.Time
}

func NewActivityService(logger zerolog.Logger, activities repository.ActivityRepository, plans repository.PlanRepository) *ActivityService {
	return &ActivityService{
		logger:     logger,
		activities: activities,
		plans:      plans,
		now:        time.Now,
	}
}

func (s *ActivityService) Record(ctx context.Context, planID, userID, kind, referenceID, description string) {
	activity := &models.Activity{
		PlanID:      planID,
		UserID:      userID,
		Type:        kind,
		ReferenceID: referenceID,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		s.logger.Warn().
			Err(err).
			Str("plan_id", planID).
			Str("type", kind).
			Msg("failed to record activity")
	}
}

// ListForPlan returns the feed of one plan. Callers that may not view the
// plan get ErrPlanNotFound.
func (s *ActivityService) ListForPlan(ctx context.Context, userID, planID string, offset, limit int) ([]models.Activity, error) {
	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if !policy.Can(userID, policy.ActionView, plan) {
		return nil, ErrPlanNotFound
	}

	activities, err := s.activities.ListForPlans(ctx, []string{plan.ID}, offset, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("plan_id", planID).Msg("failed to list activity")
		return nil, fmt.Errorf("list activity: %w", err)
	}
	for i := range activities {
		activities[i].PlanTitle = plan.Title
	}
	return activities, nil
}

// ListForUser returns the combined feed of every plan the user belongs to.
func (s *ActivityService) ListForUser(ctx context.Context, userID string, offset, limit int) ([]models.Activity, error) {
	plans, err := s.plans.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list plans")
		return nil, fmt.Errorf("list plans: %w", err)
	}

	titles := make(map[string]string, len(plans))
	planIDs := make([]string, 0, len(plans))
	for _, p := range plans {
		titles[p.ID] = p.Title
		planIDs = append(planIDs, p.ID)
	}

	activities, err := s.activities.ListForPlans(ctx, planIDs, offset, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list activity")
		return nil, fmt.Errorf("list activity: %w", err)
	}
	for i := range activities {
		activities[i].PlanTitle = titles[activities[i].PlanID]
	}
	return activities, nil
}
