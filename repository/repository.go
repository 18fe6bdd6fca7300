package repository

import (
	"context"
	"errors"

	"studyplan-backend/models"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrVersionConflict = errors.New("version conflict")
	ErrInvalidOffset   = errors.New("invalid offset")
)

type UserRepository interface {
	// Create inserts the user. It returns ErrDuplicateKey if the e-mail is
	// already registered.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateFCMToken(ctx context.Context, id, token string) error
}

type PlanRepository interface {
	Create(ctx context.Context, plan *models.StudyPlan) error
	Get(ctx context.Context, id string) (*models.StudyPlan, error)

	// Update replaces the stored plan if its version still equals
	// plan.Version and increments the version on success. It returns
	// ErrVersionConflict when another writer got there first.
	Update(ctx context.Context, plan *models.StudyPlan) error

	// ListForUser returns plans created by or including userID as a member,
	// newest first.
	ListForUser(ctx context.Context, userID string) ([]models.StudyPlan, error)

	// ListWithPendingInvitation returns plans holding a pending invitation
	// for email, newest first.
	ListWithPendingInvitation(ctx context.Context, email string) ([]models.StudyPlan, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	ListForPlans(ctx context.Context, planIDs []string, offset, limit int) ([]models.Activity, error)
}
