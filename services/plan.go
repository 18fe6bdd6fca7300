package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studyplan-backend/models"
	"studyplan-backend/policy"
	"studyplan-backend/repository"
)

// maxUpdateAttempts bounds how often a mutation is re-applied after losing a
// version race on the same plan.
const maxUpdateAttempts = 3

type CreatePlanParams struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

type CreateTaskParams struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    string
}

type PlanService struct {
	logger   zerolog.Logger
	plans    repository.PlanRepository
	users    repository.UserRepository
	activity *ActivityService
	notifier Notifier
	now      func() time.Time
	newID    func() string
}

func NewPlanService(
	logger zerolog.Logger,
	plans repository.PlanRepository,
	users repository.UserRepository,
	activity *ActivityService,
	notifier Notifier,
) *PlanService {
	return &PlanService{
		logger:   logger,
		plans:    plans,
		users:    users,
		activity: activity,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// List returns the plans the user created or is a member of.
func (s *PlanService) List(ctx context.Context, userID string) ([]models.StudyPlan, error) {
	plans, err := s.plans.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list plans")
		return nil, fmt.Errorf("list plans: %w", err)
	}
	s.logger.Debug().Str("user_id", userID).Int("count", len(plans)).Msg("listed plans")
	return plans, nil
}

// Get returns a plan visible to the user, or ErrPlanNotFound.
func (s *PlanService) Get(ctx context.Context, userID, planID string) (*models.StudyPlan, error) {
	plan, err := s.load(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(userID, policy.ActionView, plan) {
		s.logger.Warn().Str("user_id", userID).Str("plan_id", planID).Msg("plan not visible to user")
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// Create stores a new plan whose only member is its creator, as leader.
//
// It returns ErrInvalidDateRange if the end date precedes the start date.
func (s *PlanService) Create(ctx context.Context, userID string, params CreatePlanParams) (*models.StudyPlan, error) {
	if !params.StartDate.IsZero() && !params.EndDate.IsZero() && params.EndDate.Before(params.StartDate) {
		return nil, ErrInvalidDateRange
	}

	now := s.now()
	plan := &models.StudyPlan{
		ID:          s.newID(),
		Title:       params.Title,
		Description: params.Description,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		CreatedBy:   userID,
		Tasks:       []models.Task{},
		Members: []models.Member{{
			ID:       s.newID(),
			User:     userID,
			Role:     models.RoleLeader,
			JoinedAt: now,
		}},
		Invitations: []models.Invitation{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to insert plan")
		return nil, fmt.Errorf("create plan: %w", err)
	}

	s.activity.Record(ctx, plan.ID, userID, models.ActivityPlanCreated, plan.ID,
		fmt.Sprintf("%s created plan \"%s\"", s.displayName(ctx, userID), plan.Title))

	s.logger.Info().Str("user_id", userID).Str("plan_id", plan.ID).Msg("created plan")
	return plan, nil
}

// Invite adds a pending invitation for email. Only the plan creator may
// invite; everyone else gets ErrPlanNotFound.
//
// It returns ErrDuplicateInvitation while a pending invitation for the same
// address exists and ErrAlreadyMember if the address belongs to a member.
func (s *PlanService) Invite(ctx context.Context, userID, planID, email string) (*models.StudyPlan, error) {
	email = models.NormalizeEmail(email)

	invitee, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to select user by email")
		return nil, fmt.Errorf("get user: %w", err)
	}

	var invitation models.Invitation
	plan, err := s.mutate(ctx, planID, func(plan *models.StudyPlan) error {
		if !policy.Can(userID, policy.ActionInvite, plan) {
			return ErrPlanNotFound
		}
		if invitee != nil && plan.IsMember(invitee.ID) {
			return ErrAlreadyMember
		}
		if plan.HasPendingInvitation(email) {
			return ErrDuplicateInvitation
		}

		invitation = models.Invitation{
			ID:        s.newID(),
			Email:     email,
			Status:    models.InvitationPending,
			InvitedBy: userID,
			InvitedAt: s.now(),
		}
		plan.Invitations = append(plan.Invitations, invitation)
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("plan_id", planID).Str("email", email).Msg("failed to invite")
		return nil, err
	}

	inviter := s.lookupUser(ctx, userID)
	s.activity.Record(ctx, plan.ID, userID, models.ActivityMemberInvited, invitation.ID,
		fmt.Sprintf("%s invited %s", inviter.Name, email))
	s.notifier.NotifyInvitation(ctx, email, inviter, plan)

	s.logger.Info().Str("plan_id", plan.ID).Str("invitation_id", invitation.ID).Msg("invited member")
	return plan, nil
}

// RespondToInvitation accepts or rejects an invitation addressed to the
// caller's e-mail. Accepting adds the caller as a plain member.
//
// It returns ErrInvitationNotFound if the invitation does not exist or is
// addressed to someone else, and ErrInvitationResolved if it was already
// answered.
func (s *PlanService) RespondToInvitation(ctx context.Context, userID, planID, invitationID, status string) (*models.StudyPlan, error) {
	if status != models.InvitationAccepted && status != models.InvitationRejected {
		return nil, ErrInvalidStatus
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to select user by id")
		return nil, fmt.Errorf("get user: %w", err)
	}

	plan, err := s.mutate(ctx, planID, func(plan *models.StudyPlan) error {
		invitation := plan.Invitation(invitationID)
		if !policy.CanRespond(user.Email, invitation) {
			return ErrInvitationNotFound
		}
		if invitation.Status != models.InvitationPending {
			return ErrInvitationResolved
		}

		now := s.now()
		if status == models.InvitationAccepted && !plan.IsMember(user.ID) {
			plan.Members = append(plan.Members, models.Member{
				ID:       s.newID(),
				User:     user.ID,
				Role:     models.RoleMember,
				JoinedAt: now,
			})
		}
		invitation.Status = status
		invitation.RespondedAt = &now
		return nil
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("plan_id", planID).
			Str("invitation_id", invitationID).
			Msg("failed to respond to invitation")
		return nil, err
	}

	if status == models.InvitationAccepted {
		s.activity.Record(ctx, plan.ID, user.ID, models.ActivityInvitationAccepted, invitationID,
			fmt.Sprintf("%s joined \"%s\"", user.Name, plan.Title))
		s.notifier.NotifyInvitationAccepted(ctx, s.lookupUser(ctx, plan.CreatedBy), user, plan)
	} else {
		s.activity.Record(ctx, plan.ID, user.ID, models.ActivityInvitationRejected, invitationID,
			fmt.Sprintf("%s declined the invitation", user.Name))
	}

	s.logger.Info().
		Str("plan_id", plan.ID).
		Str("invitation_id", invitationID).
		Str("status", status).
		Msg("responded to invitation")
	return plan, nil
}

// CreateTask appends a pending task. Only the creator and leaders may add
// tasks.
func (s *PlanService) CreateTask(ctx context.Context, userID, planID string, params CreateTaskParams) (*models.StudyPlan, error) {
	priority := params.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validPriority(priority) {
		return nil, ErrInvalidPriority
	}

	var task models.Task
	plan, err := s.mutate(ctx, planID, func(plan *models.StudyPlan) error {
		if !policy.Can(userID, policy.ActionCreateTask, plan) {
			return ErrPlanNotFound
		}
		task = models.Task{
			ID:          s.newID(),
			Title:       params.Title,
			Description: params.Description,
			DueDate:     params.DueDate,
			Status:      models.TaskPending,
			Priority:    priority,
			CreatedAt:   s.now(),
		}
		plan.Tasks = append(plan.Tasks, task)
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("plan_id", planID).Msg("failed to create task")
		return nil, err
	}

	s.activity.Record(ctx, plan.ID, userID, models.ActivityTaskCreated, task.ID,
		fmt.Sprintf("%s added task \"%s\"", s.displayName(ctx, userID), task.Title))

	s.logger.Info().Str("plan_id", plan.ID).Str("task_id", task.ID).Msg("created task")
	return plan, nil
}

// UpdateTaskStatus marks a task pending or completed. Any member may do so.
func (s *PlanService) UpdateTaskStatus(ctx context.Context, userID, planID, taskID, status string) (*models.StudyPlan, error) {
	if status != models.TaskPending && status != models.TaskCompleted {
		return nil, ErrInvalidStatus
	}

	var title string
	plan, err := s.mutate(ctx, planID, func(plan *models.StudyPlan) error {
		if !policy.Can(userID, policy.ActionUpdateTaskStatus, plan) {
			return ErrPlanNotFound
		}
		task := plan.Task(taskID)
		if task == nil {
			return ErrTaskNotFound
		}
		task.Status = status
		title = task.Title
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("plan_id", planID).Str("task_id", taskID).Msg("failed to update task status")
		return nil, err
	}

	s.activity.Record(ctx, plan.ID, userID, models.ActivityTaskStatusChanged, taskID,
		fmt.Sprintf("%s marked \"%s\" %s", s.displayName(ctx, userID), title, status))

	s.logger.Info().Str("plan_id", plan.ID).Str("task_id", taskID).Str("status", status).Msg("updated task status")
	return plan, nil
}

// AssignTask assigns a task to a current member. The caller must be the
// creator or a leader; otherwise ErrPlanNotFound is returned.
//
// It returns ErrTaskNotFound for an unknown task and ErrNotAMember if
// assigneeID is not a member of the plan.
func (s *PlanService) AssignTask(ctx context.Context, userID, planID, taskID, assigneeID string) (*models.StudyPlan, error) {
	var task models.Task
	plan, err := s.mutate(ctx, planID, func(plan *models.StudyPlan) error {
		if !policy.Can(userID, policy.ActionAssignTask, plan) {
			return ErrPlanNotFound
		}
		t := plan.Task(taskID)
		if t == nil {
			return ErrTaskNotFound
		}
		if !plan.IsMember(assigneeID) {
			return ErrNotAMember
		}
		t.AssignedTo = assigneeID
		task = *t
		return nil
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("plan_id", planID).
			Str("task_id", taskID).
			Str("assignee_id", assigneeID).
			Msg("failed to assign task")
		return nil, err
	}

	assigner := s.lookupUser(ctx, userID)
	assignee := s.lookupUser(ctx, assigneeID)
	s.activity.Record(ctx, plan.ID, userID, models.ActivityTaskAssigned, taskID,
		fmt.Sprintf("%s assigned \"%s\" to %s", assigner.Name, task.Title, assignee.Name))
	s.notifier.NotifyTaskAssigned(ctx, assignee, assigner, plan, &task)

	s.logger.Info().
		Str("plan_id", plan.ID).
		Str("task_id", taskID).
		Str("assignee_id", assigneeID).
		Msg("assigned task")
	return plan, nil
}

// PendingInvitations returns the plans holding a pending invitation for the
// user's e-mail.
func (s *PlanService) PendingInvitations(ctx context.Context, userID string) ([]models.StudyPlan, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to select user by id")
		return nil, fmt.Errorf("get user: %w", err)
	}

	plans, err := s.plans.ListWithPendingInvitation(ctx, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list invited plans")
		return nil, fmt.Errorf("list invited plans: %w", err)
	}
	return plans, nil
}

// mutate loads the plan, applies fn and stores the result. A lost version
// race reloads the plan and applies fn again, so fn must derive everything
// from the plan it is given.
func (s *PlanService) mutate(ctx context.Context, planID string, fn func(plan *models.StudyPlan) error) (*models.StudyPlan, error) {
	for attempt := 1; ; attempt++ {
		plan, err := s.load(ctx, planID)
		if err != nil {
			return nil, err
		}
		if err := fn(plan); err != nil {
			return nil, err
		}
		plan.UpdatedAt = s.now()

		err = s.plans.Update(ctx, plan)
		switch {
		case err == nil:
			return plan, nil
		case errors.Is(err, repository.ErrVersionConflict):
			if attempt >= maxUpdateAttempts {
				s.logger.Error().Str("plan_id", planID).Int("attempts", attempt).Msg("giving up on contended plan")
				return nil, ErrPlanConflict
			}
			s.logger.Debug().Str("plan_id", planID).Int("attempt", attempt).Msg("plan version conflict, retrying")
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrPlanNotFound
		default:
			s.logger.Error().Err(err).Str("plan_id", planID).Msg("failed to update plan")
			return nil, fmt.Errorf("update plan: %w", err)
		}
	}
}

func (s *PlanService) load(ctx context.Context, planID string) (*models.StudyPlan, error) {
	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error().Err(err).Str("plan_id", planID).Msg("failed to select plan")
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return plan, nil
}

// lookupUser returns the user or a placeholder carrying only the id; it is
// used for activity text and notifications, which must not fail a request.
func (s *PlanService) lookupUser(ctx context.Context, userID string) *models.User {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to look up user")
		return &models.User{ID: userID, Name: "Someone"}
	}
	return user
}

func (s *PlanService) displayName(ctx context.Context, userID string) string {
	return s.lookupUser(ctx, userID).Name
}

func validPriority(p string) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	default:
		return false
	}
}
