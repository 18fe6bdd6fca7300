package services

import "errors"

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrUserNotFound        = errors.New("user not found")
	ErrPlanNotFound        = errors.New("plan not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrDuplicateInvitation = errors.New("user already invited")
	ErrAlreadyMember       = errors.New("user is already a member of this plan")
	ErrInvitationResolved  = errors.New("invitation already answered")
	ErrNotAMember          = errors.New("user is not a member of this plan")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInvalidDateRange    = errors.New("end date is before start date")
	ErrPlanConflict        = errors.New("plan was modified concurrently")
)
