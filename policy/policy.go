// Package policy decides which plan actions a user may perform.
//
// Decisions are derived from the plan as loaded for the current request,
// never from cached membership.
package policy

import "studyplan-backend/models"

// Action is an operation on a study plan.
type Action int

const (
	// ActionView allows reading the plan and its activity.
	ActionView Action = iota + 1
	// ActionInvite allows inviting a new member by e-mail.
	ActionInvite
	// ActionCreateTask allows adding tasks.
	ActionCreateTask
	// ActionAssignTask allows assigning a task to a member.
	ActionAssignTask
	// ActionUpdateTaskStatus allows completing or reopening a task.
	ActionUpdateTaskStatus
)

// Can reports whether userID may perform action on plan.
//
// The creator can do everything. Leaders can manage tasks but not invite;
// invitations stay with the creator. Plain members can view and toggle tasks.
func Can(userID string, action Action, plan *models.StudyPlan) bool {
	if plan == nil || userID == "" {
		return false
	}
	if plan.CreatedBy == userID {
		return true
	}

	member := plan.Member(userID)
	if member == nil {
		return false
	}

	switch action {
	case ActionView, ActionUpdateTaskStatus:
		return true
	case ActionCreateTask, ActionAssignTask:
		return member.Role == models.RoleLeader
	default:
		return false
	}
}

// CanRespond reports whether the invitation belongs to the caller's e-mail.
func CanRespond(email string, invitation *models.Invitation) bool {
	if invitation == nil {
		return false
	}
	email = models.NormalizeEmail(email)
	return email != "" && invitation.Email == email
}
