package policy

import (
	"testing"

	"studyplan-backend/models"
)

func testPlan() *models.StudyPlan {
	return &models.StudyPlan{
		ID:        "plan-1",
		CreatedBy: "creator",
		Members: []models.Member{
			{ID: "m-1", User: "creator", Role: models.RoleLeader},
			{ID: "m-2", User: "leader", Role: models.RoleLeader},
			{ID: "m-3", User: "member", Role: models.RoleMember},
		},
	}
}

func TestCan(t *testing.T) {
	plan := testPlan()

	tests := []struct {
		name   string
		user   string
		action Action
		want   bool
	}{
		{"creator invites", "creator", ActionInvite, true},
		{"leader cannot invite", "leader", ActionInvite, false},
		{"member cannot invite", "member", ActionInvite, false},
		{"creator assigns", "creator", ActionAssignTask, true},
		{"leader assigns", "leader", ActionAssignTask, true},
		{"member cannot assign", "member", ActionAssignTask, false},
		{"leader creates task", "leader", ActionCreateTask, true},
		{"member cannot create task", "member", ActionCreateTask, false},
		{"member views", "member", ActionView, true},
		{"member toggles task", "member", ActionUpdateTaskStatus, true},
		{"outsider views", "outsider", ActionView, false},
		{"outsider assigns", "outsider", ActionAssignTask, false},
		{"empty user", "", ActionView, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Can(tt.user, tt.action, plan); got != tt.want {
				t.Fatalf("Can(%q, %v) = %v, want %v", tt.user, tt.action, got, tt.want)
			}
		})
	}
}

func TestCanCreatorWithoutMembership(t *testing.T) {
	plan := &models.StudyPlan{CreatedBy: "creator"}
	if !Can("creator", ActionInvite, plan) {
		t.Fatal("creator must be allowed even without a member entry")
	}
}

func TestCanNilPlan(t *testing.T) {
	if Can("creator", ActionView, nil) {
		t.Fatal("expected nil plan to deny")
	}
}

func TestCanRespond(t *testing.T) {
	inv := &models.Invitation{ID: "inv-1", Email: "b@x.com", Status: models.InvitationPending}

	if !CanRespond("B@x.com", inv) {
		t.Fatal("expected matching e-mail to be allowed")
	}
	if CanRespond("c@x.com", inv) {
		t.Fatal("expected other e-mail to be denied")
	}
	if CanRespond("", inv) {
		t.Fatal("expected empty e-mail to be denied")
	}
	if CanRespond("b@x.com", nil) {
		t.Fatal("expected missing invitation to be denied")
	}
}
