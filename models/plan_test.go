package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPlanResponseFlattensSubcollections(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	plan := StudyPlan{
		ID:        "plan-1",
		Title:     "Algorithms",
		CreatedBy: "user-a",
		Tasks: []Task{
			{ID: "task-1", Title: "Graphs", Status: TaskPending, Priority: PriorityHigh, CreatedAt: now},
			{ID: "task-2", Title: "Heaps", Status: TaskCompleted, Priority: PriorityLow, AssignedTo: "user-b", CreatedAt: now},
		},
		Members:     []Member{{ID: "m-1", User: "user-a", Role: RoleLeader, JoinedAt: now}},
		Invitations: []Invitation{{ID: "inv-1", Email: "b@x.com", Status: InvitationPending, InvitedBy: "user-a", InvitedAt: now}},
		CreatedAt:   now,
	}

	raw, err := json.Marshal(plan.ToResponse())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded["id"] != "plan-1" || decoded["createdBy"] != "user-a" {
		t.Fatalf("unexpected plan identifiers: %v", decoded)
	}
	tasks := decoded["tasks"].([]any)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if _, ok := tasks[0].(map[string]any)["assignedTo"]; ok {
		t.Fatal("expected assignedTo to be omitted for an unassigned task")
	}
	if got := tasks[1].(map[string]any)["assignedTo"]; got != "user-b" {
		t.Fatalf("expected assignedTo user-b, got %v", got)
	}
	members := decoded["members"].([]any)
	if members[0].(map[string]any)["role"] != RoleLeader {
		t.Fatalf("unexpected member %v", members[0])
	}
	if _, ok := decoded["version"]; ok {
		t.Fatal("version must not be serialized")
	}
}

func TestPlanResponseEmptyCollectionsAreArrays(t *testing.T) {
	plan := StudyPlan{ID: "plan-1"}
	raw, err := json.Marshal(plan.ToResponse())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"tasks", "members", "invitations"} {
		if _, ok := decoded[key].([]any); !ok {
			t.Fatalf("expected %s to be an array, got %v", key, decoded[key])
		}
	}
}

func TestHasPendingInvitationNormalizesEmail(t *testing.T) {
	plan := StudyPlan{Invitations: []Invitation{
		{ID: "1", Email: "b@x.com", Status: InvitationRejected},
		{ID: "2", Email: "c@x.com", Status: InvitationPending},
	}}

	if plan.HasPendingInvitation("b@x.com") {
		t.Fatal("rejected invitation must not count as pending")
	}
	if !plan.HasPendingInvitation("  C@X.com ") {
		t.Fatal("expected pending invitation for c@x.com")
	}
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	plan := &StudyPlan{Members: []Member{{ID: "m-1", User: "a", Role: RoleLeader}}}
	clone := plan.Clone()
	clone.Members[0].Role = RoleMember
	clone.Members = append(clone.Members, Member{ID: "m-2", User: "b"})

	if plan.Members[0].Role != RoleLeader || len(plan.Members) != 1 {
		t.Fatalf("source plan mutated through clone: %+v", plan.Members)
	}
}
