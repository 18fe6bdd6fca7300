package models

import "time"

// Response structs
type PlanResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	StartDate   time.Time            `json:"startDate"`
	EndDate     time.Time            `json:"endDate"`
	Tasks       []TaskResponse       `json:"tasks"`
	Members     []MemberResponse     `json:"members"`
	Invitations []InvitationResponse `json:"invitations"`
	CreatedBy   string               `json:"createdBy"`
	CreatedAt   time.Time            `json:"createdAt"`
}

type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	AssignedTo  string    `json:"assignedTo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type MemberResponse struct {
	ID       string    `json:"id"`
	User     string    `json:"user"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type InvitationResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	InvitedBy string    `json:"invitedBy"`
	InvitedAt time.Time `json:"invitedAt"`
}

func (p *StudyPlan) ToResponse() PlanResponse {
	resp := PlanResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Tasks:       make([]TaskResponse, 0, len(p.Tasks)),
		Members:     make([]MemberResponse, 0, len(p.Members)),
		Invitations: make([]InvitationResponse, 0, len(p.Invitations)),
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
	for _, t := range p.Tasks {
		resp.Tasks = append(resp.Tasks, TaskResponse{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			DueDate:     t.DueDate,
			Status:      t.Status,
			Priority:    t.Priority,
			AssignedTo:  t.AssignedTo,
			CreatedAt:   t.CreatedAt,
		})
	}
	for _, m := range p.Members {
		resp.Members = append(resp.Members, MemberResponse{
			ID:       m.ID,
			User:     m.User,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	for _, inv := range p.Invitations {
		resp.Invitations = append(resp.Invitations, InvitationResponse{
			ID:        inv.ID,
			Email:     inv.Email,
			Status:    inv.Status,
			InvitedBy: inv.InvitedBy,
			InvitedAt: inv.InvitedAt,
		})
	}
	return resp
}

// ToPlanResponses converts a list of plans, returning an empty slice rather
// than nil.
func ToPlanResponses(plans []StudyPlan) []PlanResponse {
	out := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		out = append(out, plans[i].ToResponse())
	}
	return out
}
