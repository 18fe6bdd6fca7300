package client

import (
	"context"
	"sync"

	"studyplan-backend/models"
)

// Dashboard caches what the plan list and plan detail views render. Every
// mutation goes to the server and is followed by a refetch; the cache is
// never patched locally.
type Dashboard struct {
	session *Session

	mu          sync.RWMutex
	plans       []models.PlanResponse
	invitations []models.PlanResponse
}

func NewDashboard(session *Session) *Dashboard {
	return &Dashboard{session: session}
}

// Refresh reloads the plan list and the pending invitations.
func (d *Dashboard) Refresh(ctx context.Context) error {
	token, err := d.session.Token()
	if err != nil {
		return err
	}

	plans, err := d.session.client.ListPlans(ctx, token)
	if err != nil {
		return err
	}
	invitations, err := d.session.client.PendingInvitations(ctx, token)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.plans = plans
	d.invitations = invitations
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) Plans() []models.PlanResponse {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.PlanResponse(nil), d.plans...)
}

func (d *Dashboard) Invitations() []models.PlanResponse {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.PlanResponse(nil), d.invitations...)
}

// Plan returns the cached plan with id, or nil.
func (d *Dashboard) Plan(id string) *models.PlanResponse {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.plans {
		if d.plans[i].ID == id {
			p := d.plans[i]
			return &p
		}
	}
	return nil
}

// Clear drops the cache, e.g. after logout.
func (d *Dashboard) Clear() {
	d.mu.Lock()
	d.plans = nil
	d.invitations = nil
	d.mu.Unlock()
}

func (d *Dashboard) CreatePlan(ctx context.Context, in CreatePlanInput) error {
	return d.mutate(ctx, func(c *Client, token string) error {
		_, err := c.CreatePlan(ctx, token, in)
		return err
	})
}

func (d *Dashboard) Invite(ctx context.Context, planID, email string) error {
	return d.mutate(ctx, func(c *Client, token string) error {
		_, err := c.Invite(ctx, token, planID, email)
		return err
	})
}

func (d *Dashboard) RespondToInvitation(ctx context.Context, planID, invitationID, status string) error {
	return d.mutate(ctx, func(c *Client, token string) error {
		_, err := c.RespondToInvitation(ctx, token, planID, invitationID, status)
		return err
	})
}

func (d *Dashboard) CreateTask(ctx context.Context, planID string, in CreateTaskInput) error {
	return d.mutate(ctx, func(c *Client, token string) error {
		_, err := c.CreateTask(ctx, token, planID, in)
		return err
	})
}

func (d *Dashboard) UpdateTaskStatus(ctx context.Context, planID, taskID, status string) error {
	return d.mutate(ctx, func(c *Client, token string) error {
		_, err := c.UpdateTaskStatus(ctx, token, planID, taskID, status)
		return err
	})
}

func (d *Dashboard) AssignTask(ctx context.Context, planID, taskID, userID string) error {
	return d.mutate(ctx, func(c *Client, token string) error {
		_, err := c.AssignTask(ctx, token, planID, taskID, userID)
		return err
	})
}

func (d *Dashboard) mutate(ctx context.Context, fn func(c *Client, token string) error) error {
	token, err := d.session.Token()
	if err != nil {
		return err
	}
	if err := fn(d.session.client, token); err != nil {
		return err
	}
	return d.Refresh(ctx)
}
