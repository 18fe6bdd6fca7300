package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActivityPlanCreated        = "plan_created"
	ActivityMemberInvited      = "member_invited"
	ActivityInvitationAccepted = "invitation_accepted"
	ActivityInvitationRejected = "invitation_rejected"
	ActivityTaskCreated        = "task_created"
	ActivityTaskStatusChanged  = "task_status_changed"
	ActivityTaskAssigned       = "task_assigned"
)

type Activity struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID      string    `gorm:"size:64;index" json:"planId"`
	PlanTitle   string    `gorm:"-" json:"planTitle,omitempty"`
	UserID      string    `gorm:"size:64" json:"userId"`
	Type        string    `gorm:"not null;size:30" json:"type"`
	ReferenceID string    `gorm:"size:64" json:"referenceId,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
