package models

import "time"

const (
	RoleLeader = "leader"
	RoleMember = "member"
)

const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRejected = "rejected"
)

// StudyPlan is stored as a single document owning its tasks, members and
// invitations.
type StudyPlan struct {
	ID          string       `bson:"_id"`
	Title       string       `bson:"title"`
	Description string       `bson:"description"`
	StartDate   time.Time    `bson:"startDate"`
	EndDate     time.Time    `bson:"endDate"`
	CreatedBy   string       `bson:"createdBy"`
	Tasks       []Task       `bson:"tasks"`
	Members     []Member     `bson:"members"`
	Invitations []Invitation `bson:"invitations"`
	Version     int64        `bson:"version"`
	CreatedAt   time.Time    `bson:"createdAt"`
	UpdatedAt   time.Time    `bson:"updatedAt"`
}

type Task struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	DueDate     time.Time `bson:"dueDate"`
	Status      string    `bson:"status"`
	Priority    string    `bson:"priority"`
	AssignedTo  string    `bson:"assignedTo,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
}

type Member struct {
	ID       string    `bson:"_id"`
	User     string    `bson:"user"`
	Role     string    `bson:"role"`
	JoinedAt time.Time `bson:"joinedAt"`
}

type Invitation struct {
	ID          string     `bson:"_id"`
	Email       string     `bson:"email"`
	Status      string     `bson:"status"`
	InvitedBy   string     `bson:"invitedBy"`
	InvitedAt   time.Time  `bson:"invitedAt"`
	RespondedAt *time.Time `bson:"respondedAt,omitempty"`
}

func (p *StudyPlan) Task(id string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

func (p *StudyPlan) Invitation(id string) *Invitation {
	for i := range p.Invitations {
		if p.Invitations[i].ID == id {
			return &p.Invitations[i]
		}
	}
	return nil
}

// Member returns the membership of userID, or nil.
func (p *StudyPlan) Member(userID string) *Member {
	for i := range p.Members {
		if p.Members[i].User == userID {
			return &p.Members[i]
		}
	}
	return nil
}

func (p *StudyPlan) IsMember(userID string) bool {
	return p.Member(userID) != nil
}

func (p *StudyPlan) HasPendingInvitation(email string) bool {
	email = NormalizeEmail(email)
	for _, inv := range p.Invitations {
		if inv.Status == InvitationPending && inv.Email == email {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so that in-process stores never share slices with
// callers.
func (p *StudyPlan) Clone() *StudyPlan {
	c := *p
	c.Tasks = append([]Task(nil), p.Tasks...)
	c.Members = append([]Member(nil), p.Members...)
	c.Invitations = make([]Invitation, len(p.Invitations))
	for i, inv := range p.Invitations {
		if inv.RespondedAt != nil {
			at := *inv.RespondedAt
			inv.RespondedAt = &at
		}
		c.Invitations[i] = inv
	}
	return &c
}
