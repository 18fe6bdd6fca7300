package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studyplan-backend/models"
)

// Relational layout of a study plan: the plan row owns its task, member and
// invitation rows, which are replaced as a whole on every update so that the
// plan keeps document semantics.
type planRow struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"not null;size:255"`
	Description string    `gorm:"type:text"`
	StartDate   time.Time
	EndDate     time.Time
	CreatedBy   string `gorm:"size:64;index"`
	Version     int64  `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Tasks       []planTaskRow       `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	Members     []planMemberRow     `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	Invitations []planInvitationRow `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

func (planRow) TableName() string { return "plans" }

type planTaskRow struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	PlanID      string `gorm:"type:uuid;index"`
	Position    int
	Title       string `gorm:"not null;size:255"`
	Description string `gorm:"type:text"`
	DueDate     time.Time
	Status      string `gorm:"size:20"`
	Priority    string `gorm:"size:20"`
	AssignedTo  string `gorm:"size:64"`
	CreatedAt   time.Time
}

func (planTaskRow) TableName() string { return "plan_tasks" }

type planMemberRow struct {
	ID       string `gorm:"type:uuid;primaryKey"`
	PlanID   string `gorm:"type:uuid;index"`
	Position int
	UserID   string `gorm:"size:64;index"`
	Role     string `gorm:"size:20"`
	JoinedAt time.Time
}

func (planMemberRow) TableName() string { return "plan_members" }

type planInvitationRow struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	PlanID      string `gorm:"type:uuid;index"`
	Position    int
	Email       string `gorm:"size:255;index:idx_plan_invitations_email_status"`
	Status      string `gorm:"size:20;index:idx_plan_invitations_email_status"`
	InvitedBy   string `gorm:"size:64"`
	InvitedAt   time.Time
	RespondedAt *time.Time
}

func (planInvitationRow) TableName() string { return "plan_invitations" }

// GormPlanModels lists the tables needed by GormPlanRepository for migration.
func GormPlanModels() []any {
	return []any{&planRow{}, &planTaskRow{}, &planMemberRow{}, &planInvitationRow{}}
}

type GormPlanRepository struct {
	db *gorm.DB
}

func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

func (r *GormPlanRepository) Create(ctx context.Context, plan *models.StudyPlan) error {
	row := toPlanRow(plan)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
		return createChildren(tx, &row)
	})
	return translate(err)
}

func (r *GormPlanRepository) Get(ctx context.Context, id string) (*models.StudyPlan, error) {
	if !validPlanID(id) {
		return nil, ErrNotFound
	}

	var row planRow
	err := preloadChildren(r.db.WithContext(ctx)).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	return fromPlanRow(&row), nil
}

func (r *GormPlanRepository) Update(ctx context.Context, plan *models.StudyPlan) error {
	if !validPlanID(plan.ID) {
		return ErrNotFound
	}

	row := toPlanRow(plan)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&planRow{}).
			Where("id = ? AND version = ?", row.ID, row.Version).
			Updates(map[string]any{
				"title":       row.Title,
				"description": row.Description,
				"start_date":  row.StartDate,
				"end_date":    row.EndDate,
				"version":     row.Version + 1,
				"updated_at":  row.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&planRow{}).Where("id = ?", row.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrVersionConflict
		}

		for _, model := range []any{&planTaskRow{}, &planMemberRow{}, &planInvitationRow{}} {
			if err := tx.Where("plan_id = ?", row.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return createChildren(tx, &row)
	})
	if err != nil {
		return translate(err)
	}
	plan.Version++
	return nil
}

func (r *GormPlanRepository) ListForUser(ctx context.Context, userID string) ([]models.StudyPlan, error) {
	db := r.db.WithContext(ctx)
	memberOf := db.Model(&planMemberRow{}).Select("plan_id").Where("user_id = ?", userID)
	return r.list(preloadChildren(db).Where("created_by = ? OR id IN (?)", userID, memberOf))
}

func (r *GormPlanRepository) ListWithPendingInvitation(ctx context.Context, email string) ([]models.StudyPlan, error) {
	db := r.db.WithContext(ctx)
	invited := db.Model(&planInvitationRow{}).Select("plan_id").
		Where("email = ? AND status = ?", email, models.InvitationPending)
	return r.list(preloadChildren(db).Where("id IN (?)", invited))
}

func (r *GormPlanRepository) list(query *gorm.DB) ([]models.StudyPlan, error) {
	var rows []planRow
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	plans := make([]models.StudyPlan, 0, len(rows))
	for i := range rows {
		plans = append(plans, *fromPlanRow(&rows[i]))
	}
	return plans, nil
}

// validPlanID reports whether id fits the uuid column; anything else cannot
// name a stored plan and would make postgres reject the query.
func validPlanID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func preloadChildren(db *gorm.DB) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }
	return db.
		Preload("Tasks", byPosition).
		Preload("Members", byPosition).
		Preload("Invitations", byPosition)
}

func createChildren(tx *gorm.DB, row *planRow) error {
	if len(row.Tasks) > 0 {
		if err := tx.Create(&row.Tasks).Error; err != nil {
			return err
		}
	}
	if len(row.Members) > 0 {
		if err := tx.Create(&row.Members).Error; err != nil {
			return err
		}
	}
	if len(row.Invitations) > 0 {
		if err := tx.Create(&row.Invitations).Error; err != nil {
			return err
		}
	}
	return nil
}

func toPlanRow(p *models.StudyPlan) planRow {
	row := planRow{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedBy:   p.CreatedBy,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i, t := range p.Tasks {
		row.Tasks = append(row.Tasks, planTaskRow{
			ID:          t.ID,
			PlanID:      p.ID,
			Position:    i,
			Title:       t.Title,
			Description: t.Description,
			DueDate:     t.DueDate,
			Status:      t.Status,
			Priority:    t.Priority,
			AssignedTo:  t.AssignedTo,
			CreatedAt:   t.CreatedAt,
		})
	}
	for i, m := range p.Members {
		row.Members = append(row.Members, planMemberRow{
			ID:       m.ID,
			PlanID:   p.ID,
			Position: i,
			UserID:   m.User,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	for i, inv := range p.Invitations {
		row.Invitations = append(row.Invitations, planInvitationRow{
			ID:          inv.ID,
			PlanID:      p.ID,
			Position:    i,
			Email:       inv.Email,
			Status:      inv.Status,
			InvitedBy:   inv.InvitedBy,
			InvitedAt:   inv.InvitedAt,
			RespondedAt: inv.RespondedAt,
		})
	}
	return row
}

func fromPlanRow(row *planRow) *models.StudyPlan {
	plan := &models.StudyPlan{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
		CreatedBy:   row.CreatedBy,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Tasks:       make([]models.Task, 0, len(row.Tasks)),
		Members:     make([]models.Member, 0, len(row.Members)),
		Invitations: make([]models.Invitation, 0, len(row.Invitations)),
	}
	for _, t := range row.Tasks {
		plan.Tasks = append(plan.Tasks, models.Task{
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
	for _, m := range row.Members {
		plan.Members = append(plan.Members, models.Member{
			ID:       m.ID,
			User:     m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	for _, inv := range row.Invitations {
		plan.Invitations = append(plan.Invitations, models.Invitation{
			ID:          inv.ID,
			Email:       inv.Email,
			Status:      inv.Status,
			InvitedBy:   inv.InvitedBy,
			InvitedAt:   inv.InvitedAt,
			RespondedAt: inv.RespondedAt,
		})
	}
	return plan
}
