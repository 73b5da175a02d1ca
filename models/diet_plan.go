package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DietPlan holds one generated week per user. The plan JSON is a document
// ("days" keyed by ISO date, each carrying "day_name", meal slots and
// "daily_totals"); it is not normalized further.
type DietPlan struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;uniqueIndex:ix_diet_plans_user_week;not null" json:"user_id"`
	WeekStart time.Time      `gorm:"type:date;uniqueIndex:ix_diet_plans_user_week;not null" json:"week_start"`
	Plan      datatypes.JSON `gorm:"not null" json:"plan"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type WeeklySummary struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;uniqueIndex:ix_weekly_summaries_user_week;not null" json:"user_id"`
	WeekStart time.Time      `gorm:"type:date;uniqueIndex:ix_weekly_summaries_user_week;not null" json:"week_start"`
	Summary   datatypes.JSON `gorm:"not null" json:"summary"`
	CreatedAt time.Time      `json:"created_at"`
}

type PlanFeedback struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;uniqueIndex:ix_plan_feedbacks_user_week;not null" json:"user_id"`
	WeekStart time.Time      `gorm:"type:date;uniqueIndex:ix_plan_feedbacks_user_week;not null" json:"week_start"`
	Feedback  datatypes.JSON `gorm:"not null" json:"feedback"`
	CreatedAt time.Time      `json:"created_at"`
}
