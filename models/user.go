package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleFree    UserRole = "free"
	RolePremium UserRole = "premium"
	RoleTrial   UserRole = "trial"
)

type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityMedium ActivityLevel = "medium"
	ActivityHigh   ActivityLevel = "high"
)

type GoalType string

const (
	GoalWeightLoss GoalType = "weight_loss"
	GoalMuscleGain GoalType = "muscle_gain"
	GoalMaintain   GoalType = "maintain"
)

func ValidActivityLevel(v string) bool {
	switch ActivityLevel(v) {
	case ActivityLow, ActivityMedium, ActivityHigh:
		return true
	}
	return false
}

func ValidGoalType(v string) bool {
	switch GoalType(v) {
	case GoalWeightLoss, GoalMuscleGain, GoalMaintain:
		return true
	}
	return false
}

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	Role             UserRole  `gorm:"size:16;not null;default:'free'" json:"role"`
	StripeCustomerID string    `gorm:"size:64;index" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Profile is one-to-one with User. Calorie/macro goals are stored as a
// snapshot of the last calculation; the authoritative values are recomputed
// from the demographic fields on demand.
type Profile struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	Age           int           `gorm:"not null" json:"age"`
	Gender        string        `gorm:"size:16" json:"gender"` // male|female|not_specified
	Height        float64       `gorm:"not null" json:"height"` // cm
	InitialWeight float64       `json:"initial_weight"`         // kg
	Weight        float64       `gorm:"not null" json:"weight"` // kg, current
	TargetWeight  float64       `json:"target_weight"`
	ActivityLevel ActivityLevel `gorm:"size:16;not null" json:"activity_level"`
	Goal          GoalType      `gorm:"size:16;not null" json:"goal"`
	TimeframeDays int           `json:"timeframe_days"`

	CalorieGoal float64 `json:"calorie_goal"`
	ProteinGoal float64 `json:"protein_goal"`
	CarbsGoal   float64 `json:"carbs_goal"`
	FatGoal     float64 `json:"fat_goal"`

	BreakfastTime   string         `gorm:"size:8" json:"breakfast_time"` // "08:00"
	LunchTime       string         `gorm:"size:8" json:"lunch_time"`
	DinnerTime      string         `gorm:"size:8" json:"dinner_time"`
	DietPreferences datatypes.JSON `json:"diet_preferences"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Subscription struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Plan      string     `gorm:"not null" json:"plan"`
	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Active    bool       `gorm:"not null;default:true" json:"active"`
}

type WeightLog struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Weight   float64   `gorm:"not null" json:"weight"` // kg
	Note     string    `json:"note"`
	LoggedAt time.Time `gorm:"index;not null" json:"logged_at"`
}
