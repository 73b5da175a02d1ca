package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Meal is one logged eating event with its nutrition snapshot.
type Meal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index:ix_meals_user_logged;not null" json:"user_id"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`

	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"` // g
	Carbs    float64 `json:"carbs"`   // g
	Fat      float64 `json:"fat"`     // g
	Fiber    float64 `json:"fiber"`   // g
	Water    float64 `json:"water"`   // g

	// Micronutrients, mg unless noted
	Sodium     float64 `json:"sodium"`
	Potassium  float64 `json:"potassium"`
	Calcium    float64 `json:"calcium"`
	Magnesium  float64 `json:"magnesium"`
	Iron       float64 `json:"iron"`
	Zinc       float64 `json:"zinc"`
	VitaminC   float64 `json:"vitamin_c"`
	VitaminD   float64 `json:"vitamin_d"`   // mcg
	VitaminB12 float64 `json:"vitamin_b12"` // mcg
	Folate     float64 `json:"folate"`      // mcg

	MealType          string         `gorm:"size:16" json:"meal_type"` // breakfast|lunch|dinner|snack
	PreparationMethod string         `gorm:"size:32" json:"preparation_method"`
	Ingredients       datatypes.JSON `json:"ingredients"`  // ["rice", "chicken", ...]
	DietaryTags       datatypes.JSON `json:"dietary_tags"` // ["vegan", "gluten-free", ...]

	LoggedAt  time.Time `gorm:"index:ix_meals_user_logged;not null" json:"logged_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
