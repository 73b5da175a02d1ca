package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/utils"
)

type FeedbackService struct {
	db *gorm.DB
	ai *AIService
}

func NewFeedbackService(db *gorm.DB, ai *AIService) *FeedbackService {
	return &FeedbackService{db: db, ai: ai}
}

// WeeklyFeedbackInput is stored verbatim as the week's feedback document.
// The three scores are each on a 1-10 scale and all fields are optional.
type WeeklyFeedbackInput struct {
	MealSatisfaction    *int           `json:"meal_satisfaction,omitempty" binding:"omitempty,min=1,max=10"`
	EnergyLevels        *int           `json:"energy_levels,omitempty" binding:"omitempty,min=1,max=10"`
	PlanAdherence       *int           `json:"plan_adherence,omitempty" binding:"omitempty,min=1,max=10"`
	SymptomImprovements map[string]any `json:"symptom_improvements,omitempty"`
	SpecificFeedback    string         `json:"specific_feedback,omitempty"`
	DifficultMeals      []string       `json:"difficult_meals,omitempty"`
	PreferredMeals      []string       `json:"preferred_meals,omitempty"`
	ChangesMade         []string       `json:"changes_made,omitempty"`
	FoodsTriggering     []string       `json:"foods_triggering,omitempty"`
	FoodsHelpful        []string       `json:"foods_helpful,omitempty"`
}

type FeedbackResult struct {
	Success          bool   `json:"success"`
	Recommendations  string `json:"recommendations,omitempty"`
	ShouldRegenerate bool   `json:"should_regenerate,omitempty"`
	Error            string `json:"error,omitempty"`
}

// SubmitWeeklyFeedback stores the user's feedback on last week's plan first,
// then asks the model for adjustments. The feedback row survives even when
// the model call fails; the caller just gets success=false.
func (s *FeedbackService) SubmitWeeklyFeedback(ctx context.Context, userID uuid.UUID, input *WeeklyFeedbackInput) (*FeedbackResult, error) {
	weekStart := utils.LastWeekStart(time.Now().UTC())

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	var existing models.PlanFeedback
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		First(&existing).Error
	switch err {
	case nil:
		if err := s.db.WithContext(ctx).Model(&existing).Update("feedback", payload).Error; err != nil {
			return nil, err
		}
	case gorm.ErrRecordNotFound:
		row := models.PlanFeedback{UserID: userID, WeekStart: weekStart, Feedback: payload}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	recs, err := s.recommendations(ctx, userID, payload)
	if err != nil {
		s.ai.logger.Warnw("feedback recommendations unavailable", "error", err)
		return &FeedbackResult{Success: false, Error: err.Error()}, nil
	}
	return &FeedbackResult{Success: true, Recommendations: recs, ShouldRegenerate: true}, nil
}

// recommendations asks the model for free-form plan adjustments based on the
// current plan's summary and the submitted feedback. The reply text is
// returned as-is, no parsing.
func (s *FeedbackService) recommendations(ctx context.Context, userID uuid.UUID, feedback []byte) (string, error) {
	summary, _ := json.Marshal(s.currentPlanSummary(ctx, userID))

	prompt := fmt.Sprintf(`Based on the following feedback, update the current meal plan:

CURRENT PLAN SUMMARY:
%s

USER FEEDBACK:
%s

Please provide specific adjustments to make for next week's plan:
1. Which meals to modify or replace
2. Ingredients/foods to avoid or include more
3. Portion adjustments
4. New focus areas based on symptom changes`, summary, feedback)

	messages := []chatMessage{
		{Role: "system", Content: "You are a nutrition expert updating meal plans based on user feedback and symptom changes."},
		{Role: "user", Content: prompt},
	}
	return s.ai.Complete(ctx, messages, 0.6, 800)
}

func (s *FeedbackService) currentPlanSummary(ctx context.Context, userID uuid.UUID) map[string]float64 {
	var row models.DietPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week_start DESC").
		First(&row).Error
	if err != nil {
		return nil
	}
	var plan WeekPlan
	if err := json.Unmarshal(row.Plan, &plan); err != nil {
		return nil
	}
	return plan.Summary
}

// LatestFeedback returns the newest stored feedback for the user.
func (s *FeedbackService) LatestFeedback(ctx context.Context, userID uuid.UUID) (*models.PlanFeedback, error) {
	var fb models.PlanFeedback
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week_start DESC").
		First(&fb).Error
	if err != nil {
		return nil, err
	}
	return &fb, nil
}
