package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/utils"
)

func intPtr(v int) *int { return &v }

// With no API key configured the model call fails, which must still leave
// the feedback row behind.
func TestSubmitFeedbackPersistsBeforeModelCall(t *testing.T) {
	db := testDB(t)
	svc := NewFeedbackService(db, NewAIService("", "", testLogger()))
	ctx := context.Background()
	userID := uuid.New()

	input := &WeeklyFeedbackInput{
		MealSatisfaction: intPtr(4),
		PlanAdherence:    intPtr(7),
		SpecificFeedback: "too much fish",
	}
	result, err := svc.SubmitWeeklyFeedback(ctx, userID, input)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Success {
		t.Fatalf("expected success=false without a model")
	}
	if result.Error == "" {
		t.Fatalf("expected an error string in the result")
	}

	fb, err := svc.LatestFeedback(ctx, userID)
	if err != nil {
		t.Fatalf("latest feedback: %v", err)
	}
	var stored WeeklyFeedbackInput
	if err := json.Unmarshal(fb.Feedback, &stored); err != nil {
		t.Fatalf("stored feedback unreadable: %v", err)
	}
	if stored.MealSatisfaction == nil || *stored.MealSatisfaction != 4 || stored.SpecificFeedback != "too much fish" {
		t.Fatalf("stored feedback = %+v", stored)
	}
}

func TestSubmitFeedbackTwiceSameWeekUpdates(t *testing.T) {
	db := testDB(t)
	svc := NewFeedbackService(db, NewAIService("", "", testLogger()))
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.SubmitWeeklyFeedback(ctx, userID, &WeeklyFeedbackInput{MealSatisfaction: intPtr(2)}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := svc.SubmitWeeklyFeedback(ctx, userID, &WeeklyFeedbackInput{MealSatisfaction: intPtr(5)}); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	var count int64
	if err := db.Model(&models.PlanFeedback{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d feedback rows, want 1", count)
	}

	fb, err := svc.LatestFeedback(ctx, userID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	var stored WeeklyFeedbackInput
	if err := json.Unmarshal(fb.Feedback, &stored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stored.MealSatisfaction == nil || *stored.MealSatisfaction != 5 {
		t.Fatalf("satisfaction = %v, want 5 after update", stored.MealSatisfaction)
	}
}

// The three scores run on a 1-10 scale, so an 8 must pass validation and a
// payload carrying only one score is fine.
func TestFeedbackInputAcceptsTenPointScores(t *testing.T) {
	input := WeeklyFeedbackInput{MealSatisfaction: intPtr(8)}
	if err := binding.Validator.ValidateStruct(&input); err != nil {
		t.Fatalf("satisfaction 8 rejected: %v", err)
	}
	input = WeeklyFeedbackInput{EnergyLevels: intPtr(10), PlanAdherence: intPtr(1)}
	if err := binding.Validator.ValidateStruct(&input); err != nil {
		t.Fatalf("boundary scores rejected: %v", err)
	}
	input = WeeklyFeedbackInput{MealSatisfaction: intPtr(11)}
	if err := binding.Validator.ValidateStruct(&input); err == nil {
		t.Fatalf("satisfaction 11 accepted")
	}
}

// The recommendations reply is free-form text passed through untouched, and
// the prompt must carry the current plan's summary alongside the feedback.
func TestSubmitFeedbackReturnsModelTextVerbatim(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	userID := uuid.New()

	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err == nil && len(req.Messages) > 1 {
			gotPrompt = req.Messages[1].Content
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Swap the salmon for chicken twice a week."}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	ai := NewAIService("test-key", "", testLogger())
	ai.baseURL = server.URL
	svc := NewFeedbackService(db, ai)

	plans := NewDietPlanService(db, NewMealService(db), NewSymptomService(db, utils.NewCipher("k")), ai)
	weekStart := utils.NextMonday(time.Now().UTC())
	if err := plans.upsertPlan(ctx, userID, weekStart, fallbackPlan(weekStart)); err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	result, err := svc.SubmitWeeklyFeedback(ctx, userID, &WeeklyFeedbackInput{
		MealSatisfaction: intPtr(8),
		FoodsTriggering:  []string{"dairy"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}
	if result.Recommendations != "Swap the salmon for chicken twice a week." {
		t.Fatalf("recommendations = %q, want the model text as-is", result.Recommendations)
	}
	if !strings.Contains(gotPrompt, "CURRENT PLAN SUMMARY") || !strings.Contains(gotPrompt, "1470") {
		t.Fatalf("prompt missing plan summary: %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "dairy") {
		t.Fatalf("prompt missing feedback: %q", gotPrompt)
	}
}
