package services

import (
	"strings"
	"testing"
	"time"
)

func TestParseMealAnalysisHandlesFencedJSON(t *testing.T) {
	reply := "```json\n{\"description\":\"Grilled chicken salad\",\"calories\":450,\"protein\":35,\"carbs\":25,\"fat\":20,\"ingredients\":[\"chicken\",\"lettuce\"],\"meal_type\":\"lunch\",\"confidence\":0.85}\n```"
	analysis, err := parseMealAnalysis(reply)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if analysis.Description != "Grilled chicken salad" {
		t.Fatalf("description = %q", analysis.Description)
	}
	if analysis.Calories != 450 || analysis.Protein != 35 {
		t.Fatalf("macros = %+v", analysis)
	}
	if len(analysis.Ingredients) != 2 {
		t.Fatalf("ingredients = %v", analysis.Ingredients)
	}
}

func TestParseMealAnalysisRejectsProse(t *testing.T) {
	if _, err := parseMealAnalysis("Sorry, I cannot identify this meal."); err == nil {
		t.Fatalf("expected error for reply without json")
	}
}

func TestPlanSystemPromptAddenda(t *testing.T) {
	base := PlanSystemPrompt("")
	if !strings.Contains(base, "7-day meal plan") {
		t.Fatalf("base prompt missing core instruction")
	}

	digestion := PlanSystemPrompt("digestion")
	if !strings.Contains(digestion, "low-FODMAP") {
		t.Fatalf("digestion addendum missing")
	}
	if len(digestion) <= len(base) {
		t.Fatalf("addendum did not extend the prompt")
	}

	// unknown domains fall back to the base prompt
	if PlanSystemPrompt("unknown") != base {
		t.Fatalf("unknown domain should not change the prompt")
	}
}

func TestSchedulerNextRun(t *testing.T) {
	s := &WeeklySummaryScheduler{hour: 2}

	// before the hour: today at 02:00
	now := time.Date(2026, 9, 1, 1, 0, 0, 0, time.UTC)
	if got := s.nextRun(now); !got.Equal(time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)) {
		t.Fatalf("nextRun before hour = %v", got)
	}

	// after the hour: tomorrow at 02:00
	now = time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	if got := s.nextRun(now); !got.Equal(time.Date(2026, 9, 2, 2, 0, 0, 0, time.UTC)) {
		t.Fatalf("nextRun after hour = %v", got)
	}
}
