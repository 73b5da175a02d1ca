package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/utils"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{"```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{`Here is your plan: {"monday":{}} enjoy!`, `{"monday":{}}`, true},
		{"no braces here", "", false},
		{"}{", "", false},
	}
	for _, c := range cases {
		got, ok := extractJSON(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("extractJSON(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestStructurePlanRecomputesTotals(t *testing.T) {
	weekStart := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC) // a Monday
	days := map[string]PlanDay{
		"monday": {
			Breakfast: &PlannedMeal{Name: "Eggs", Calories: 300, Protein: 20, Carbs: 10, Fat: 18},
			Lunch:     &PlannedMeal{Name: "Salad", Calories: 400, Protein: 30, Carbs: 20, Fat: 15},
			Snacks:    []PlannedMeal{{Name: "Apple", Calories: 90, Protein: 0, Carbs: 23, Fat: 0}},
			// deliberately wrong totals from the model
			DailyTotals: PlanTotals{Calories: 9999},
		},
		"someday": {Breakfast: &PlannedMeal{Name: "bogus"}},
	}

	plan := structurePlan(days, weekStart)
	if plan.WeekStart != "2026-09-07" {
		t.Fatalf("week start = %s", plan.WeekStart)
	}
	if plan.WeekEnd != "2026-09-13" {
		t.Fatalf("week end = %s", plan.WeekEnd)
	}
	if _, ok := plan.Days["someday"]; ok {
		t.Fatalf("unknown day name survived structuring")
	}
	monday := plan.Days["2026-09-07"]
	if monday.DayName != "Monday" || monday.Date != "2026-09-07" {
		t.Fatalf("monday labels = %q %q", monday.DayName, monday.Date)
	}
	if monday.DailyTotals.Calories != 790 {
		t.Fatalf("monday calories = %v, want 790", monday.DailyTotals.Calories)
	}
	if monday.DailyTotals.Protein != 50 {
		t.Fatalf("monday protein = %v, want 50", monday.DailyTotals.Protein)
	}
}

// Days the model leaves out still appear as empty dated entries, and they do
// not dilute the summary averages.
func TestStructurePlanEmitsAllSevenDays(t *testing.T) {
	weekStart := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	days := map[string]PlanDay{
		"monday": {Breakfast: &PlannedMeal{Name: "Eggs", Calories: 400, Protein: 30}},
	}

	plan := structurePlan(days, weekStart)
	if len(plan.Days) != 7 {
		t.Fatalf("got %d days, want 7", len(plan.Days))
	}
	friday := plan.Days["2026-09-11"]
	if friday.DayName != "Friday" || friday.Breakfast != nil {
		t.Fatalf("friday = %+v, want empty dated entry", friday)
	}
	if plan.Summary["total_daily_calories"] != 400 {
		t.Fatalf("summary averaged over empty days: %v", plan.Summary["total_daily_calories"])
	}
}

func TestFallbackPlanShape(t *testing.T) {
	weekStart := utils.NextMonday(time.Now().UTC())
	plan := fallbackPlan(weekStart)

	if len(plan.Days) != 7 {
		t.Fatalf("fallback has %d days, want 7", len(plan.Days))
	}
	if plan.Summary["total_daily_calories"] != 1470 {
		t.Fatalf("total_daily_calories = %v, want 1470", plan.Summary["total_daily_calories"])
	}
	if plan.Summary["daily_protein"] != 100 {
		t.Fatalf("daily_protein = %v, want 100", plan.Summary["daily_protein"])
	}
	wednesday := weekStart.AddDate(0, 0, 2).Format("2006-01-02")
	day := plan.Days[wednesday]
	if day.DayName != "Wednesday" || day.Date != wednesday {
		t.Fatalf("fallback day labels = %q %q", day.DayName, day.Date)
	}
	if day.Breakfast == nil || day.Breakfast.Name != "Balanced Breakfast" {
		t.Fatalf("fallback breakfast = %+v", day.Breakfast)
	}
	if day.DailyTotals.Calories != 350+450+550+120 {
		t.Fatalf("fallback daily calories = %v", day.DailyTotals.Calories)
	}
}

func TestUpsertPlanKeepsOneRowPerWeek(t *testing.T) {
	db := testDB(t)
	svc := NewDietPlanService(db, NewMealService(db), nil, nil)
	ctx := context.Background()
	userID := uuid.New()
	weekStart := utils.NextMonday(time.Now().UTC())

	first := fallbackPlan(weekStart)
	if err := svc.upsertPlan(ctx, userID, weekStart, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second := fallbackPlan(weekStart)
	second.Summary["total_daily_calories"] = 1800
	if err := svc.upsertPlan(ctx, userID, weekStart, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := db.Model(&models.DietPlan{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d plan rows, want 1", count)
	}

	stored, err := svc.CurrentPlan(ctx, userID)
	if err != nil {
		t.Fatalf("current plan: %v", err)
	}
	if stored.Summary["total_daily_calories"] != 1800 {
		t.Fatalf("stored plan was not the second write: %v", stored.Summary["total_daily_calories"])
	}
}

func TestLogMealFromPlan(t *testing.T) {
	db := testDB(t)
	meals := NewMealService(db)
	svc := NewDietPlanService(db, meals, nil, nil)
	ctx := context.Background()
	userID := uuid.New()

	// plan for this week so CurrentPlan resolves it
	weekStart := utils.WeekStart(time.Now().UTC())
	if err := svc.upsertPlan(ctx, userID, weekStart, fallbackPlan(weekStart)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// weekday names resolve alongside the ISO-date keys
	meal, err := svc.LogMealFromPlan(ctx, userID, "tuesday", "lunch")
	if err != nil {
		t.Fatalf("log from plan: %v", err)
	}
	if meal.Calories != 450 || meal.MealType != "lunch" {
		t.Fatalf("logged meal = %+v", meal)
	}

	tuesday := weekStart.AddDate(0, 0, 1).Format("2006-01-02")
	if _, err := svc.LogMealFromPlan(ctx, userID, tuesday, "dinner"); err != nil {
		t.Fatalf("log by date: %v", err)
	}

	listed, err := meals.List(ctx, userID, MealFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("got %d meals, want 2", len(listed))
	}
}
