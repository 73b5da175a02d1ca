package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/utils"
)

func TestEnsureWeeklySummaryRunsOnce(t *testing.T) {
	db := testDB(t)
	meals := NewMealService(db)
	symptoms := NewSymptomService(db, utils.NewCipher(""))
	svc := NewSummaryService(db, meals, symptoms)
	ctx := context.Background()
	userID := uuid.New()
	lastWeek := utils.LastWeekStart(time.Now().UTC())

	_, err := meals.Create(ctx, &models.Meal{
		UserID:      userID,
		Description: "pasta",
		Calories:    600, Protein: 25,
		LoggedAt: lastWeek.Add(30 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create meal: %v", err)
	}

	created, err := svc.EnsureWeeklySummary(ctx, userID, lastWeek)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if !created {
		t.Fatalf("first run should create the summary")
	}

	created, err = svc.EnsureWeeklySummary(ctx, userID, lastWeek)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if created {
		t.Fatalf("second run must not create a duplicate")
	}

	var count int64
	if err := db.Model(&models.WeeklySummary{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d summary rows, want 1", count)
	}
}

func TestGetWeeklySummaryContents(t *testing.T) {
	db := testDB(t)
	meals := NewMealService(db)
	symptoms := NewSymptomService(db, utils.NewCipher(""))
	svc := NewSummaryService(db, meals, symptoms)
	ctx := context.Background()
	userID := uuid.New()
	lastWeek := utils.LastWeekStart(time.Now().UTC())

	_, err := meals.Create(ctx, &models.Meal{
		UserID:      userID,
		Description: "omelette",
		Calories:    400, Protein: 28,
		LoggedAt: lastWeek.Add(8 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create meal: %v", err)
	}

	summary, err := svc.GetWeeklySummary(ctx, userID, lastWeek)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary.WeekStart != lastWeek.Format("2006-01-02") {
		t.Fatalf("week start = %s", summary.WeekStart)
	}
	if summary.Nutrition == nil || summary.Nutrition.AvgCalories != 400 {
		t.Fatalf("nutrition = %+v", summary.Nutrition)
	}
}
