package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
)

func TestMealCreateAndDailySummary(t *testing.T) {
	db := testDB(t)
	svc := NewMealService(db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Create(ctx, &models.Meal{
		UserID:      userID,
		Description: "Chicken and rice",
		Calories:    500, Protein: 20, Carbs: 50, Fat: 15,
		LoggedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create meal: %v", err)
	}

	summary, err := svc.DailySummary(ctx, userID, time.Now().UTC())
	if err != nil {
		t.Fatalf("daily summary: %v", err)
	}
	if summary.MealCount != 1 {
		t.Fatalf("meal count = %d, want 1", summary.MealCount)
	}
	if summary.Calories != 500 || summary.Protein != 20 {
		t.Fatalf("summary = %+v, want 500 kcal / 20g protein", summary)
	}
}

func TestMealListIsScopedToUser(t *testing.T) {
	db := testDB(t)
	svc := NewMealService(db)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	for _, id := range []uuid.UUID{alice, bob} {
		if _, err := svc.Create(ctx, &models.Meal{UserID: id, Description: "toast", Calories: 200}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	meals, err := svc.List(ctx, alice, MealFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(meals) != 1 {
		t.Fatalf("got %d meals for alice, want 1", len(meals))
	}
	if meals[0].UserID != alice {
		t.Fatalf("meal belongs to %v, want %v", meals[0].UserID, alice)
	}
}

func TestMealDeleteMissingRow(t *testing.T) {
	db := testDB(t)
	svc := NewMealService(db)

	err := svc.Delete(context.Background(), uuid.New(), 12345)
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("delete missing meal = %v, want ErrRecordNotFound", err)
	}
}

func TestMealsBeforeWindow(t *testing.T) {
	db := testDB(t)
	svc := NewMealService(db)
	ctx := context.Background()
	userID := uuid.New()
	moment := time.Now().UTC()

	in := &models.Meal{UserID: userID, Description: "inside window", LoggedAt: moment.Add(-5 * time.Hour)}
	out := &models.Meal{UserID: userID, Description: "outside window", LoggedAt: moment.Add(-7 * time.Hour)}
	after := &models.Meal{UserID: userID, Description: "after symptom", LoggedAt: moment.Add(30 * time.Minute)}
	for _, m := range []*models.Meal{in, out, after} {
		if _, err := svc.Create(ctx, m); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	meals, err := svc.MealsBefore(ctx, userID, moment, 6*time.Hour)
	if err != nil {
		t.Fatalf("meals before: %v", err)
	}
	if len(meals) != 1 {
		t.Fatalf("got %d meals in window, want 1", len(meals))
	}
	if meals[0].Description != "inside window" {
		t.Fatalf("wrong meal selected: %s", meals[0].Description)
	}
}

func TestLoggingStreak(t *testing.T) {
	db := testDB(t)
	svc := NewMealService(db)
	ctx := context.Background()
	userID := uuid.New()

	now := time.Now().UTC()
	// today, yesterday, then a gap before day -3
	for _, offset := range []int{0, -1, -3} {
		_, err := svc.Create(ctx, &models.Meal{
			UserID:      userID,
			Description: "meal",
			LoggedAt:    now.AddDate(0, 0, offset),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	streak, err := svc.LoggingStreak(ctx, userID)
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak != 2 {
		t.Fatalf("streak = %d, want 2", streak)
	}
}
