package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/utils"
)

func newTestUserService(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	return NewUserService(db, NewMealService(db)), db
}

func baseProfile(userID uuid.UUID) *models.Profile {
	return &models.Profile{
		UserID: userID,
		Age:    30, Gender: "male", Height: 180, Weight: 80, TargetWeight: 75,
		ActivityLevel: models.ActivityMedium,
		Goal:          models.GoalWeightLoss,
	}
}

func TestCreateProfileSnapshotsGoals(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	profile, err := svc.CreateProfile(ctx, baseProfile(uuid.New()))
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if profile.CalorieGoal <= 0 {
		t.Fatalf("calorie goal not snapshotted: %v", profile.CalorieGoal)
	}
	// weight loss at medium activity: tdee - 500
	bmr := CalculateBMR(30, 180, 80, true)
	want := bmr*1.55 - 500
	if diff := profile.CalorieGoal - want; diff > 0.001 || diff < -0.001 {
		t.Fatalf("calorie goal = %v, want %v", profile.CalorieGoal, want)
	}
}

func TestCreateProfileReplacesExisting(t *testing.T) {
	svc, db := newTestUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.CreateProfile(ctx, baseProfile(userID)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	second := baseProfile(userID)
	second.Weight = 78
	if _, err := svc.CreateProfile(ctx, second); err != nil {
		t.Fatalf("second create: %v", err)
	}

	var count int64
	if err := db.Model(&models.Profile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d profiles, want 1", count)
	}

	profile, err := svc.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.Weight != 78 {
		t.Fatalf("profile weight = %v, want 78", profile.Weight)
	}
}

func TestCreateProfileRejectsBadEnum(t *testing.T) {
	svc, _ := newTestUserService(t)

	p := baseProfile(uuid.New())
	p.ActivityLevel = "couch"
	if _, err := svc.CreateProfile(context.Background(), p); err == nil {
		t.Fatalf("expected error for invalid activity level")
	}

	p = baseProfile(uuid.New())
	p.Goal = "get-swole"
	if _, err := svc.CreateProfile(context.Background(), p); err == nil {
		t.Fatalf("expected error for invalid goal")
	}
}

func TestFreeMealLimit(t *testing.T) {
	svc, db := newTestUserService(t)
	ctx := context.Background()

	user := models.User{ID: uuid.New(), Email: "free@example.com", Role: models.RoleFree}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	for i := 0; i < freeMealLogsPerDay; i++ {
		meal := models.Meal{UserID: user.ID, Description: "meal", LoggedAt: time.Now().UTC()}
		if err := db.Create(&meal).Error; err != nil {
			t.Fatalf("create meal: %v", err)
		}
	}

	if err := svc.CheckMealLimit(ctx, &user); err != ErrFreeLimitReached {
		t.Fatalf("at the limit CheckMealLimit = %v, want ErrFreeLimitReached", err)
	}

	premium := models.User{ID: uuid.New(), Email: "premium@example.com", Role: models.RolePremium}
	if err := svc.CheckMealLimit(ctx, &premium); err != nil {
		t.Fatalf("premium user should be unlimited: %v", err)
	}
}

func TestLogWeightUpdatesProfile(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.CreateProfile(ctx, baseProfile(userID)); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if _, err := svc.LogWeight(ctx, userID, 78.5, "", time.Time{}); err != nil {
		t.Fatalf("log weight: %v", err)
	}

	profile, err := svc.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Weight != 78.5 {
		t.Fatalf("profile weight = %v, want 78.5", profile.Weight)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	svc, db := newTestUserService(t)
	ctx := context.Background()

	user := models.User{ID: uuid.New(), Email: "gone@example.com", Role: models.RoleFree}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := svc.CreateProfile(ctx, baseProfile(user.ID)); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	rows := []any{
		&models.Meal{UserID: user.ID, Description: "meal", LoggedAt: time.Now().UTC()},
		&models.SymptomLog{UserID: user.ID, SymptomType: "bloating", Severity: 3, OccurredAt: time.Now().UTC()},
		&models.WeightLog{UserID: user.ID, Weight: 80, LoggedAt: time.Now().UTC()},
		&models.DietPlan{UserID: user.ID, WeekStart: utils.WeekStart(time.Now().UTC()), Plan: []byte(`{}`)},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed row: %v", err)
		}
	}

	if err := svc.DeleteAccount(ctx, user.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	for _, model := range []any{&models.User{}, &models.Profile{}, &models.Meal{}, &models.SymptomLog{}, &models.WeightLog{}, &models.DietPlan{}} {
		var count int64
		q := db.Model(model)
		if _, isUser := model.(*models.User); isUser {
			q = q.Where("id = ?", user.ID)
		} else {
			q = q.Where("user_id = ?", user.ID)
		}
		if err := q.Count(&count).Error; err != nil {
			t.Fatalf("count %T: %v", model, err)
		}
		if count != 0 {
			t.Fatalf("%T rows survived account deletion", model)
		}
	}
}
