package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/utils"
)

// Daily allowances for free accounts. Premium and trial are unlimited.
const (
	freeMealLogsPerDay = 5
	freeAICallsPerDay  = 3
)

var ErrFreeLimitReached = fmt.Errorf("free plan limit reached")

type UserService struct {
	db    *gorm.DB
	meals *MealService
}

func NewUserService(db *gorm.DB, meals *MealService) *UserService {
	return &UserService{db: db, meals: meals}
}

// EnsureUser returns the user with the given email, provisioning a row on
// first sight. Auth happens upstream; this keeps the local record in sync.
func (s *UserService) EnsureUser(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	user = models.User{ID: uuid.New(), Email: email, Role: models.RoleFree}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ---------- Profile ----------

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfile replaces any existing profile. The goal snapshot fields are
// recomputed so that later formula changes do not silently move a user's
// targets.
func (s *UserService) CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if !models.ValidActivityLevel(string(profile.ActivityLevel)) {
		return nil, fmt.Errorf("invalid activity level: %s", profile.ActivityLevel)
	}
	if !models.ValidGoalType(string(profile.Goal)) {
		return nil, fmt.Errorf("invalid goal: %s", profile.Goal)
	}
	if profile.InitialWeight == 0 {
		profile.InitialWeight = profile.Weight
	}
	snapshotGoals(profile)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", profile.UserID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) (*models.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if v, ok := updates["activity_level"].(string); ok && !models.ValidActivityLevel(v) {
		return nil, fmt.Errorf("invalid activity level: %s", v)
	}
	if v, ok := updates["goal"].(string); ok && !models.ValidGoalType(v) {
		return nil, fmt.Errorf("invalid goal: %s", v)
	}
	if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
		return nil, err
	}
	profile, err = s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	// body or goal changes move the targets
	snapshotGoals(profile)
	if err := s.db.WithContext(ctx).Model(profile).Updates(map[string]any{
		"calorie_goal": profile.CalorieGoal,
		"protein_goal": profile.ProteinGoal,
		"carbs_goal":   profile.CarbsGoal,
		"fat_goal":     profile.FatGoal,
	}).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func snapshotGoals(p *models.Profile) {
	g := GoalsForProfile(p)
	p.CalorieGoal = g.CalorieGoal
	p.ProteinGoal = g.Macros.Protein
	p.CarbsGoal = g.Macros.Carbs
	p.FatGoal = g.Macros.Fat
}

func (s *UserService) Goals(ctx context.Context, userID uuid.UUID) (*UserGoals, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	g := GoalsForProfile(profile)
	return &g, nil
}

func (s *UserService) Streak(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.meals.LoggingStreak(ctx, userID)
}

// ---------- Weight logs ----------

func (s *UserService) LogWeight(ctx context.Context, userID uuid.UUID, weight float64, note string, loggedAt time.Time) (*models.WeightLog, error) {
	if weight <= 0 {
		return nil, fmt.Errorf("weight must be positive")
	}
	if loggedAt.IsZero() {
		loggedAt = time.Now().UTC()
	}
	log := models.WeightLog{UserID: userID, Weight: weight, Note: note, LoggedAt: loggedAt}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&log).Error; err != nil {
			return err
		}
		// keep the profile's current weight in step with the newest log
		return tx.Model(&models.Profile{}).
			Where("user_id = ?", userID).
			Update("weight", weight).Error
	})
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *UserService) ListWeightLogs(ctx context.Context, userID uuid.UUID, from, to *time.Time, limit int) ([]models.WeightLog, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("logged_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("logged_at <= ?", *to)
	}
	if limit <= 0 {
		limit = 100
	}
	var logs []models.WeightLog
	err := q.Order("logged_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (s *UserService) DeleteWeightLog(ctx context.Context, userID uuid.UUID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.WeightLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type WeightStats struct {
	Current     float64 `json:"current"`
	Initial     float64 `json:"initial"`
	Target      float64 `json:"target,omitempty"`
	TotalChange float64 `json:"total_change"`
	Trend       string  `json:"trend"`
	BMI         float64 `json:"bmi,omitempty"`
	BMICategory string  `json:"bmi_category,omitempty"`
	LogCount    int     `json:"log_count"`
}

// WeightStats summarizes the weight history. Trend compares the newest third
// of the logs against the oldest third.
func (s *UserService) WeightStats(ctx context.Context, userID uuid.UUID) (*WeightStats, error) {
	logs, err := s.ListWeightLogs(ctx, userID, nil, nil, 500)
	if err != nil {
		return nil, err
	}
	stats := &WeightStats{LogCount: len(logs), Trend: "no_data"}
	if len(logs) == 0 {
		return stats, nil
	}

	// logs are newest-first
	stats.Current = logs[0].Weight
	stats.Initial = logs[len(logs)-1].Weight
	stats.TotalChange = round1(stats.Current - stats.Initial)

	if profile, err := s.GetProfile(ctx, userID); err == nil {
		stats.Target = profile.TargetWeight
		if profile.InitialWeight > 0 {
			stats.Initial = profile.InitialWeight
			stats.TotalChange = round1(stats.Current - stats.Initial)
		}
		if bmi, err := utils.CalculateBMI(profile.Height, stats.Current); err == nil {
			stats.BMI = bmi
			stats.BMICategory = utils.BMICategory(bmi)
		}
	}

	if len(logs) >= 3 {
		third := len(logs) / 3
		recent := meanWeight(logs[:third])
		oldest := meanWeight(logs[len(logs)-third:])
		switch {
		case recent < oldest-0.2:
			stats.Trend = "losing"
		case recent > oldest+0.2:
			stats.Trend = "gaining"
		default:
			stats.Trend = "stable"
		}
	} else {
		stats.Trend = "insufficient_data"
	}
	return stats, nil
}

func meanWeight(logs []models.WeightLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	var sum float64
	for _, l := range logs {
		sum += l.Weight
	}
	return sum / float64(len(logs))
}

// ---------- Freemium limits ----------

// CheckMealLimit enforces the free plan's daily meal log allowance.
func (s *UserService) CheckMealLimit(ctx context.Context, user *models.User) error {
	if user.Role != models.RoleFree {
		return nil
	}
	count, err := s.meals.CountSince(ctx, user.ID, utils.DayStart(time.Now()))
	if err != nil {
		return err
	}
	if count >= freeMealLogsPerDay {
		return ErrFreeLimitReached
	}
	return nil
}

// CheckAILimit enforces the free plan's daily AI call allowance by counting
// today's AI-assisted meal logs.
func (s *UserService) CheckAILimit(ctx context.Context, user *models.User) error {
	if user.Role != models.RoleFree {
		return nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Meal{}).
		Where("user_id = ? AND logged_at >= ? AND image_url <> ''", user.ID, utils.DayStart(time.Now())).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count >= freeAICallsPerDay {
		return ErrFreeLimitReached
	}
	return nil
}

// ---------- Account deletion ----------

// DeleteAccount removes the user and every row that references them, in one
// transaction. The cascade is spelled out here rather than hidden in
// database constraints.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.Meal{},
			&models.SymptomLog{},
			&models.LifestyleLog{},
			&models.WeightLog{},
			&models.DietPlan{},
			&models.WeeklySummary{},
			&models.PlanFeedback{},
			&models.Subscription{},
			&models.Profile{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", userID).Delete(&models.User{}).Error
	})
}
