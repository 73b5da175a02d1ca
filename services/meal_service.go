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

type MealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) *MealService { return &MealService{db: db} }

func (s *MealService) Create(ctx context.Context, meal *models.Meal) (*models.Meal, error) {
	if meal.LoggedAt.IsZero() {
		meal.LoggedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *MealService) Get(ctx context.Context, userID uuid.UUID, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if err != nil {
		return nil, err // could be ErrRecordNotFound
	}
	return &meal, nil
}

type MealFilter struct {
	From  *time.Time
	To    *time.Time
	Skip  int
	Limit int
}

func (s *MealService) List(ctx context.Context, userID uuid.UUID, f MealFilter) ([]models.Meal, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.From != nil {
		q = q.Where("logged_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("logged_at <= ?", *f.To)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	var meals []models.Meal
	err := q.Order("logged_at DESC").Offset(f.Skip).Limit(limit).Find(&meals).Error
	return meals, err
}

func (s *MealService) Update(ctx context.Context, userID uuid.UUID, mealID uint, updates map[string]any) (*models.Meal, error) {
	meal, err := s.Get(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(meal).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, mealID)
}

func (s *MealService) Delete(ctx context.Context, userID uuid.UUID, mealID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		Delete(&models.Meal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *MealService) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]models.Meal, error) {
	if limit <= 0 {
		limit = 20
	}
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND description LIKE ?", userID, "%"+query+"%").
		Order("logged_at DESC").
		Limit(limit).
		Find(&meals).Error
	return meals, err
}

// ---------- Summaries ----------

type DailyNutritionSummary struct {
	Date      string  `json:"date"`
	MealCount int     `json:"meal_count"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Fiber     float64 `json:"fiber"`
	Water     float64 `json:"water"`

	CalorieGoal float64 `json:"calorie_goal,omitempty"`
	ProteinGoal float64 `json:"protein_goal,omitempty"`
	CarbsGoal   float64 `json:"carbs_goal,omitempty"`
	FatGoal     float64 `json:"fat_goal,omitempty"`
}

func (s *MealService) DailySummary(ctx context.Context, userID uuid.UUID, day time.Time) (*DailyNutritionSummary, error) {
	start := utils.DayStart(day)
	end := start.AddDate(0, 0, 1)

	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, start, end).
		Find(&meals).Error
	if err != nil {
		return nil, err
	}

	out := &DailyNutritionSummary{Date: start.Format("2006-01-02"), MealCount: len(meals)}
	for _, m := range meals {
		out.Calories += m.Calories
		out.Protein += m.Protein
		out.Carbs += m.Carbs
		out.Fat += m.Fat
		out.Fiber += m.Fiber
		out.Water += m.Water
	}

	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err == nil {
		goals := GoalsForProfile(&profile)
		out.CalorieGoal = goals.CalorieGoal
		out.ProteinGoal = goals.Macros.Protein
		out.CarbsGoal = goals.Macros.Carbs
		out.FatGoal = goals.Macros.Fat
	}

	return out, nil
}

type WeeklyProgress struct {
	WeekStart      string                  `json:"week_start"`
	DailySummaries []DailyNutritionSummary `json:"daily_summaries"`
	AvgCalories    float64                 `json:"avg_calories"`
	AvgProtein     float64                 `json:"avg_protein"`
	AvgCarbs       float64                 `json:"avg_carbs"`
	AvgFat         float64                 `json:"avg_fat"`
}

// WeeklyProgress averages over days that actually have meals, so a sparse week
// is not diluted toward zero.
func (s *MealService) WeeklyProgress(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*WeeklyProgress, error) {
	out := &WeeklyProgress{WeekStart: utils.DayStart(weekStart).Format("2006-01-02")}

	var totCal, totProt, totCarbs, totFat float64
	daysWithMeals := 0
	for i := 0; i < 7; i++ {
		day, err := s.DailySummary(ctx, userID, weekStart.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		out.DailySummaries = append(out.DailySummaries, *day)
		totCal += day.Calories
		totProt += day.Protein
		totCarbs += day.Carbs
		totFat += day.Fat
		if day.MealCount > 0 {
			daysWithMeals++
		}
	}

	den := daysWithMeals
	if den == 0 {
		den = 1
	}
	out.AvgCalories = totCal / float64(den)
	out.AvgProtein = totProt / float64(den)
	out.AvgCarbs = totCarbs / float64(den)
	out.AvgFat = totFat / float64(den)
	return out, nil
}

type CalendarDay struct {
	MealCount     int     `json:"meal_count"`
	TotalCalories float64 `json:"total_calories"`
}

func (s *MealService) CalendarData(ctx context.Context, userID uuid.UUID, year, month int) (map[string]any, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, start, end).
		Find(&meals).Error
	if err != nil {
		return nil, err
	}

	days := map[int]*CalendarDay{}
	for _, m := range meals {
		d := m.LoggedAt.UTC().Day()
		if days[d] == nil {
			days[d] = &CalendarDay{}
		}
		days[d].MealCount++
		days[d].TotalCalories += m.Calories
	}

	return map[string]any{"month": month, "year": year, "days": days}, nil
}

// RecentMeals returns the newest meals for prompt context.
func (s *MealService) RecentMeals(ctx context.Context, userID uuid.UUID, limit int) ([]models.Meal, error) {
	if limit <= 0 {
		limit = 5
	}
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("logged_at DESC").
		Limit(limit).
		Find(&meals).Error
	return meals, err
}

// MealsBefore returns meals logged within the window strictly before a moment,
// newest first. Used by the correlation analyzer.
func (s *MealService) MealsBefore(ctx context.Context, userID uuid.UUID, moment time.Time, window time.Duration) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, moment.Add(-window), moment).
		Order("logged_at DESC").
		Find(&meals).Error
	return meals, err
}

type NutrientPatterns struct {
	TotalMeals      int            `json:"total_meals"`
	AvgCalories     float64        `json:"avg_calories"`
	AvgProtein      float64        `json:"avg_protein"`
	MealTypeCounts  map[string]int `json:"meal_type_counts"`
	DietaryPatterns map[string]int `json:"dietary_patterns"`
}

// NutrientPatterns summarizes recent eating for the plan-generation prompt.
func (s *MealService) NutrientPatterns(ctx context.Context, userID uuid.UUID, days int) (*NutrientPatterns, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ?", userID, since).
		Find(&meals).Error
	if err != nil {
		return nil, err
	}

	out := &NutrientPatterns{
		TotalMeals:      len(meals),
		MealTypeCounts:  map[string]int{},
		DietaryPatterns: map[string]int{},
	}
	for _, m := range meals {
		out.AvgCalories += m.Calories
		out.AvgProtein += m.Protein
		if m.MealType != "" {
			out.MealTypeCounts[m.MealType]++
		}
		for _, tag := range utils.DecodeStringList(m.DietaryTags) {
			out.DietaryPatterns[tag]++
		}
	}
	if len(meals) > 0 {
		out.AvgCalories /= float64(len(meals))
		out.AvgProtein /= float64(len(meals))
	}
	return out, nil
}

// LoggingStreak counts consecutive days (today backwards) with at least one
// meal, capped at a year.
func (s *MealService) LoggingStreak(ctx context.Context, userID uuid.UUID) (int, error) {
	streak := 0
	for i := 0; i < 365; i++ {
		day := utils.DayStart(time.Now().UTC()).AddDate(0, 0, -i)
		var count int64
		err := s.db.WithContext(ctx).Model(&models.Meal{}).
			Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, day, day.AddDate(0, 0, 1)).
			Count(&count).Error
		if err != nil {
			return 0, err
		}
		if count == 0 {
			break
		}
		streak++
	}
	return streak, nil
}

// CountSince is used for freemium limit checks.
func (s *MealService) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Meal{}).
		Where("user_id = ? AND logged_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("db error counting meals: %w", err)
	}
	return count, nil
}
