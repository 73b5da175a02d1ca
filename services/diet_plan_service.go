package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/utils"
)

var planDayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

type PlannedMeal struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
}

type PlanTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type PlanDay struct {
	Date        string        `json:"date"`
	DayName     string        `json:"day_name"`
	Breakfast   *PlannedMeal  `json:"breakfast,omitempty"`
	Lunch       *PlannedMeal  `json:"lunch,omitempty"`
	Dinner      *PlannedMeal  `json:"dinner,omitempty"`
	Snacks      []PlannedMeal `json:"snacks,omitempty"`
	DailyTotals PlanTotals    `json:"daily_totals"`
}

// WeekPlan is the stored plan document. Days is keyed by ISO date
// (week_start through week_start+6), one entry per day even when the
// model left a day out.
type WeekPlan struct {
	WeekStart string             `json:"week_start"`
	WeekEnd   string             `json:"week_end"`
	Days      map[string]PlanDay `json:"days"`
	Summary   map[string]float64 `json:"summary"`
	Fallback  bool               `json:"fallback,omitempty"`
}

func (p *WeekPlan) hasMeals() bool {
	for _, d := range p.Days {
		if d.Breakfast != nil || d.Lunch != nil || d.Dinner != nil || len(d.Snacks) > 0 {
			return true
		}
	}
	return false
}

// day looks a day up by ISO date, or by weekday name as a convenience.
func (p *WeekPlan) day(key string) (PlanDay, string, bool) {
	if d, ok := p.Days[key]; ok {
		return d, key, true
	}
	for date, d := range p.Days {
		if strings.EqualFold(d.DayName, key) {
			return d, date, true
		}
	}
	return PlanDay{}, "", false
}

type DietPlanService struct {
	db       *gorm.DB
	meals    *MealService
	symptoms *SymptomService
	ai       *AIService
}

func NewDietPlanService(db *gorm.DB, meals *MealService, symptoms *SymptomService, ai *AIService) *DietPlanService {
	return &DietPlanService{db: db, meals: meals, symptoms: symptoms, ai: ai}
}

// GeneratePlan builds next week's plan from the user's profile, recent eating
// patterns, symptom history and any feedback on the previous plan. If the
// model call or parsing fails, a basic balanced plan is saved instead so the
// user always gets a week.
func (s *DietPlanService) GeneratePlan(ctx context.Context, userID uuid.UUID) (*WeekPlan, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}

	weekStart := utils.NextMonday(time.Now().UTC())

	plan, fallback := s.generateFromModel(ctx, userID, &profile, weekStart)
	plan.Fallback = fallback

	if err := s.upsertPlan(ctx, userID, weekStart, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *DietPlanService) generateFromModel(ctx context.Context, userID uuid.UUID, profile *models.Profile, weekStart time.Time) (*WeekPlan, bool) {
	goals := GoalsForProfile(profile)

	patterns, _ := s.meals.NutrientPatterns(ctx, userID, 14)
	stats, _ := s.symptoms.SummaryStats(ctx, userID, 14)
	recent, _ := s.meals.RecentMeals(ctx, userID, 10)
	feedback := s.latestFeedbackText(ctx, userID)

	domain := ""
	if stats != nil {
		domain = stats.MostAffectedDomain
	}

	userPrompt := buildPlanUserPrompt(profile, goals, patterns, stats, recent, feedback)

	messages := []chatMessage{
		{Role: "system", Content: PlanSystemPrompt(domain)},
		{Role: "user", Content: userPrompt},
	}
	reply, err := s.ai.Complete(ctx, messages, 0.7, 2000)
	if err != nil {
		s.ai.logger.Warnw("plan generation fell back to basic plan", "error", err)
		return fallbackPlan(weekStart), true
	}
	jsonPart, ok := extractJSON(reply)
	if !ok {
		s.ai.logger.Warnw("plan reply had no json object")
		return fallbackPlan(weekStart), true
	}
	var days map[string]PlanDay
	if err := json.Unmarshal([]byte(jsonPart), &days); err != nil {
		s.ai.logger.Warnw("plan reply failed to parse", "error", err)
		return fallbackPlan(weekStart), true
	}

	plan := structurePlan(days, weekStart)
	if !plan.hasMeals() {
		return fallbackPlan(weekStart), true
	}
	return plan, false
}

func buildPlanUserPrompt(profile *models.Profile, goals UserGoals, patterns *NutrientPatterns, stats *SymptomSummaryStats, recent []models.Meal, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile: age %d, %s, %.0fcm, %.1fkg, goal %s, activity %s.\n",
		profile.Age, profile.Gender, profile.Height, profile.Weight, profile.Goal, profile.ActivityLevel)
	fmt.Fprintf(&b, "Daily targets: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat.\n",
		goals.CalorieGoal, goals.Macros.Protein, goals.Macros.Carbs, goals.Macros.Fat)
	if prefs := utils.DecodeStringList(profile.DietPreferences); len(prefs) > 0 {
		fmt.Fprintf(&b, "Dietary preferences: %s.\n", strings.Join(prefs, ", "))
	}
	if patterns != nil && patterns.TotalMeals > 0 {
		fmt.Fprintf(&b, "Recent eating: %d meals over two weeks, averaging %.0f kcal and %.0fg protein per meal.\n",
			patterns.TotalMeals, patterns.AvgCalories, patterns.AvgProtein)
	}
	if stats != nil && stats.TotalSymptoms > 0 {
		fmt.Fprintf(&b, "Recent symptoms: %d logged, most common %s (%s domain), severity trend %s.\n",
			stats.TotalSymptoms, stats.MostCommonSymptom, stats.MostAffectedDomain, stats.Trend)
	}
	if len(recent) > 0 {
		b.WriteString("Recent meals: ")
		names := make([]string, 0, len(recent))
		for _, m := range recent {
			names = append(names, m.Description)
		}
		b.WriteString(strings.Join(names, "; "))
		b.WriteString(".\n")
	}
	if feedback != "" {
		fmt.Fprintf(&b, "Feedback on last week's plan: %s\n", feedback)
	}
	b.WriteString("Create the 7-day plan now.")
	return b.String()
}

func (s *DietPlanService) latestFeedbackText(ctx context.Context, userID uuid.UUID) string {
	var fb models.PlanFeedback
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week_start DESC").
		First(&fb).Error
	if err != nil {
		return ""
	}
	return string(fb.Feedback)
}

// structurePlan converts the model's weekday-keyed output into the stored
// document: days re-keyed by ISO date with date and day_name filled in,
// totals recomputed, all seven days present (a day the model skipped
// becomes an empty entry).
func structurePlan(days map[string]PlanDay, weekStart time.Time) *WeekPlan {
	plan := &WeekPlan{
		WeekStart: weekStart.Format("2006-01-02"),
		WeekEnd:   weekStart.AddDate(0, 0, 6).Format("2006-01-02"),
		Days:      map[string]PlanDay{},
	}
	var calSum, protSum, filled float64
	for i, name := range planDayNames {
		day := days[name]
		day.Date = weekStart.AddDate(0, 0, i).Format("2006-01-02")
		day.DayName = titleDay(name)
		day.DailyTotals = dayTotals(day)
		plan.Days[day.Date] = day
		if day.Breakfast != nil || day.Lunch != nil || day.Dinner != nil || len(day.Snacks) > 0 {
			calSum += day.DailyTotals.Calories
			protSum += day.DailyTotals.Protein
			filled++
		}
	}
	if filled > 0 {
		plan.Summary = map[string]float64{
			"total_daily_calories": calSum / filled,
			"daily_protein":        protSum / filled,
		}
	}
	return plan
}

func titleDay(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func dayTotals(day PlanDay) PlanTotals {
	var t PlanTotals
	add := func(m *PlannedMeal) {
		if m == nil {
			return
		}
		t.Calories += m.Calories
		t.Protein += m.Protein
		t.Carbs += m.Carbs
		t.Fat += m.Fat
	}
	add(day.Breakfast)
	add(day.Lunch)
	add(day.Dinner)
	for i := range day.Snacks {
		add(&day.Snacks[i])
	}
	return t
}

// fallbackPlan is the same balanced week for every day, used whenever
// generation fails.
func fallbackPlan(weekStart time.Time) *WeekPlan {
	day := PlanDay{
		Breakfast: &PlannedMeal{Name: "Balanced Breakfast", Description: "Oatmeal with berries and nuts", Calories: 350, Protein: 15, Carbs: 45, Fat: 12},
		Lunch:     &PlannedMeal{Name: "Healthy Lunch", Description: "Grilled chicken salad", Calories: 450, Protein: 35, Carbs: 25, Fat: 20},
		Dinner:    &PlannedMeal{Name: "Nutritious Dinner", Description: "Baked salmon with vegetables", Calories: 550, Protein: 40, Carbs: 45, Fat: 22},
		Snacks: []PlannedMeal{
			{Name: "Healthy Snack", Description: "Greek yogurt", Calories: 120, Protein: 10, Carbs: 15, Fat: 3},
		},
	}
	day.DailyTotals = dayTotals(day)

	plan := &WeekPlan{
		WeekStart: weekStart.Format("2006-01-02"),
		WeekEnd:   weekStart.AddDate(0, 0, 6).Format("2006-01-02"),
		Days:      map[string]PlanDay{},
		Summary: map[string]float64{
			"total_daily_calories": 1470,
			"daily_protein":        100,
		},
	}
	for i, name := range planDayNames {
		d := day
		d.Date = weekStart.AddDate(0, 0, i).Format("2006-01-02")
		d.DayName = titleDay(name)
		plan.Days[d.Date] = d
	}
	return plan
}

// upsertPlan keeps one plan row per user per week.
func (s *DietPlanService) upsertPlan(ctx context.Context, userID uuid.UUID, weekStart time.Time, plan *WeekPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	var existing models.DietPlan
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		First(&existing).Error
	if err == nil {
		return s.db.WithContext(ctx).Model(&existing).Update("plan", payload).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	row := models.DietPlan{UserID: userID, WeekStart: weekStart, Plan: payload}
	return s.db.WithContext(ctx).Create(&row).Error
}

// CurrentPlan returns the plan covering today, falling back to the most
// recent one.
func (s *DietPlanService) CurrentPlan(ctx context.Context, userID uuid.UUID) (*WeekPlan, error) {
	weekStart := utils.WeekStart(time.Now().UTC())
	var row models.DietPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		err = s.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("week_start DESC").
			First(&row).Error
	}
	if err != nil {
		return nil, err
	}
	var plan WeekPlan
	if err := json.Unmarshal(row.Plan, &plan); err != nil {
		return nil, fmt.Errorf("stored plan is unreadable: %w", err)
	}
	return &plan, nil
}

// EditMeal replaces one slot in the current plan and recomputes that day's
// totals. slot is breakfast, lunch, dinner, or snack:N.
func (s *DietPlanService) EditMeal(ctx context.Context, userID uuid.UUID, dayName, slot string, meal PlannedMeal) (*WeekPlan, error) {
	var row models.DietPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week_start DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	var plan WeekPlan
	if err := json.Unmarshal(row.Plan, &plan); err != nil {
		return nil, fmt.Errorf("stored plan is unreadable: %w", err)
	}
	day, dateKey, ok := plan.day(dayName)
	if !ok {
		return nil, fmt.Errorf("no such day in plan: %s", dayName)
	}

	switch {
	case slot == "breakfast":
		day.Breakfast = &meal
	case slot == "lunch":
		day.Lunch = &meal
	case slot == "dinner":
		day.Dinner = &meal
	case strings.HasPrefix(slot, "snack:"):
		var idx int
		if _, err := fmt.Sscanf(slot, "snack:%d", &idx); err != nil || idx < 0 || idx >= len(day.Snacks) {
			return nil, fmt.Errorf("no such snack slot: %s", slot)
		}
		day.Snacks[idx] = meal
	default:
		return nil, fmt.Errorf("unknown meal slot: %s", slot)
	}

	day.DailyTotals = dayTotals(day)
	plan.Days[dateKey] = day

	var calSum, protSum, filled float64
	for _, d := range plan.Days {
		if d.Breakfast == nil && d.Lunch == nil && d.Dinner == nil && len(d.Snacks) == 0 {
			continue
		}
		calSum += d.DailyTotals.Calories
		protSum += d.DailyTotals.Protein
		filled++
	}
	if filled > 0 {
		plan.Summary = map[string]float64{
			"total_daily_calories": calSum / filled,
			"daily_protein":        protSum / filled,
		}
	}

	payload, err := json.Marshal(&plan)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&row).Update("plan", payload).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// LogMealFromPlan copies a planned meal into the user's meal log.
func (s *DietPlanService) LogMealFromPlan(ctx context.Context, userID uuid.UUID, dayName, slot string) (*models.Meal, error) {
	plan, err := s.CurrentPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	day, _, ok := plan.day(dayName)
	if !ok {
		return nil, fmt.Errorf("no such day in plan: %s", dayName)
	}

	var planned *PlannedMeal
	mealType := slot
	switch {
	case slot == "breakfast":
		planned = day.Breakfast
	case slot == "lunch":
		planned = day.Lunch
	case slot == "dinner":
		planned = day.Dinner
	case strings.HasPrefix(slot, "snack:"):
		var idx int
		if _, err := fmt.Sscanf(slot, "snack:%d", &idx); err == nil && idx >= 0 && idx < len(day.Snacks) {
			planned = &day.Snacks[idx]
			mealType = "snack"
		}
	}
	if planned == nil {
		return nil, fmt.Errorf("no meal planned for %s %s", dayName, slot)
	}

	description := planned.Name
	if planned.Description != "" {
		description = planned.Name + ": " + planned.Description
	}
	meal := &models.Meal{
		UserID:      userID,
		Description: description,
		Calories:    planned.Calories,
		Protein:     planned.Protein,
		Carbs:       planned.Carbs,
		Fat:         planned.Fat,
		MealType:    mealType,
		LoggedAt:    time.Now().UTC(),
	}
	return s.meals.Create(ctx, meal)
}
