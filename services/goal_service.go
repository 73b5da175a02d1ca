package services

import (
	"github.com/kutmanm/eatwise/models"
)

// Pure goal math. Deterministic and stateless; the only contract is that the
// same profile always produces the same numbers.

var activityMultipliers = map[models.ActivityLevel]float64{
	models.ActivityLow:    1.2,
	models.ActivityMedium: 1.55,
	models.ActivityHigh:   1.9,
}

// CalculateBMR uses the Harris-Benedict variant, height in cm, weight in kg.
func CalculateBMR(age int, heightCm, weightKg float64, male bool) float64 {
	if male {
		return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*float64(age)
	}
	return 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*float64(age)
}

func CalculateTDEE(bmr float64, activity models.ActivityLevel) float64 {
	mult, ok := activityMultipliers[activity]
	if !ok {
		mult = activityMultipliers[models.ActivityMedium]
	}
	return bmr * mult
}

func CalculateCalorieGoal(tdee float64, goal models.GoalType) float64 {
	switch goal {
	case models.GoalWeightLoss:
		return tdee - 500
	case models.GoalMuscleGain:
		return tdee + 300
	default:
		return tdee
	}
}

type MacroTargets struct {
	Protein float64 `json:"protein"` // g
	Carbs   float64 `json:"carbs"`   // g
	Fat     float64 `json:"fat"`     // g
}

// CalculateMacroTargets splits a calorie goal into grams using fixed ratios
// per goal type and 4/4/9 kcal per gram.
func CalculateMacroTargets(calories float64, goal models.GoalType) MacroTargets {
	proteinRatio, fatRatio, carbsRatio := 0.25, 0.30, 0.45
	if goal == models.GoalWeightLoss || goal == models.GoalMuscleGain {
		proteinRatio, fatRatio, carbsRatio = 0.30, 0.25, 0.45
	}
	return MacroTargets{
		Protein: (calories * proteinRatio) / 4,
		Carbs:   (calories * carbsRatio) / 4,
		Fat:     (calories * fatRatio) / 9,
	}
}

type UserGoals struct {
	BMR            float64      `json:"bmr"`
	TDEE           float64      `json:"tdee"`
	CalorieGoal    float64      `json:"calorie_goal"`
	Macros         MacroTargets `json:"macros"`
	TargetWeight   float64      `json:"target_weight,omitempty"`
	TimeframeDays  int          `json:"timeframe_days,omitempty"`
	WeightProgress float64      `json:"weight_progress"`
}

// GoalsForProfile derives the full goal set from a profile snapshot.
func GoalsForProfile(p *models.Profile) UserGoals {
	male := p.Gender != "female"
	bmr := CalculateBMR(p.Age, p.Height, p.Weight, male)
	tdee := CalculateTDEE(bmr, p.ActivityLevel)
	calories := CalculateCalorieGoal(tdee, p.Goal)

	g := UserGoals{
		BMR:           bmr,
		TDEE:          tdee,
		CalorieGoal:   calories,
		Macros:        CalculateMacroTargets(calories, p.Goal),
		TargetWeight:  p.TargetWeight,
		TimeframeDays: p.TimeframeDays,
	}
	if p.Goal == models.GoalMaintain && p.TargetWeight > 0 {
		diff := p.Weight - p.TargetWeight
		if diff < 0 {
			diff = -diff
		}
		if diff <= 1.0 {
			g.WeightProgress = 100.0
		}
	}
	return g
}
