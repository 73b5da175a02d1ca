package services

import (
	"math"
	"testing"

	"github.com/kutmanm/eatwise/models"
)

func TestCalculateBMR(t *testing.T) {
	// Harris-Benedict, 30y male, 180cm, 80kg
	got := CalculateBMR(30, 180, 80, true)
	want := 88.362 + 13.397*80 + 4.799*180 - 5.677*30
	if math.Abs(got-want) > 0.001 {
		t.Fatalf("male BMR = %v, want %v", got, want)
	}

	// 25y female, 165cm, 60kg
	got = CalculateBMR(25, 165, 60, false)
	want = 447.593 + 9.247*60 + 3.098*165 - 4.330*25
	if math.Abs(got-want) > 0.001 {
		t.Fatalf("female BMR = %v, want %v", got, want)
	}
}

func TestCalculateTDEE(t *testing.T) {
	bmr := 1800.0
	cases := []struct {
		level models.ActivityLevel
		want  float64
	}{
		{models.ActivityLow, 1800 * 1.2},
		{models.ActivityMedium, 1800 * 1.55},
		{models.ActivityHigh, 1800 * 1.9},
		{"unknown", 1800 * 1.55},
	}
	for _, c := range cases {
		if got := CalculateTDEE(bmr, c.level); math.Abs(got-c.want) > 0.001 {
			t.Fatalf("TDEE(%s) = %v, want %v", c.level, got, c.want)
		}
	}
}

func TestCalorieGoalOffsets(t *testing.T) {
	tdee := 2500.0
	if got := CalculateCalorieGoal(tdee, models.GoalWeightLoss); got != tdee-500 {
		t.Fatalf("weight loss goal = %v, want %v", got, tdee-500)
	}
	if got := CalculateCalorieGoal(tdee, models.GoalMuscleGain); got != tdee+300 {
		t.Fatalf("muscle gain goal = %v, want %v", got, tdee+300)
	}
	if got := CalculateCalorieGoal(tdee, models.GoalMaintain); got != tdee {
		t.Fatalf("maintain goal = %v, want %v", got, tdee)
	}
}

func TestMacroTargetsEnergyIdentity(t *testing.T) {
	// protein and carbs at 4 kcal/g, fat at 9: grams must convert back to
	// the calorie target
	for _, goal := range []models.GoalType{models.GoalWeightLoss, models.GoalMuscleGain, models.GoalMaintain} {
		calories := 2000.0
		m := CalculateMacroTargets(calories, goal)
		back := m.Protein*4 + m.Carbs*4 + m.Fat*9
		if math.Abs(back-calories) > 0.01 {
			t.Fatalf("%s: macros convert to %v kcal, want %v", goal, back, calories)
		}
	}
}

func TestMacroRatiosByGoal(t *testing.T) {
	calories := 2000.0

	loss := CalculateMacroTargets(calories, models.GoalWeightLoss)
	if math.Abs(loss.Protein-(calories*0.30)/4) > 0.01 {
		t.Fatalf("weight loss protein = %v", loss.Protein)
	}
	if math.Abs(loss.Fat-(calories*0.25)/9) > 0.01 {
		t.Fatalf("weight loss fat = %v", loss.Fat)
	}

	maintain := CalculateMacroTargets(calories, models.GoalMaintain)
	if math.Abs(maintain.Protein-(calories*0.25)/4) > 0.01 {
		t.Fatalf("maintain protein = %v", maintain.Protein)
	}
	if math.Abs(maintain.Fat-(calories*0.30)/9) > 0.01 {
		t.Fatalf("maintain fat = %v", maintain.Fat)
	}
}

func TestGoalsForProfileMaintainProgress(t *testing.T) {
	p := &models.Profile{
		Age: 30, Gender: "male", Height: 180, Weight: 75.5, TargetWeight: 75,
		ActivityLevel: models.ActivityMedium, Goal: models.GoalMaintain,
	}
	g := GoalsForProfile(p)
	if g.WeightProgress != 100 {
		t.Fatalf("within 1kg of target should report 100%% progress, got %v", g.WeightProgress)
	}
}
