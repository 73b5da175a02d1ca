package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/utils"
)

// Thresholds for the meal/symptom correlation heuristics.
const (
	correlationWindow       = 6 * time.Hour
	mealTimingWindow        = 4 * time.Hour
	trendBand               = 0.5
	minLogsForTrend         = 6
	minIngredientOccurrence = 2
	minPatternMeals         = 2
	highSodiumMg            = 1000.0
	highFatG                = 20.0
)

type CorrelationService struct {
	db    *gorm.DB
	meals *MealService
}

func NewCorrelationService(db *gorm.DB, meals *MealService) *CorrelationService {
	return &CorrelationService{db: db, meals: meals}
}

type MealCorrelation struct {
	SymptomID              uint      `json:"symptom_id"`
	SymptomType            string    `json:"symptom_type"`
	Severity               int       `json:"severity"`
	OccurredAt             time.Time `json:"occurred_at"`
	MealID                 uint      `json:"meal_id"`
	MealDescription        string    `json:"meal_description"`
	MealLoggedAt           time.Time `json:"meal_logged_at"`
	TimeBeforeSymptomHours float64   `json:"time_before_symptom_hours"`
	Ingredients            []string  `json:"ingredients,omitempty"`
}

type IngredientPattern struct {
	Ingredient   string `json:"ingredient"`
	SymptomCount int    `json:"symptom_count"`
}

type NutrientPattern struct {
	Nutrient  string `json:"nutrient"`
	MealCount int    `json:"meal_count"`
	Note      string `json:"note"`
}

type TimingPattern struct {
	Description  string  `json:"description"`
	SymptomCount int     `json:"symptom_count"`
	AvgGapHours  float64 `json:"avg_gap_hours,omitempty"`
}

type CorrelationReport struct {
	RangeDays           int                 `json:"range_days"`
	TotalSymptoms       int                 `json:"total_symptoms"`
	Correlations        []MealCorrelation   `json:"correlations"`
	FrequentIngredients []IngredientPattern `json:"frequent_ingredients"`
	NutrientPatterns    []NutrientPattern   `json:"nutrient_patterns"`
	TimingPatterns      []TimingPattern     `json:"timing_patterns"`
	PeakHour            *int                `json:"peak_hour,omitempty"`
	SeverityTrend       string              `json:"severity_trend"`
}

// Analyze builds the correlation report for the last rangeDays. Each symptom
// is paired with the meals logged strictly before it within the window.
func (s *CorrelationService) Analyze(ctx context.Context, userID uuid.UUID, rangeDays int) (*CorrelationReport, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -rangeDays)

	var symptoms []models.SymptomLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND occurred_at >= ? AND occurred_at <= ?", userID, start, end).
		Order("occurred_at ASC").
		Find(&symptoms).Error
	if err != nil {
		return nil, err
	}

	report := &CorrelationReport{
		RangeDays:           rangeDays,
		TotalSymptoms:       len(symptoms),
		Correlations:        []MealCorrelation{},
		FrequentIngredients: []IngredientPattern{},
		NutrientPatterns:    []NutrientPattern{},
		TimingPatterns:      []TimingPattern{},
		SeverityTrend:       "insufficient_data",
	}
	if len(symptoms) == 0 {
		report.SeverityTrend = "no_data"
		return report, nil
	}

	ingredientHits := map[string]int{}
	// occurrence counts across symptom pairings, so one meal preceding
	// three symptoms counts three times
	highSodiumCount := 0
	highFatCount := 0
	hourCounts := map[int]int{}
	var timingGaps []float64

	for _, sym := range symptoms {
		hourCounts[sym.OccurredAt.UTC().Hour()]++

		meals, err := s.meals.MealsBefore(ctx, userID, sym.OccurredAt, correlationWindow)
		if err != nil {
			return nil, err
		}
		seenIngredient := map[string]bool{}
		for _, m := range meals {
			gap := sym.OccurredAt.Sub(m.LoggedAt).Hours()
			ingredients := utils.DecodeStringList(m.Ingredients)
			report.Correlations = append(report.Correlations, MealCorrelation{
				SymptomID:              sym.ID,
				SymptomType:            sym.SymptomType,
				Severity:               sym.Severity,
				OccurredAt:             sym.OccurredAt,
				MealID:                 m.ID,
				MealDescription:        m.Description,
				MealLoggedAt:           m.LoggedAt,
				TimeBeforeSymptomHours: roundHour(gap),
				Ingredients:            ingredients,
			})

			// count each ingredient once per symptom
			for _, ing := range ingredients {
				if !seenIngredient[ing] {
					seenIngredient[ing] = true
					ingredientHits[ing]++
				}
			}
			if m.Sodium > highSodiumMg {
				highSodiumCount++
			}
			if m.Fat > highFatG {
				highFatCount++
			}
			if gap <= mealTimingWindow.Hours() {
				timingGaps = append(timingGaps, gap)
			}
		}
	}

	for ing, n := range ingredientHits {
		if n >= minIngredientOccurrence {
			report.FrequentIngredients = append(report.FrequentIngredients, IngredientPattern{
				Ingredient:   ing,
				SymptomCount: n,
			})
		}
	}

	if highSodiumCount > minPatternMeals {
		report.NutrientPatterns = append(report.NutrientPatterns, NutrientPattern{
			Nutrient:  "sodium",
			MealCount: highSodiumCount,
			Note:      fmt.Sprintf("%d high-sodium meals (>%.0fmg) preceded symptoms", highSodiumCount, highSodiumMg),
		})
	}
	if highFatCount > minPatternMeals {
		report.NutrientPatterns = append(report.NutrientPatterns, NutrientPattern{
			Nutrient:  "fat",
			MealCount: highFatCount,
			Note:      fmt.Sprintf("%d high-fat meals (>%.0fg) preceded symptoms", highFatCount, highFatG),
		})
	}

	if len(timingGaps) > minPatternMeals {
		var sum float64
		for _, g := range timingGaps {
			sum += g
		}
		avg := sum / float64(len(timingGaps))
		report.TimingPatterns = append(report.TimingPatterns, TimingPattern{
			Description:  fmt.Sprintf("symptoms tend to appear within %.0f hours after eating", mealTimingWindow.Hours()),
			SymptomCount: len(timingGaps),
			AvgGapHours:  roundHour(avg),
		})
	}

	if peak, ok := peakHour(hourCounts); ok {
		report.PeakHour = &peak
	}

	report.SeverityTrend = severityTrend(symptoms)
	return report, nil
}

// severityTrend compares the newer half of the logs against the older half.
// Logs arrive oldest-first.
func severityTrend(symptoms []models.SymptomLog) string {
	if len(symptoms) < minLogsForTrend {
		return "insufficient_data"
	}
	half := len(symptoms) / 2
	older := meanSeverity(symptoms[:half])
	recent := meanSeverity(symptoms[len(symptoms)-half:])
	switch {
	case recent > older+trendBand:
		return "worsening"
	case recent < older-trendBand:
		return "improving"
	default:
		return "stable"
	}
}

func peakHour(counts map[int]int) (int, bool) {
	best, bestN := 0, 0
	for h, n := range counts {
		if n > bestN || (n == bestN && h < best) {
			best, bestN = h, n
		}
	}
	return best, bestN > 0
}

func roundHour(h float64) float64 {
	return math.Round(h*10) / 10
}
