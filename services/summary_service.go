package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/utils"
)

type SummaryService struct {
	db       *gorm.DB
	meals    *MealService
	symptoms *SymptomService
}

func NewSummaryService(db *gorm.DB, meals *MealService, symptoms *SymptomService) *SummaryService {
	return &SummaryService{db: db, meals: meals, symptoms: symptoms}
}

type WeeklySummaryData struct {
	WeekStart   string               `json:"week_start"`
	Nutrition   *WeeklyProgress      `json:"nutrition"`
	Symptoms    *SymptomSummaryStats `json:"symptoms"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// GetWeeklySummary returns the cached summary for the week, computing and
// storing it on first access.
func (s *SummaryService) GetWeeklySummary(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*WeeklySummaryData, error) {
	weekStart = utils.WeekStart(weekStart)

	var row models.WeeklySummary
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		First(&row).Error
	if err == nil {
		var data WeeklySummaryData
		if err := json.Unmarshal(row.Summary, &data); err == nil {
			return &data, nil
		}
		// unreadable cache entry, recompute below
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	data, err := s.compute(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, userID, weekStart, data); err != nil {
		return nil, err
	}
	return data, nil
}

// EnsureWeeklySummary is the scheduler entry point: it creates the summary
// only when none exists yet and reports whether it did.
func (s *SummaryService) EnsureWeeklySummary(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error) {
	weekStart = utils.WeekStart(weekStart)

	var count int64
	err := s.db.WithContext(ctx).Model(&models.WeeklySummary{}).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	data, err := s.compute(ctx, userID, weekStart)
	if err != nil {
		return false, err
	}
	if err := s.store(ctx, userID, weekStart, data); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SummaryService) compute(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*WeeklySummaryData, error) {
	nutrition, err := s.meals.WeeklyProgress(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	days := int(time.Since(weekStart).Hours()/24) + 1
	if days < 7 {
		days = 7
	}
	symptomStats, err := s.symptoms.SummaryStats(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return &WeeklySummaryData{
		WeekStart:   weekStart.Format("2006-01-02"),
		Nutrition:   nutrition,
		Symptoms:    symptomStats,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *SummaryService) store(ctx context.Context, userID uuid.UUID, weekStart time.Time, data *WeeklySummaryData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var existing models.WeeklySummary
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		First(&existing).Error
	if err == nil {
		return s.db.WithContext(ctx).Model(&existing).Update("summary", payload).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	row := models.WeeklySummary{UserID: userID, WeekStart: weekStart, Summary: payload}
	return s.db.WithContext(ctx).Create(&row).Error
}
