package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/utils"
)

// WeeklySummaryScheduler materializes last week's summary for every user once
// a day at a fixed UTC hour.
type WeeklySummaryScheduler struct {
	db        *gorm.DB
	summaries *SummaryService
	hour      int
	logger    *zap.SugaredLogger
}

func NewWeeklySummaryScheduler(db *gorm.DB, summaries *SummaryService, hour int, logger *zap.SugaredLogger) *WeeklySummaryScheduler {
	if hour < 0 || hour > 23 {
		hour = 2
	}
	return &WeeklySummaryScheduler{db: db, summaries: summaries, hour: hour, logger: logger}
}

// Run blocks until ctx is canceled. A failed cycle is retried after an hour
// instead of waiting for the next day.
func (s *WeeklySummaryScheduler) Run(ctx context.Context) {
	s.logger.Infow("weekly summary scheduler started", "hour_utc", s.hour)
	for {
		wait := time.Until(s.nextRun(time.Now().UTC()))
		select {
		case <-ctx.Done():
			s.logger.Info("weekly summary scheduler stopped")
			return
		case <-time.After(wait):
		}

		if err := s.runCycle(ctx); err != nil {
			s.logger.Warnw("summary cycle failed, retrying in an hour", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Hour):
			}
		}
	}
}

func (s *WeeklySummaryScheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *WeeklySummaryScheduler) runCycle(ctx context.Context) error {
	lastWeek := utils.LastWeekStart(time.Now().UTC())

	var users []models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return err
	}

	created := 0
	for _, u := range users {
		ok, err := s.summaries.EnsureWeeklySummary(ctx, u.ID, lastWeek)
		if err != nil {
			s.logger.Warnw("summary generation failed for user", "user_id", u.ID, "error", err)
			continue
		}
		if ok {
			created++
		}
	}
	s.logger.Infow("summary cycle complete", "users", len(users), "created", created)
	return nil
}
