package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/utils"
)

type SymptomService struct {
	db     *gorm.DB
	cipher *utils.Cipher
}

func NewSymptomService(db *gorm.DB, cipher *utils.Cipher) *SymptomService {
	return &SymptomService{db: db, cipher: cipher}
}

// CreateSymptomLog encrypts notes before the row is written; everything else
// is stored as given.
func (s *SymptomService) CreateSymptomLog(ctx context.Context, log *models.SymptomLog, notes string) (*models.SymptomLog, error) {
	if log.SymptomDomain == "" {
		log.SymptomDomain = models.DomainForSymptom(log.SymptomType)
	}
	if log.LoggedAt.IsZero() {
		log.LoggedAt = time.Now().UTC()
	}
	enc, err := s.cipher.Encrypt(notes)
	if err != nil {
		return nil, err
	}
	log.Notes = enc
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

type SymptomFilter struct {
	From   *time.Time
	To     *time.Time
	Domain string
	Skip   int
	Limit  int
}

func (s *SymptomService) ListSymptomLogs(ctx context.Context, userID uuid.UUID, f SymptomFilter) ([]models.SymptomLog, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.From != nil {
		q = q.Where("occurred_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("occurred_at <= ?", *f.To)
	}
	if f.Domain != "" {
		q = q.Where("symptom_domain = ?", f.Domain)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	var logs []models.SymptomLog
	err := q.Order("occurred_at DESC").Offset(f.Skip).Limit(limit).Find(&logs).Error
	return logs, err
}

func (s *SymptomService) GetSymptomLog(ctx context.Context, userID uuid.UUID, id uint) (*models.SymptomLog, error) {
	var log models.SymptomLog
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *SymptomService) UpdateSymptomLog(ctx context.Context, userID uuid.UUID, id uint, updates map[string]any, notes *string) (*models.SymptomLog, error) {
	log, err := s.GetSymptomLog(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if notes != nil {
		enc, err := s.cipher.Encrypt(*notes)
		if err != nil {
			return nil, err
		}
		updates["notes"] = enc
	}
	if t, ok := updates["symptom_type"].(string); ok {
		updates["symptom_domain"] = models.DomainForSymptom(t)
	}
	if err := s.db.WithContext(ctx).Model(log).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetSymptomLog(ctx, userID, id)
}

func (s *SymptomService) DeleteSymptomLog(ctx context.Context, userID uuid.UUID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.SymptomLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecryptNotes is the read-side of the at-rest contract.
func (s *SymptomService) DecryptNotes(ciphertext string) string {
	return s.cipher.Decrypt(ciphertext)
}

// ---------- Lifestyle logs ----------

func (s *SymptomService) CreateLifestyleLog(ctx context.Context, log *models.LifestyleLog, notes string) (*models.LifestyleLog, error) {
	if log.LoggedAt.IsZero() {
		log.LoggedAt = time.Now().UTC()
	}
	if log.Date.IsZero() {
		log.Date = utils.DayStart(time.Now())
	}
	enc, err := s.cipher.Encrypt(notes)
	if err != nil {
		return nil, err
	}
	log.Notes = enc
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

func (s *SymptomService) ListLifestyleLogs(ctx context.Context, userID uuid.UUID, from, to *time.Time, skip, limit int) ([]models.LifestyleLog, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}
	if limit <= 0 {
		limit = 100
	}
	var logs []models.LifestyleLog
	err := q.Order("date DESC").Offset(skip).Limit(limit).Find(&logs).Error
	return logs, err
}

func (s *SymptomService) GetLifestyleLog(ctx context.Context, userID uuid.UUID, id uint) (*models.LifestyleLog, error) {
	var log models.LifestyleLog
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *SymptomService) UpdateLifestyleLog(ctx context.Context, userID uuid.UUID, id uint, updates map[string]any, notes *string) (*models.LifestyleLog, error) {
	log, err := s.GetLifestyleLog(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if notes != nil {
		enc, err := s.cipher.Encrypt(*notes)
		if err != nil {
			return nil, err
		}
		updates["notes"] = enc
	}
	if err := s.db.WithContext(ctx).Model(log).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetLifestyleLog(ctx, userID, id)
}

func (s *SymptomService) DeleteLifestyleLog(ctx context.Context, userID uuid.UUID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.LifestyleLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ---------- Summary stats ----------

type SymptomSummaryStats struct {
	TotalSymptoms      int            `json:"total_symptoms"`
	AvgSeverity        float64        `json:"avg_severity"`
	MostCommonSymptom  string         `json:"most_common_symptom,omitempty"`
	MostAffectedDomain string         `json:"most_affected_domain,omitempty"`
	Trend              string         `json:"trend"`
	SymptomCounts      map[string]int `json:"symptom_counts,omitempty"`
	DomainCounts       map[string]int `json:"domain_counts,omitempty"`
}

// SummaryStats aggregates the last rangeDays of symptom logs. Trend compares
// the newer half against the older half with a ±0.5 band; under 6 logs there
// is not enough signal and the trend is "insufficient_data".
func (s *SymptomService) SummaryStats(ctx context.Context, userID uuid.UUID, rangeDays int) (*SymptomSummaryStats, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -rangeDays)
	logs, err := s.ListSymptomLogs(ctx, userID, SymptomFilter{From: &start, To: &end, Limit: 1000})
	if err != nil {
		return nil, err
	}

	out := &SymptomSummaryStats{Trend: "no_data"}
	if len(logs) == 0 {
		return out, nil
	}

	out.TotalSymptoms = len(logs)
	out.SymptomCounts = map[string]int{}
	out.DomainCounts = map[string]int{}

	var severitySum float64
	for _, l := range logs {
		severitySum += float64(l.Severity)
		out.SymptomCounts[l.SymptomType]++
		out.DomainCounts[string(l.SymptomDomain)]++
	}
	out.AvgSeverity = round1(severitySum / float64(len(logs)))
	out.MostCommonSymptom = maxKey(out.SymptomCounts)
	out.MostAffectedDomain = maxKey(out.DomainCounts)

	// logs are newest-first; the trend compares the newer half of the
	// logs against the older half
	if len(logs) >= 6 {
		half := len(logs) / 2
		recent := meanSeverity(logs[:half])
		older := meanSeverity(logs[half:])
		switch {
		case recent > older+0.5:
			out.Trend = "worsening"
		case recent < older-0.5:
			out.Trend = "improving"
		default:
			out.Trend = "stable"
		}
	} else {
		out.Trend = "insufficient_data"
	}

	return out, nil
}

func meanSeverity(logs []models.SymptomLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	var sum float64
	for _, l := range logs {
		sum += float64(l.Severity)
	}
	return sum / float64(len(logs))
}

func maxKey(counts map[string]int) string {
	best, bestN := "", -1
	for k, n := range counts {
		if n > bestN {
			best, bestN = k, n
		}
	}
	return best
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
