package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SymptomDomain string

const (
	DomainDigestion SymptomDomain = "digestion"
	DomainSkin      SymptomDomain = "skin"
	DomainFatigue   SymptomDomain = "fatigue"
	DomainMood      SymptomDomain = "mood"
	DomainSleep     SymptomDomain = "sleep"
	DomainPhysical  SymptomDomain = "physical"
	DomainOther     SymptomDomain = "other"
)

// symptomDomains maps each known symptom type to its domain. Unknown types
// fall back to DomainOther.
var symptomDomains = map[string]SymptomDomain{
	"bloating":     DomainDigestion,
	"stomach_pain": DomainDigestion,
	"nausea":       DomainDigestion,
	"heartburn":    DomainDigestion,
	"diarrhea":     DomainDigestion,
	"constipation": DomainDigestion,
	"gas":          DomainDigestion,
	"indigestion":  DomainDigestion,

	"acne":         DomainSkin,
	"eczema":       DomainSkin,
	"rash":         DomainSkin,
	"itching":      DomainSkin,
	"dryness":      DomainSkin,
	"inflammation": DomainSkin,

	"fatigue":      DomainFatigue,
	"low_energy":   DomainFatigue,
	"brain_fog":    DomainFatigue,
	"drowsiness":   DomainFatigue,
	"restlessness": DomainFatigue,

	"anxiety":      DomainMood,
	"irritability": DomainMood,
	"mood_swings":  DomainMood,
	"depression":   DomainMood,

	"headache":             DomainPhysical,
	"joint_pain":           DomainPhysical,
	"muscle_pain":          DomainPhysical,
	"inflammation_general": DomainPhysical,

	"insomnia":           DomainSleep,
	"poor_sleep_quality": DomainSleep,
	"sleep_disturbances": DomainSleep,
}

func DomainForSymptom(symptomType string) SymptomDomain {
	if d, ok := symptomDomains[symptomType]; ok {
		return d
	}
	return DomainOther
}

func ValidSymptomType(v string) bool {
	if v == "other" {
		return true
	}
	_, ok := symptomDomains[v]
	return ok
}

// SymptomLog records one symptom occurrence. Notes hold ciphertext; callers go
// through the symptom service, which encrypts on write and decrypts on read.
type SymptomLog struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index:ix_symptom_logs_user_occurred;not null" json:"user_id"`

	SymptomType   string        `gorm:"index;not null" json:"symptom_type"`
	SymptomDomain SymptomDomain `gorm:"size:16;index:ix_symptom_logs_domain_severity;not null" json:"symptom_domain"`
	Severity      int           `gorm:"index:ix_symptom_logs_domain_severity;not null" json:"severity"` // 1-10

	OccurredAt      time.Time `gorm:"index:ix_symptom_logs_user_occurred;not null" json:"occurred_at"`
	LoggedAt        time.Time `gorm:"not null" json:"logged_at"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`

	Notes    string         `gorm:"type:text" json:"-"` // encrypted at rest
	Triggers datatypes.JSON `json:"triggers"`
}

// LifestyleLog is a daily lifestyle snapshot; meaningfully one per calendar
// day, though not enforced by the schema.
type LifestyleLog struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index:ix_lifestyle_logs_user_date;not null" json:"user_id"`
	Date   time.Time `gorm:"index:ix_lifestyle_logs_user_date;not null" json:"date"`

	SleepHours      float64 `json:"sleep_hours"`
	SleepQuality    int     `json:"sleep_quality"` // 1-10
	StressLevel     int     `json:"stress_level"`  // 1-10
	ExerciseMinutes int     `json:"exercise_minutes"`
	ExerciseType    string  `json:"exercise_type"`
	WaterIntake     float64 `json:"water_intake"` // liters
	AlcoholServings int     `json:"alcohol_servings"`

	Medications datatypes.JSON `json:"medications"`
	Supplements datatypes.JSON `json:"supplements"`
	Notes       string         `gorm:"type:text" json:"-"` // encrypted at rest

	LoggedAt time.Time `gorm:"not null" json:"logged_at"`
}
