package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/services"
	"github.com/kutmanm/eatwise/utils"
)

type SymptomController struct {
	symptoms     *services.SymptomService
	correlations *services.CorrelationService
}

func NewSymptomController(symptoms *services.SymptomService, correlations *services.CorrelationService) *SymptomController {
	return &SymptomController{symptoms: symptoms, correlations: correlations}
}

type symptomRequest struct {
	SymptomType     string    `json:"symptom_type" binding:"required"`
	Severity        int       `json:"severity" binding:"required,min=1,max=10"`
	OccurredAt      time.Time `json:"occurred_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes"`
	Triggers        []string  `json:"triggers"`
}

type symptomResponse struct {
	models.SymptomLog
	Notes string `json:"notes,omitempty"`
}

func (sc *SymptomController) respond(log *models.SymptomLog) symptomResponse {
	return symptomResponse{SymptomLog: *log, Notes: sc.symptoms.DecryptNotes(log.Notes)}
}

func (sc *SymptomController) Create(c *gin.Context) {
	var req symptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidSymptomType(req.SymptomType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown symptom type"})
		return
	}

	log := &models.SymptomLog{
		UserID:          currentUserID(c),
		SymptomType:     req.SymptomType,
		Severity:        req.Severity,
		OccurredAt:      req.OccurredAt,
		DurationMinutes: req.DurationMinutes,
	}
	if len(req.Triggers) > 0 {
		log.Triggers = utils.MustJSON(req.Triggers)
	}

	created, err := sc.symptoms.CreateSymptomLog(c.Request.Context(), log, req.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create symptom log"})
		return
	}
	c.JSON(http.StatusCreated, sc.respond(created))
}

func (sc *SymptomController) List(c *gin.Context) {
	from, ok := queryTime(c, "from")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
		return
	}
	logs, err := sc.symptoms.ListSymptomLogs(c.Request.Context(), currentUserID(c), services.SymptomFilter{
		From:   from,
		To:     to,
		Domain: c.Query("domain"),
		Skip:   queryInt(c, "skip", 0),
		Limit:  queryInt(c, "limit", 100),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list symptom logs"})
		return
	}
	out := make([]symptomResponse, 0, len(logs))
	for i := range logs {
		out = append(out, sc.respond(&logs[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (sc *SymptomController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid symptom log id"})
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var notes *string
	if v, ok := body["notes"].(string); ok {
		notes = &v
	}
	delete(body, "notes")
	delete(body, "id")
	delete(body, "user_id")
	if t, ok := body["symptom_type"].(string); ok && !models.ValidSymptomType(t) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown symptom type"})
		return
	}

	updated, err := sc.symptoms.UpdateSymptomLog(c.Request.Context(), currentUserID(c), id, body, notes)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Symptom log not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update symptom log"})
		return
	}
	c.JSON(http.StatusOK, sc.respond(updated))
}

func (sc *SymptomController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid symptom log id"})
		return
	}
	err := sc.symptoms.DeleteSymptomLog(c.Request.Context(), currentUserID(c), id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Symptom log not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete symptom log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Symptom log deleted"})
}

func (sc *SymptomController) Stats(c *gin.Context) {
	days := queryInt(c, "days", 30)
	if days < 1 || days > 365 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
		return
	}
	stats, err := sc.symptoms.SummaryStats(c.Request.Context(), currentUserID(c), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build symptom stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (sc *SymptomController) Correlations(c *gin.Context) {
	days := queryInt(c, "days", 30)
	if days < 1 || days > 365 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
		return
	}
	report, err := sc.correlations.Analyze(c.Request.Context(), currentUserID(c), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze correlations"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ---------- Lifestyle logs ----------

type lifestyleRequest struct {
	Date            time.Time `json:"date"`
	SleepHours      float64   `json:"sleep_hours"`
	SleepQuality    int       `json:"sleep_quality"`
	StressLevel     int       `json:"stress_level"`
	ExerciseMinutes int       `json:"exercise_minutes"`
	ExerciseType    string    `json:"exercise_type"`
	WaterIntake     float64   `json:"water_intake"`
	AlcoholServings int       `json:"alcohol_servings"`
	Medications     []string  `json:"medications"`
	Supplements     []string  `json:"supplements"`
	Notes           string    `json:"notes"`
}

type lifestyleResponse struct {
	models.LifestyleLog
	Notes string `json:"notes,omitempty"`
}

func (sc *SymptomController) respondLifestyle(log *models.LifestyleLog) lifestyleResponse {
	return lifestyleResponse{LifestyleLog: *log, Notes: sc.symptoms.DecryptNotes(log.Notes)}
}

func (sc *SymptomController) CreateLifestyle(c *gin.Context) {
	var req lifestyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log := &models.LifestyleLog{
		UserID:          currentUserID(c),
		Date:            req.Date,
		SleepHours:      req.SleepHours,
		SleepQuality:    req.SleepQuality,
		StressLevel:     req.StressLevel,
		ExerciseMinutes: req.ExerciseMinutes,
		ExerciseType:    req.ExerciseType,
		WaterIntake:     req.WaterIntake,
		AlcoholServings: req.AlcoholServings,
	}
	if len(req.Medications) > 0 {
		log.Medications = utils.MustJSON(req.Medications)
	}
	if len(req.Supplements) > 0 {
		log.Supplements = utils.MustJSON(req.Supplements)
	}

	created, err := sc.symptoms.CreateLifestyleLog(c.Request.Context(), log, req.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lifestyle log"})
		return
	}
	c.JSON(http.StatusCreated, sc.respondLifestyle(created))
}

func (sc *SymptomController) ListLifestyle(c *gin.Context) {
	from, ok := queryTime(c, "from")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
		return
	}
	logs, err := sc.symptoms.ListLifestyleLogs(c.Request.Context(), currentUserID(c), from, to,
		queryInt(c, "skip", 0), queryInt(c, "limit", 100))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list lifestyle logs"})
		return
	}
	out := make([]lifestyleResponse, 0, len(logs))
	for i := range logs {
		out = append(out, sc.respondLifestyle(&logs[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (sc *SymptomController) UpdateLifestyle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lifestyle log id"})
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var notes *string
	if v, ok := body["notes"].(string); ok {
		notes = &v
	}
	delete(body, "notes")
	delete(body, "id")
	delete(body, "user_id")

	updated, err := sc.symptoms.UpdateLifestyleLog(c.Request.Context(), currentUserID(c), id, body, notes)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lifestyle log not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lifestyle log"})
		return
	}
	c.JSON(http.StatusOK, sc.respondLifestyle(updated))
}

func (sc *SymptomController) DeleteLifestyle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lifestyle log id"})
		return
	}
	err := sc.symptoms.DeleteLifestyleLog(c.Request.Context(), currentUserID(c), id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lifestyle log not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lifestyle log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lifestyle log deleted"})
}
