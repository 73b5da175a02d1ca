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

type UserController struct {
	users     *services.UserService
	summaries *services.SummaryService
}

func NewUserController(users *services.UserService, summaries *services.SummaryService) *UserController {
	return &UserController{users: users, summaries: summaries}
}

type profileRequest struct {
	Age             int      `json:"age" binding:"required,min=13,max=120"`
	Gender          string   `json:"gender" binding:"required"`
	Height          float64  `json:"height" binding:"required,min=50,max=250"`
	Weight          float64  `json:"weight" binding:"required,min=10,max=400"`
	TargetWeight    float64  `json:"target_weight"`
	ActivityLevel   string   `json:"activity_level" binding:"required"`
	Goal            string   `json:"goal" binding:"required"`
	TimeframeDays   int      `json:"timeframe_days"`
	BreakfastTime   string   `json:"breakfast_time"`
	LunchTime       string   `json:"lunch_time"`
	DinnerTime      string   `json:"dinner_time"`
	DietPreferences []string `json:"diet_preferences"`
}

func (uc *UserController) GetProfile(c *gin.Context) {
	profile, err := uc.users.GetProfile(c.Request.Context(), currentUserID(c))
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not set up yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Onboard creates the profile from the signup questionnaire.
func (uc *UserController) Onboard(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := &models.Profile{
		UserID:        currentUserID(c),
		Age:           req.Age,
		Gender:        req.Gender,
		Height:        req.Height,
		Weight:        req.Weight,
		TargetWeight:  req.TargetWeight,
		ActivityLevel: models.ActivityLevel(req.ActivityLevel),
		Goal:          models.GoalType(req.Goal),
		TimeframeDays: req.TimeframeDays,
		BreakfastTime: req.BreakfastTime,
		LunchTime:     req.LunchTime,
		DinnerTime:    req.DinnerTime,
	}
	if len(req.DietPreferences) > 0 {
		profile.DietPreferences = utils.MustJSON(req.DietPreferences)
	}

	created, err := uc.users.CreateProfile(c.Request.Context(), profile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	delete(updates, "id")
	delete(updates, "user_id")

	profile, err := uc.users.UpdateProfile(c.Request.Context(), currentUserID(c), updates)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not set up yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (uc *UserController) Goals(c *gin.Context) {
	goals, err := uc.users.Goals(c.Request.Context(), currentUserID(c))
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not set up yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute goals"})
		return
	}
	c.JSON(http.StatusOK, goals)
}

func (uc *UserController) Streak(c *gin.Context) {
	streak, err := uc.users.Streak(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute streak"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak_days": streak})
}

// WeeklySummary serves the cached weekly summary, computing it on demand.
func (uc *UserController) WeeklySummary(c *gin.Context) {
	weekStart := utils.LastWeekStart(time.Now().UTC())
	if t, ok := queryTime(c, "week_start"); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start"})
		return
	} else if t != nil {
		weekStart = *t
	}
	summary, err := uc.summaries.GetWeeklySummary(c.Request.Context(), currentUserID(c), weekStart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build weekly summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (uc *UserController) DeleteAccount(c *gin.Context) {
	if err := uc.users.DeleteAccount(c.Request.Context(), currentUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
