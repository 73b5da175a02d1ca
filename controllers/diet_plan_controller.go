package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/services"
)

type DietPlanController struct {
	plans    *services.DietPlanService
	feedback *services.FeedbackService
}

func NewDietPlanController(plans *services.DietPlanService, feedback *services.FeedbackService) *DietPlanController {
	return &DietPlanController{plans: plans, feedback: feedback}
}

// Generate builds next week's plan. A model failure still returns a plan;
// the fallback flag tells the client which kind it got.
func (dc *DietPlanController) Generate(c *gin.Context) {
	plan, err := dc.plans.GeneratePlan(c.Request.Context(), currentUserID(c))
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Set up your profile before generating a plan"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate plan"})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (dc *DietPlanController) Current(c *gin.Context) {
	plan, err := dc.plans.CurrentPlan(c.Request.Context(), currentUserID(c))
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "No plan yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plan"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

type editMealRequest struct {
	Day  string               `json:"day" binding:"required"`
	Slot string               `json:"slot" binding:"required"`
	Meal services.PlannedMeal `json:"meal" binding:"required"`
}

func (dc *DietPlanController) EditMeal(c *gin.Context) {
	var req editMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := dc.plans.EditMeal(c.Request.Context(), currentUserID(c), req.Day, req.Slot, req.Meal)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "No plan yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plan)
}

type logFromPlanRequest struct {
	Day  string `json:"day" binding:"required"`
	Slot string `json:"slot" binding:"required"`
}

func (dc *DietPlanController) LogMeal(c *gin.Context) {
	var req logFromPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := dc.plans.LogMealFromPlan(c.Request.Context(), currentUserID(c), req.Day, req.Slot)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "No plan yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (dc *DietPlanController) SubmitFeedback(c *gin.Context) {
	var input services.WeeklyFeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := dc.feedback.SubmitWeeklyFeedback(c.Request.Context(), currentUserID(c), &input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feedback"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (dc *DietPlanController) LatestFeedback(c *gin.Context) {
	fb, err := dc.feedback.LatestFeedback(c.Request.Context(), currentUserID(c))
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "No feedback yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load feedback"})
		return
	}
	c.JSON(http.StatusOK, fb)
}
