package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kutmanm/eatwise/models"
	"github.com/kutmanm/eatwise/services"
	"github.com/kutmanm/eatwise/utils"
)

type AIController struct {
	ai       *services.AIService
	meals    *services.MealService
	users    *services.UserService
	symptoms *services.SymptomService
	photos   *utils.PhotoStore
}

func NewAIController(ai *services.AIService, meals *services.MealService, users *services.UserService, symptoms *services.SymptomService, photos *utils.PhotoStore) *AIController {
	return &AIController{ai: ai, meals: meals, users: users, symptoms: symptoms, photos: photos}
}

func (ac *AIController) checkAILimit(c *gin.Context) bool {
	user, err := ac.users.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return false
	}
	if err := ac.users.CheckAILimit(c.Request.Context(), user); err != nil {
		if err == services.ErrFreeLimitReached {
			c.JSON(http.StatusForbidden, gin.H{"error": "Daily AI analysis limit reached. Upgrade for unlimited analysis."})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	return true
}

type photoRequest struct {
	Image    string `json:"image" binding:"required"` // data URI with base64 payload
	MealType string `json:"meal_type"`
	Log      bool   `json:"log"` // when true, the analyzed meal is saved
}

// AnalyzePhoto runs the vision model over a meal photo and optionally logs
// the result as a meal.
func (ac *AIController) AnalyzePhoto(c *gin.Context) {
	var req photoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !strings.HasPrefix(req.Image, "data:") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be a base64 data URI"})
		return
	}
	if !ac.checkAILimit(c) {
		return
	}

	analysis, err := ac.ai.AnalyzeMealPhoto(c.Request.Context(), req.Image)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Photo analysis failed: %v", err)})
		return
	}

	if !req.Log {
		c.JSON(http.StatusOK, gin.H{"analysis": analysis})
		return
	}

	userID := currentUserID(c)
	imageURL := ""
	if ac.photos != nil {
		if url, err := ac.photos.UploadMealPhoto(c.Request.Context(), userID.String(), req.Image); err == nil {
			imageURL = url
		}
		// upload failure is not fatal; the meal is logged without a photo
	}

	mealType := req.MealType
	if mealType == "" {
		mealType = analysis.MealType
	}
	meal := &models.Meal{
		UserID:      userID,
		Description: analysis.Description,
		ImageURL:    imageURL,
		Calories:    analysis.Calories,
		Protein:     analysis.Protein,
		Carbs:       analysis.Carbs,
		Fat:         analysis.Fat,
		Fiber:       analysis.Fiber,
		Sodium:      analysis.Sodium,
		MealType:    mealType,
		LoggedAt:    time.Now().UTC(),
	}
	if len(analysis.Ingredients) > 0 {
		meal.Ingredients = utils.MustJSON(analysis.Ingredients)
	}
	created, err := ac.meals.Create(c.Request.Context(), meal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log analyzed meal"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"analysis": analysis, "meal": created})
}

type chatLogRequest struct {
	Text     string `json:"text" binding:"required"`
	MealType string `json:"meal_type"`
	Log      bool   `json:"log"`
}

// ChatLog parses a free-text meal description into nutrition estimates.
func (ac *AIController) ChatLog(c *gin.Context) {
	var req chatLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ac.checkAILimit(c) {
		return
	}

	analysis, err := ac.ai.ParseMealText(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Meal parsing failed: %v", err)})
		return
	}
	if !req.Log {
		c.JSON(http.StatusOK, gin.H{"analysis": analysis})
		return
	}

	mealType := req.MealType
	if mealType == "" {
		mealType = analysis.MealType
	}
	meal := &models.Meal{
		UserID:      currentUserID(c),
		Description: analysis.Description,
		Calories:    analysis.Calories,
		Protein:     analysis.Protein,
		Carbs:       analysis.Carbs,
		Fat:         analysis.Fat,
		Fiber:       analysis.Fiber,
		Sodium:      analysis.Sodium,
		MealType:    mealType,
		LoggedAt:    time.Now().UTC(),
	}
	if len(analysis.Ingredients) > 0 {
		meal.Ingredients = utils.MustJSON(analysis.Ingredients)
	}
	created, err := ac.meals.Create(c.Request.Context(), meal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log meal"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"analysis": analysis, "meal": created})
}

// MealFeedback comments on an already-logged meal. Always succeeds; model
// trouble falls back to a canned line inside the service.
func (ac *AIController) MealFeedback(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal id"})
		return
	}
	userID := currentUserID(c)
	meal, err := ac.meals.Get(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return
	}

	var goals *services.UserGoals
	if g, err := ac.users.Goals(c.Request.Context(), userID); err == nil {
		goals = g
	}
	feedback := ac.ai.MealFeedback(c.Request.Context(), meal.Description, meal.Calories, goals)
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

func (ac *AIController) DailyTip(c *gin.Context) {
	goal := "eat a balanced diet"
	if profile, err := ac.users.GetProfile(c.Request.Context(), currentUserID(c)); err == nil {
		goal = string(profile.Goal)
	}
	tip := ac.ai.DailyTip(c.Request.Context(), goal)
	c.JSON(http.StatusOK, gin.H{"tip": tip})
}

type coachRequest struct {
	Question string `json:"question" binding:"required"`
}

// Coach answers a free-form question grounded in the user's recent logs.
func (ac *AIController) Coach(c *gin.Context) {
	var req coachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ac.checkAILimit(c) {
		return
	}
	userID := currentUserID(c)

	var summary strings.Builder
	if daily, err := ac.meals.DailySummary(c.Request.Context(), userID, time.Now().UTC()); err == nil {
		fmt.Fprintf(&summary, "Today: %d meals, %.0f kcal, %.0fg protein.\n",
			daily.MealCount, daily.Calories, daily.Protein)
	}
	if patterns, err := ac.meals.NutrientPatterns(c.Request.Context(), userID, 7); err == nil && patterns.TotalMeals > 0 {
		fmt.Fprintf(&summary, "Past week: %d meals averaging %.0f kcal.\n",
			patterns.TotalMeals, patterns.AvgCalories)
	}
	if stats, err := ac.symptoms.SummaryStats(c.Request.Context(), userID, 7); err == nil && stats.TotalSymptoms > 0 {
		fmt.Fprintf(&summary, "Symptoms this week: %d logged, most common %s, trend %s.\n",
			stats.TotalSymptoms, stats.MostCommonSymptom, stats.Trend)
	}

	answer, err := ac.ai.CoachAnswer(c.Request.Context(), req.Question, summary.String())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Coach is unavailable: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
