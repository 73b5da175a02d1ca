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

type MealController struct {
	meals *services.MealService
	users *services.UserService
}

func NewMealController(meals *services.MealService, users *services.UserService) *MealController {
	return &MealController{meals: meals, users: users}
}

type mealRequest struct {
	Description       string    `json:"description" binding:"required"`
	ImageURL          string    `json:"image_url"`
	Calories          float64   `json:"calories"`
	Protein           float64   `json:"protein"`
	Carbs             float64   `json:"carbs"`
	Fat               float64   `json:"fat"`
	Fiber             float64   `json:"fiber"`
	Water             float64   `json:"water"`
	Sodium            float64   `json:"sodium"`
	Potassium         float64   `json:"potassium"`
	MealType          string    `json:"meal_type"`
	PreparationMethod string    `json:"preparation_method"`
	Ingredients       []string  `json:"ingredients"`
	DietaryTags       []string  `json:"dietary_tags"`
	LoggedAt          time.Time `json:"logged_at"`
}

func (mc *MealController) Create(c *gin.Context) {
	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := currentUserID(c)

	user, err := mc.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	if err := mc.users.CheckMealLimit(c.Request.Context(), user); err != nil {
		if err == services.ErrFreeLimitReached {
			c.JSON(http.StatusForbidden, gin.H{"error": "Daily meal log limit reached. Upgrade for unlimited logging."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	meal := &models.Meal{
		UserID:            userID,
		Description:       req.Description,
		ImageURL:          req.ImageURL,
		Calories:          req.Calories,
		Protein:           req.Protein,
		Carbs:             req.Carbs,
		Fat:               req.Fat,
		Fiber:             req.Fiber,
		Water:             req.Water,
		Sodium:            req.Sodium,
		Potassium:         req.Potassium,
		MealType:          req.MealType,
		PreparationMethod: req.PreparationMethod,
		LoggedAt:          req.LoggedAt,
	}
	if len(req.Ingredients) > 0 {
		meal.Ingredients = utils.MustJSON(req.Ingredients)
	}
	if len(req.DietaryTags) > 0 {
		meal.DietaryTags = utils.MustJSON(req.DietaryTags)
	}

	created, err := mc.meals.Create(c.Request.Context(), meal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meal"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (mc *MealController) List(c *gin.Context) {
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
	meals, err := mc.meals.List(c.Request.Context(), currentUserID(c), services.MealFilter{
		From:  from,
		To:    to,
		Skip:  queryInt(c, "skip", 0),
		Limit: queryInt(c, "limit", 100),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list meals"})
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (mc *MealController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal id"})
		return
	}
	meal, err := mc.meals.Get(c.Request.Context(), currentUserID(c), id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load meal"})
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (mc *MealController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal id"})
		return
	}
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	delete(updates, "id")
	delete(updates, "user_id")

	meal, err := mc.meals.Update(c.Request.Context(), currentUserID(c), id, updates)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meal"})
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (mc *MealController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal id"})
		return
	}
	err := mc.meals.Delete(c.Request.Context(), currentUserID(c), id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete meal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal deleted"})
}

func (mc *MealController) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}
	meals, err := mc.meals.Search(c.Request.Context(), currentUserID(c), query, queryInt(c, "limit", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (mc *MealController) DailySummary(c *gin.Context) {
	day := time.Now().UTC()
	if t, ok := queryTime(c, "date"); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
		return
	} else if t != nil {
		day = *t
	}
	summary, err := mc.meals.DailySummary(c.Request.Context(), currentUserID(c), day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build daily summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (mc *MealController) WeeklyProgress(c *gin.Context) {
	weekStart := utils.WeekStart(time.Now().UTC())
	if t, ok := queryTime(c, "week_start"); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week_start"})
		return
	} else if t != nil {
		weekStart = utils.WeekStart(*t)
	}
	progress, err := mc.meals.WeeklyProgress(c.Request.Context(), currentUserID(c), weekStart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build weekly progress"})
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (mc *MealController) Calendar(c *gin.Context) {
	now := time.Now().UTC()
	year := queryInt(c, "year", now.Year())
	month := queryInt(c, "month", int(now.Month()))
	if month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}
	data, err := mc.meals.CalendarData(c.Request.Context(), currentUserID(c), year, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build calendar"})
		return
	}
	c.JSON(http.StatusOK, data)
}
