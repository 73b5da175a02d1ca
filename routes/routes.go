package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kutmanm/eatwise/controllers"
	"github.com/kutmanm/eatwise/middlewares"
	"github.com/kutmanm/eatwise/services"
)

type Deps struct {
	JWTSecret   string
	CORSOrigins string

	Users *services.UserService

	Meal         *controllers.MealController
	Symptom      *controllers.SymptomController
	Weight       *controllers.WeightController
	User         *controllers.UserController
	DietPlan     *controllers.DietPlanController
	AI           *controllers.AIController
	Subscription *controllers.SubscriptionController
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(d.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Stripe authenticates webhooks with its signature, not a bearer token
	r.POST("/api/subscription/webhook", d.Subscription.Webhook)

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(d.JWTSecret, d.Users))
	{
		meals := api.Group("/meals")
		{
			meals.POST("", d.Meal.Create)
			meals.GET("", d.Meal.List)
			meals.GET("/search", d.Meal.Search)
			meals.GET("/daily-summary", d.Meal.DailySummary)
			meals.GET("/weekly-progress", d.Meal.WeeklyProgress)
			meals.GET("/calendar", d.Meal.Calendar)
			meals.GET("/:id", d.Meal.Get)
			meals.PUT("/:id", d.Meal.Update)
			meals.DELETE("/:id", d.Meal.Delete)
		}

		symptoms := api.Group("/symptoms")
		{
			symptoms.POST("", d.Symptom.Create)
			symptoms.GET("", d.Symptom.List)
			symptoms.GET("/stats", d.Symptom.Stats)
			symptoms.GET("/correlations", d.Symptom.Correlations)
			symptoms.PUT("/:id", d.Symptom.Update)
			symptoms.DELETE("/:id", d.Symptom.Delete)
		}

		lifestyle := api.Group("/lifestyle")
		{
			lifestyle.POST("", d.Symptom.CreateLifestyle)
			lifestyle.GET("", d.Symptom.ListLifestyle)
			lifestyle.PUT("/:id", d.Symptom.UpdateLifestyle)
			lifestyle.DELETE("/:id", d.Symptom.DeleteLifestyle)
		}

		weight := api.Group("/weight-logs")
		{
			weight.POST("", d.Weight.Create)
			weight.GET("", d.Weight.List)
			weight.GET("/stats", d.Weight.Stats)
			weight.DELETE("/:id", d.Weight.Delete)
		}

		users := api.Group("/users")
		{
			users.GET("/profile", d.User.GetProfile)
			users.PUT("/profile", d.User.UpdateProfile)
			users.GET("/goals", d.User.Goals)
			users.GET("/streak", d.User.Streak)
			users.GET("/weekly-summary", d.User.WeeklySummary)
			users.DELETE("/account", d.User.DeleteAccount)
		}
		api.POST("/onboarding", d.User.Onboard)

		plans := api.Group("/diet-plans")
		{
			plans.POST("/generate", d.DietPlan.Generate)
			plans.GET("/current", d.DietPlan.Current)
			plans.PUT("/meal", d.DietPlan.EditMeal)
			plans.POST("/log-meal", d.DietPlan.LogMeal)
			plans.POST("/feedback", d.DietPlan.SubmitFeedback)
			plans.GET("/feedback/latest", d.DietPlan.LatestFeedback)
		}

		ai := api.Group("/ai")
		{
			ai.POST("/analyze-photo", d.AI.AnalyzePhoto)
			ai.POST("/chat-log", d.AI.ChatLog)
			ai.GET("/meal-feedback/:id", d.AI.MealFeedback)
			ai.GET("/daily-tip", d.AI.DailyTip)
			ai.POST("/coach", d.AI.Coach)
		}

		subscription := api.Group("/subscription")
		{
			subscription.GET("/plans", d.Subscription.Plans)
			subscription.POST("/checkout", d.Subscription.Checkout)
			subscription.POST("/portal", d.Subscription.Portal)
			subscription.GET("/status", d.Subscription.Status)
			subscription.POST("/cancel", d.Subscription.Cancel)
		}
	}

	return r
}
