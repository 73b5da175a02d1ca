package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/kutmanm/eatwise/config"
	"github.com/kutmanm/eatwise/controllers"
	"github.com/kutmanm/eatwise/routes"
	"github.com/kutmanm/eatwise/services"
	"github.com/kutmanm/eatwise/utils"
)

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalw("configuration error", "error", err)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logger.Fatalw("database connection failed", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cipher := utils.NewCipher(cfg.AtRestEncryptionKey)

	var photos *utils.PhotoStore
	if cfg.S3Bucket != "" {
		photos, err = utils.NewPhotoStore(ctx, cfg.S3Region, cfg.S3Bucket, cfg.CloudFrontURL)
		if err != nil {
			logger.Warnw("photo uploads disabled", "error", err)
			photos = nil
		}
	}

	mealSvc := services.NewMealService(db)
	symptomSvc := services.NewSymptomService(db, cipher)
	correlationSvc := services.NewCorrelationService(db, mealSvc)
	aiSvc := services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	planSvc := services.NewDietPlanService(db, mealSvc, symptomSvc, aiSvc)
	feedbackSvc := services.NewFeedbackService(db, aiSvc)
	summarySvc := services.NewSummaryService(db, mealSvc, symptomSvc)
	userSvc := services.NewUserService(db, mealSvc)
	subscriptionSvc := services.NewSubscriptionService(db,
		cfg.StripeSecretKey, cfg.StripeWebhookSecret,
		cfg.StripePriceMonthly, cfg.StripePriceYearly,
		cfg.SuccessURL, cfg.CancelURL, logger)

	scheduler := services.NewWeeklySummaryScheduler(db, summarySvc, cfg.SummarySchedulerHour, logger)
	go scheduler.Run(ctx)

	router := routes.SetupRouter(routes.Deps{
		JWTSecret:    cfg.JWTSecret,
		CORSOrigins:  cfg.CORSOrigins,
		Users:        userSvc,
		Meal:         controllers.NewMealController(mealSvc, userSvc),
		Symptom:      controllers.NewSymptomController(symptomSvc, correlationSvc),
		Weight:       controllers.NewWeightController(userSvc),
		User:         controllers.NewUserController(userSvc, summarySvc),
		DietPlan:     controllers.NewDietPlanController(planSvc, feedbackSvc),
		AI:           controllers.NewAIController(aiSvc, mealSvc, userSvc, symptomSvc, photos),
		Subscription: controllers.NewSubscriptionController(subscriptionSvc),
	})

	logger.Infow("server starting", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatalw("server exited", "error", err)
	}
}
