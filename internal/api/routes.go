package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-tracker/internal/service"
)

// Services are the use cases the HTTP surface exposes.
type Services struct {
	Auth      service.AuthService
	Exercises service.ExerciseService
	GymLogs   service.GymLogService
	Plans     service.PlanService
}

// NewRouter builds the gin engine with recovery, request logging and every route.
func NewRouter(logger *slog.Logger, services Services) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))
	SetupRoutes(router, services)
	return router, nil
}

func SetupRoutes(router *gin.Engine, services Services) {
	authHandler := NewAuthHandler(services.Auth)
	exerciseHandler := NewExerciseHandler(services.Exercises)
	gymLogHandler := NewGymLogHandler(services.GymLogs)
	planHandler := NewPlanHandler(services.Plans)

	authMiddleware := AuthMiddleware(services.Auth)
	optionalAuth := OptionalAuth(services.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		me := apiV1.Group("/me", authMiddleware)
		{
			me.GET("", authHandler.GetMe)
			me.PATCH("", authHandler.UpdateMe)
			me.DELETE("", authHandler.DeleteMe)
		}

		// --- Exercise Catalog ---
		// Reads are public, writes need an account.
		exerciseGroup := apiV1.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.POST("", authMiddleware, exerciseHandler.CreateExercise)
			exerciseGroup.PATCH("/:id", authMiddleware, exerciseHandler.UpdateExercise)
			exerciseGroup.POST("/:id/media/upload-url", authMiddleware, exerciseHandler.RequestMediaUpload)
			exerciseGroup.PUT("/:id/media", authMiddleware, exerciseHandler.ConfirmMediaUpload)
		}

		// --- Gym Log ---
		logGroup := apiV1.Group("/logs", authMiddleware)
		{
			logGroup.GET("", gymLogHandler.ListLogs)
			logGroup.POST("", gymLogHandler.CreateLog)
			logGroup.GET("/:id", gymLogHandler.GetLog)
			logGroup.PATCH("/:id", gymLogHandler.UpdateLog)
			logGroup.DELETE("/:id", gymLogHandler.DeleteLog)
		}

		// --- Workout Plans ---
		// Anonymous callers may read public plans; ownership is checked by the service.
		planGroup := apiV1.Group("/plans")
		{
			planGroup.GET("", optionalAuth, planHandler.ListPlans)
			planGroup.GET("/:id", optionalAuth, planHandler.GetPlan)
			planGroup.POST("", authMiddleware, planHandler.CreatePlan)
			planGroup.PATCH("/:id", authMiddleware, planHandler.UpdatePlan)
			planGroup.DELETE("/:id", authMiddleware, planHandler.DeletePlan)
			planGroup.POST("/:id/duplicate", authMiddleware, planHandler.DuplicatePlan)
			planGroup.POST("/:id/exercises", authMiddleware, planHandler.AddPlanExercise)
			planGroup.PATCH("/:id/exercises/:itemId", authMiddleware, planHandler.UpdatePlanExercise)
			planGroup.DELETE("/:id/exercises/:itemId", authMiddleware, planHandler.RemovePlanExercise)
		}
	}
}
