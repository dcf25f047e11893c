package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BIJODEV/BibleQZ/internal/middleware"
	"github.com/BIJODEV/BibleQZ/internal/services"
	"github.com/BIJODEV/BibleQZ/internal/utils"
	"github.com/BIJODEV/BibleQZ/internal/validator"
)

type HandlerManager struct {
	quizHandler   *QuizHandler
	resultHandler *ResultHandler
	liveHandler   *LiveHandler
	manager       services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler: NewQuizHandler(serviceManager.Quiz(), v, logger),
		resultHandler: NewResultHandler(
			serviceManager.Submission(),
			serviceManager.Results(),
			serviceManager.ImportExport(),
			logger,
		),
		liveHandler: NewLiveHandler(serviceManager.Results(), logger),
		manager:     serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	{
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", middleware.Auth(false), hm.quizHandler.CreateQuiz)
			quizzes.POST("/import", hm.quizHandler.ImportQuiz)
			quizzes.GET("/history", middleware.Auth(true), hm.quizHandler.GetHistory)

			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.POST("/:id/publish", middleware.Auth(false), hm.quizHandler.PublishQuiz)
			quizzes.GET("/:id/share-link", hm.quizHandler.GetShareLink)

			quizzes.POST("/:id/sessions", hm.resultHandler.StartSession)
			quizzes.POST("/:id/results", hm.resultHandler.SubmitResult)
			quizzes.GET("/:id/results", hm.resultHandler.ListResults)
			quizzes.GET("/:id/dashboard", hm.resultHandler.GetDashboard)
			quizzes.GET("/:id/results/live", hm.liveHandler.StreamDashboard)
			quizzes.GET("/:id/results/export", hm.resultHandler.ExportResults)

			quizzes.GET("/:id/results/local", hm.resultHandler.GetLocalResults)
			quizzes.DELETE("/:id/results/local", hm.resultHandler.ClearLocalResults)
		}

		results := v1.Group("/results")
		{
			results.POST("/import", hm.resultHandler.ImportResult)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.manager.Health(c.Request.Context()); err != nil {
		c.JSON(503, gin.H{"status": "degraded", "service": "bibleqz-service"})
		return
	}
	c.JSON(200, gin.H{"status": "healthy", "service": "bibleqz-service"})
}
