package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/trip-eval-backend-go/internal/config"
	"github.com/jengzang/trip-eval-backend-go/internal/handler"
	"github.com/jengzang/trip-eval-backend-go/internal/middleware"
)

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Evaluation *handler.EvaluationHandler
	Entry      *handler.EntryHandler
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger("/health"))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Trip evaluation API is running",
		})
	})

	auth := middleware.Auth(cfg.JWTSecret)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit, time.Minute))
	{
		// 手机数据接口
		datastreams := api.Group("/datastreams")
		{
			datastreams.POST("/find_entries/timestamp", h.Entry.FindEntries)
			datastreams.GET("/users/:user/counts", h.Entry.Counts)
			datastreams.POST("/entries", auth, h.Entry.Upload)
		}

		// 评估任务接口
		evaluations := api.Group("/evaluations")
		{
			evaluations.GET("", h.Evaluation.ListTasks)
			evaluations.GET("/:id", h.Evaluation.GetTask)
			evaluations.GET("/:id/result", h.Evaluation.GetResult)
			evaluations.GET("/:id/reference", h.Evaluation.GetReference)
			evaluations.POST("", auth, h.Evaluation.CreateTask)
		}
	}

	return r
}
