package app

import (
	"code_practice_backend/docs"
	"code_practice_backend/internal/config"
	"code_practice_backend/internal/middleware"
	"code_practice_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		// 题库
		authGroup.GET("/problems/coding", c.problem.ListCodingProblems)
		authGroup.GET("/problems/coding/:id", c.problem.GetCodingProblem)
		authGroup.GET("/problems/mcq", c.problem.ListMCQQuestions)
		authGroup.GET("/problems/mcq/:id", c.problem.GetMCQQuestion)

		// 评测与进度
		authGroup.POST("/problems/coding/:id/run", c.submission.Run)
		authGroup.POST("/problems/coding/:id/save", c.submission.Save)
		authGroup.GET("/problems/coding/:id/progress", c.submission.GetProgress)

		// 选择题作答
		authGroup.POST("/problems/mcq/:id/answer", c.mcq.Answer)

		// 成就
		authGroup.GET("/achievements", c.achievement.GetUserAchievements)
		authGroup.POST("/achievements/check", c.achievement.Check)

		// 讨论区
		authGroup.GET("/discussions/problem/:problemId", c.discussion.GetThread)
		authGroup.GET("/discussions/:id/comments", c.discussion.ListComments)
		authGroup.POST("/discussions/:id/comments", c.discussion.AddComment)
	}
}
