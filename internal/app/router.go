package app

import (
	"eduassess_backend/docs"
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/middleware"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/util"
	"eduassess_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, a.services.auth))
	{
		// 学生/通用 授权接口
		a.registerStudentRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/teacher-login", c.auth.TeacherLogin)
		public.POST("/auth/student-login", c.auth.StudentLogin)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/auth/logout", c.auth.Logout)
	rg.GET("/profile", c.auth.GetProfile)

	// 科目/题目/测评（只读）
	rg.GET("/subjects", c.subject.List)
	rg.GET("/subjects/:id", c.subject.Get)
	rg.GET("/assessments", c.assessment.List)
	rg.GET("/assessments/:id", c.assessment.Get)
	rg.GET("/assessments/:id/paper", c.assessment.GetPaper)

	// 答卷
	rg.GET("/submissions", c.submission.List)
	rg.GET("/submissions/:id", c.submission.Get)
	student := rg.Group("/submissions")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.POST("", c.submission.Start)
		student.PUT("/:id", c.submission.Update)
	}

	// 积分与成就，学生只能访问自己
	rg.GET("/gamification/:userId", c.gamification.Profile)
	rg.POST("/gamification/check-achievements/:userId", c.gamification.CheckAchievements)
	rg.POST("/gamification/earn-badge", c.gamification.EarnBadge)

	rg.POST("/upload", c.upload.UploadImage)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("")
	teacher.Use(middleware.RoleMiddleware(model.Instructor))
	{
		// 科目管理
		teacher.POST("/subjects", c.subject.Create)
		teacher.PUT("/subjects/:id", c.subject.Update)
		teacher.DELETE("/subjects/:id", c.subject.Delete)

		// 题库管理
		teacher.GET("/questions", c.question.List)
		teacher.GET("/questions/:id", c.question.Get)
		teacher.POST("/questions", c.question.Create)
		teacher.PUT("/questions/:id", c.question.Update)
		teacher.DELETE("/questions/:id", c.question.Delete)

		// 测评管理
		teacher.POST("/assessments", c.assessment.Create)
		teacher.PUT("/assessments/:id", c.assessment.Update)
		teacher.DELETE("/assessments/:id", c.assessment.Delete)
		teacher.GET("/assessments/:id/export", c.assessment.Export)

		// 评分
		teacher.GET("/grades", c.grade.List)
		teacher.GET("/grades/:id", c.grade.Get)
		teacher.POST("/grades", c.grade.Create)
		teacher.PUT("/grades/:id", c.grade.Update)

		// 统计
		teacher.GET("/analytics", c.analytics.Report)
		teacher.GET("/stats", c.analytics.Stats)

		teacher.POST("/gamification/award-points", c.gamification.AwardPoints)
	}
}
