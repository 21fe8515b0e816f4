package app

import (
	"school_exam_backend/internal/config"
	"school_exam_backend/internal/middleware"
	"school_exam_backend/internal/model"
	"school_exam_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/auth/profile", c.auth.Profile)

	exams := rg.Group("/exams")
	{
		exams.GET("/schedules", c.exam.ListClassSchedules)
		exams.GET("/progress", c.analytics.MyProgress)

		exams.POST("/attempts", c.attempt.Start)
		exams.GET("/attempts", c.attempt.ListMine)
		exams.POST("/attempts/:id/answers", c.attempt.SubmitAnswer)
		exams.POST("/attempts/:id/submit", c.attempt.Submit)
		exams.POST("/attempts/:id/abandon", c.attempt.Abandon)
		exams.GET("/attempts/:id/time", c.attempt.RemainingTime)
		exams.GET("/attempts/:id/summary", c.attempt.Summary)
		exams.GET("/attempts/:id/questions", c.attempt.Questions)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.POST("/uploads", c.upload.Upload)

		questions := teacher.Group("/questions")
		{
			questions.POST("", c.question.Create)
			questions.GET("", c.question.List)
			questions.GET("/:id", c.question.Get)
			questions.PUT("/:id", c.question.Update)
			questions.DELETE("/:id", c.question.Delete)
			questions.PUT("/:id/share", c.question.Share)
			questions.POST("/:id/copy", c.question.Copy)
		}

		groups := teacher.Group("/question-groups")
		{
			groups.POST("", c.question.CreateGroup)
			groups.GET("/:id", c.question.GetGroup)
			groups.POST("/:id/questions", c.question.AttachQuestions)
			groups.DELETE("/:id/questions/:questionId", c.question.DetachQuestion)
			groups.PUT("/:id/reorder", c.question.ReorderGroup)
			groups.POST("/:id/copy", c.question.CopyGroup)
		}

		exams := teacher.Group("/exams")
		{
			exams.POST("", c.exam.Create)
			exams.GET("", c.exam.List)
			exams.GET("/:id", c.exam.Get)
			exams.PUT("/:id", c.exam.Update)
			exams.PUT("/:id/status", c.exam.UpdateStatus)
			exams.POST("/:id/subjects", c.exam.AddSubject)
			exams.PUT("/:id/subjects/:subjectId", c.exam.UpdateSubject)
			exams.POST("/:id/schedules", c.exam.CreateSchedule)
			exams.GET("/:id/schedules", c.exam.ListSchedules)
		}

		schedules := teacher.Group("/schedules")
		{
			schedules.PUT("/:scheduleId", c.exam.UpdateSchedule)
			schedules.DELETE("/:scheduleId", c.exam.CancelSchedule)
			schedules.GET("/:scheduleId/stats", c.analytics.ScheduleStats)
			schedules.GET("/:scheduleId/pending-grading", c.grade.PendingGrading)
		}

		teacher.POST("/attempts/:id/force-complete", c.attempt.ForceComplete)
		teacher.PUT("/answers/:answerId/grade", c.grade.GradeAnswer)
		teacher.GET("/students/:studentId/progress", c.analytics.StudentProgress)
	}
}
