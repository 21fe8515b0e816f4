package controller

import (
	"school_exam_backend/internal/service"
	"school_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Service *service.AnalyticsService
}

func NewAnalyticsController(svc *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Service: svc}
}

// @Summary Aggregated statistics for a schedule
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param scheduleId path int true "schedule id"
// @Success 200 {object} util.Response
// @Router /api/teacher/schedules/{scheduleId}/stats [get]
func (c *AnalyticsController) ScheduleStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	stats, err := c.Service.GetScheduleStats(ctx.Request.Context(), claims.SchoolID, util.MustParseUint(ctx.Param("scheduleId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary The caller's attempt history summary
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/exams/progress [get]
func (c *AnalyticsController) MyProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	progress, err := c.Service.GetStudentProgress(claims.SchoolID, claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary A student's attempt history summary
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "student id"
// @Success 200 {object} util.Response
// @Router /api/teacher/students/{studentId}/progress [get]
func (c *AnalyticsController) StudentProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	progress, err := c.Service.GetStudentProgress(claims.SchoolID, util.MustParseUint(ctx.Param("studentId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
