package controller

import (
	"school_exam_backend/internal/service"
	"school_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GradeController covers the manual side of grading: listing attempts
// waiting on an instructor and recording essay scores.
type GradeController struct {
	Scorer    *service.Scorer
	Attempts  *service.AttemptService
	Analytics *service.AnalyticsService
}

func NewGradeController(scorer *service.Scorer, attempts *service.AttemptService, analytics *service.AnalyticsService) *GradeController {
	return &GradeController{Scorer: scorer, Attempts: attempts, Analytics: analytics}
}

type manualGradeRequest struct {
	Points int `json:"points"`
}

// @Summary Record a manual grade for an essay answer
// @Tags grading
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answerId path int true "answer id"
// @Param body body manualGradeRequest true "awarded points"
// @Success 200 {object} util.Response
// @Router /api/teacher/answers/{answerId}/grade [put]
func (c *GradeController) GradeAnswer(ctx *gin.Context) {
	var req manualGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	answer, err := c.Scorer.GradeManually(claims.SchoolID, util.MustParseUint(ctx.Param("answerId")), req.Points)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if attempt, err := c.Attempts.AttemptRepo.FindByID(claims.SchoolID, answer.AttemptID); err == nil {
		c.Analytics.Invalidate(ctx.Request.Context(), claims.SchoolID, attempt.ScheduleID)
	}
	util.Success(ctx, answer)
}

// @Summary Attempts with answers awaiting manual grading
// @Tags grading
// @Produce json
// @Security BearerAuth
// @Param scheduleId path int true "schedule id"
// @Success 200 {object} util.Response
// @Router /api/teacher/schedules/{scheduleId}/pending-grading [get]
func (c *GradeController) PendingGrading(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attempts, err := c.Attempts.AttemptRepo.ListPendingManual(claims.SchoolID, util.MustParseUint(ctx.Param("scheduleId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
