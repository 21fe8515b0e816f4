package controller

import (
	"school_exam_backend/internal/model"
	"school_exam_backend/internal/service"
	"school_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Service   *service.AttemptService
	Analytics *service.AnalyticsService
}

func NewAttemptController(svc *service.AttemptService, analytics *service.AnalyticsService) *AttemptController {
	return &AttemptController{Service: svc, Analytics: analytics}
}

type startAttemptRequest struct {
	ScheduleID uint `json:"scheduleId" binding:"required"`
}

// @Summary Start an attempt on a schedule
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body startAttemptRequest true "schedule"
// @Success 201 {object} util.Response
// @Router /api/exams/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	var req startAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	attempt, questions, err := c.Service.StartAttempt(claims.SchoolID, claims.UserID, req.ScheduleID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"attempt": attempt, "questions": questions})
}

// @Summary Submit or auto-save one answer
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Param body body service.AnswerRequest true "answer payload"
// @Success 200 {object} util.Response
// @Router /api/exams/attempts/{id}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	var req service.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	answer, err := c.Service.SubmitAnswer(claims.SchoolID, claims.UserID, ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}

// @Summary Submit the whole attempt for grading
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/exams/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attempt, err := c.Service.SubmitAttempt(claims.SchoolID, claims.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	c.Analytics.Invalidate(ctx.Request.Context(), claims.SchoolID, attempt.ScheduleID)
	util.Success(ctx, attempt)
}

// @Summary Abandon an open attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/exams/attempts/{id}/abandon [post]
func (c *AttemptController) Abandon(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attempt, err := c.Service.AbandonAttempt(claims.SchoolID, claims.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary Remaining time on an attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/exams/attempts/{id}/time [get]
func (c *AttemptController) RemainingTime(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	rt, err := c.Service.GetRemainingTime(claims.SchoolID, claims.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, rt)
}

// @Summary Result summary of an attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/exams/attempts/{id}/summary [get]
func (c *AttemptController) Summary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	asStudent := claims.Role == model.Student
	summary, err := c.Service.GetSummary(claims.SchoolID, claims.UserID, ctx.Param("id"), asStudent)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// @Summary Replay the attempt's question sheet
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/exams/attempts/{id}/questions [get]
func (c *AttemptController) Questions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	questions, err := c.Service.GetQuestions(claims.SchoolID, claims.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary List the caller's attempts
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response
// @Router /api/exams/attempts [get]
func (c *AttemptController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))

	attempts, total, err := c.Service.ListMyAttempts(claims.SchoolID, claims.UserID, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}

// @Summary Force-complete a student's open attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/teacher/attempts/{id}/force-complete [post]
func (c *AttemptController) ForceComplete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attempt, err := c.Service.ForceComplete(claims.SchoolID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	c.Analytics.Invalidate(ctx.Request.Context(), claims.SchoolID, attempt.ScheduleID)
	util.Success(ctx, attempt)
}
