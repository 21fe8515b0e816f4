package controller

import (
	"school_exam_backend/internal/model"
	"school_exam_backend/internal/service"
	"school_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	Service *service.ExamService
}

func NewExamController(svc *service.ExamService) *ExamController {
	return &ExamController{Service: svc}
}

// @Summary Create an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ExamRequest true "exam data"
// @Success 201 {object} util.Response
// @Router /api/teacher/exams [post]
func (c *ExamController) Create(ctx *gin.Context) {
	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	exam, err := c.Service.CreateExam(claims.SchoolID, claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, exam)
}

// @Summary Update a draft exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body service.ExamRequest true "exam data"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id} [put]
func (c *ExamController) Update(ctx *gin.Context) {
	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	exam, err := c.Service.UpdateExam(claims.SchoolID, util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// @Summary Get an exam with its subjects
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id} [get]
func (c *ExamController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	exam, err := c.Service.GetExam(claims.SchoolID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// @Summary List exams
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param status query string false "exam status"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams [get]
func (c *ExamController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))

	exams, total, err := c.Service.ListExams(claims.SchoolID, model.ExamStatus(ctx.Query("status")), page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: exams, Total: total, Page: page, Limit: limit})
}

type statusRequest struct {
	Status model.ExamStatus `json:"status" binding:"required"`
}

// @Summary Move an exam along its lifecycle
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body statusRequest true "new status"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/status [put]
func (c *ExamController) UpdateStatus(ctx *gin.Context) {
	var req statusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	exam, err := c.Service.TransitionStatus(claims.SchoolID, util.MustParseUint(ctx.Param("id")), req.Status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// @Summary Add a subject block to a draft exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body service.SubjectRequest true "subject data"
// @Success 201 {object} util.Response
// @Router /api/teacher/exams/{id}/subjects [post]
func (c *ExamController) AddSubject(ctx *gin.Context) {
	var req service.SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	subject, err := c.Service.AddSubject(claims.SchoolID, util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// @Summary Update a subject block
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param subjectId path int true "subject id"
// @Param body body service.SubjectRequest true "subject data"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/subjects/{subjectId} [put]
func (c *ExamController) UpdateSubject(ctx *gin.Context) {
	var req service.SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	subject, err := c.Service.UpdateSubject(claims.SchoolID,
		util.MustParseUint(ctx.Param("id")),
		util.MustParseUint(ctx.Param("subjectId")), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// @Summary Schedule an exam subject for a class
// @Tags schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body service.ScheduleRequest true "schedule data"
// @Success 201 {object} util.Response
// @Router /api/teacher/exams/{id}/schedules [post]
func (c *ExamController) CreateSchedule(ctx *gin.Context) {
	var req service.ScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	schedule, err := c.Service.CreateSchedule(claims.SchoolID, util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, schedule)
}

// @Summary Update a schedule
// @Tags schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param scheduleId path int true "schedule id"
// @Param body body service.ScheduleRequest true "schedule data"
// @Success 200 {object} util.Response
// @Router /api/teacher/schedules/{scheduleId} [put]
func (c *ExamController) UpdateSchedule(ctx *gin.Context) {
	var req service.ScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	schedule, err := c.Service.UpdateSchedule(claims.SchoolID, util.MustParseUint(ctx.Param("scheduleId")), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, schedule)
}

// @Summary Cancel a schedule
// @Tags schedules
// @Produce json
// @Security BearerAuth
// @Param scheduleId path int true "schedule id"
// @Success 200 {object} util.Response
// @Router /api/teacher/schedules/{scheduleId} [delete]
func (c *ExamController) CancelSchedule(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	schedule, err := c.Service.CancelSchedule(claims.SchoolID, util.MustParseUint(ctx.Param("scheduleId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, schedule)
}

// @Summary List the schedules of an exam
// @Tags schedules
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/schedules [get]
func (c *ExamController) ListSchedules(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	schedules, err := c.Service.ListSchedules(claims.SchoolID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, schedules)
}

// @Summary List the schedules available to the caller's class
// @Tags schedules
// @Produce json
// @Security BearerAuth
// @Param classId query int true "class id"
// @Success 200 {object} util.Response
// @Router /api/exams/schedules [get]
func (c *ExamController) ListClassSchedules(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	schedules, err := c.Service.ListClassSchedules(claims.SchoolID, util.MustParseUint(ctx.Query("classId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, schedules)
}
