package controller

import (
	"school_exam_backend/internal/model"
	"school_exam_backend/internal/repository"
	"school_exam_backend/internal/service"
	"school_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	Service *service.QuestionService
}

func NewQuestionController(svc *service.QuestionService) *QuestionController {
	return &QuestionController{Service: svc}
}

// @Summary Create a question
// @Tags question-bank
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionRequest true "question data"
// @Success 201 {object} util.Response
// @Router /api/teacher/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	q, err := c.Service.CreateQuestion(claims.SchoolID, claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// @Summary Update a question
// @Tags question-bank
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "question id"
// @Param body body service.QuestionRequest true "question data"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	q, err := c.Service.UpdateQuestion(claims.SchoolID, util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary Get one question
// @Tags question-bank
// @Produce json
// @Security BearerAuth
// @Param id path int true "question id"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	q, err := c.Service.GetQuestion(claims.SchoolID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary List questions
// @Tags question-bank
// @Produce json
// @Security BearerAuth
// @Param subjectId query int false "subject id"
// @Param type query string false "question type"
// @Param difficulty query string false "difficulty"
// @Param groupId query int false "group id"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))

	filter := repository.QuestionFilter{
		SubjectID:  util.MustParseUint(ctx.Query("subjectId")),
		Type:       model.QuestionType(ctx.Query("type")),
		Difficulty: model.Difficulty(ctx.Query("difficulty")),
	}
	if raw := ctx.Query("groupId"); raw != "" {
		gid := util.MustParseUint(raw)
		filter.GroupID = &gid
	}

	questions, total, err := c.Service.ListQuestions(claims.SchoolID, filter, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: questions, Total: total, Page: page, Limit: limit})
}

// @Summary Delete a question
// @Tags question-bank
// @Produce json
// @Security BearerAuth
// @Param id path int true "question id"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.Service.DeleteQuestion(claims.SchoolID, util.MustParseUint(ctx.Param("id"))); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type shareRequest struct {
	Shared bool `json:"shared"`
}

// @Summary Share or unshare a question across schools
// @Tags question-bank
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "question id"
// @Param body body shareRequest true "share flag"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id}/share [put]
func (c *QuestionController) Share(ctx *gin.Context) {
	var req shareRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	q, err := c.Service.SetShared(claims.SchoolID, util.MustParseUint(ctx.Param("id")), req.Shared)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary Copy a visible question into the caller's school
// @Tags question-bank
// @Produce json
// @Security BearerAuth
// @Param id path int true "question id"
// @Success 201 {object} util.Response
// @Router /api/teacher/questions/{id}/copy [post]
func (c *QuestionController) Copy(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	q, err := c.Service.CopyQuestion(claims.SchoolID, claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// @Summary Create a question group
// @Tags question-bank
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.GroupRequest true "group data"
// @Success 201 {object} util.Response
// @Router /api/teacher/question-groups [post]
func (c *QuestionController) CreateGroup(ctx *gin.Context) {
	var req service.GroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	g, err := c.Service.CreateGroup(claims.SchoolID, claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, g)
}

// @Summary Get a group with its ordered members
// @Tags question-bank
// @Produce json
// @Security BearerAuth
// @Param id path int true "group id"
// @Success 200 {object} util.Response
// @Router /api/teacher/question-groups/{id} [get]
func (c *QuestionController) GetGroup(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	g, members, err := c.Service.GetGroup(claims.SchoolID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"group": g, "questions": members})
}

type groupMembersRequest struct {
	QuestionIDs []uint `json:"questionIds" binding:"required"`
}

// @Summary Attach questions to a group
// @Tags question-bank
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "group id"
// @Param body body groupMembersRequest true "question ids"
// @Success 200 {object} util.Response
// @Router /api/teacher/question-groups/{id}/questions [post]
func (c *QuestionController) AttachQuestions(ctx *gin.Context) {
	var req groupMembersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.Service.AttachQuestions(claims.SchoolID, util.MustParseUint(ctx.Param("id")), req.QuestionIDs); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Detach a question from a group
// @Tags question-bank
// @Produce json
// @Security BearerAuth
// @Param id path int true "group id"
// @Param questionId path int true "question id"
// @Success 200 {object} util.Response
// @Router /api/teacher/question-groups/{id}/questions/{questionId} [delete]
func (c *QuestionController) DetachQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	err := c.Service.DetachQuestion(claims.SchoolID,
		util.MustParseUint(ctx.Param("id")),
		util.MustParseUint(ctx.Param("questionId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Reorder the members of a group
// @Tags question-bank
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "group id"
// @Param body body groupMembersRequest true "question ids in new order"
// @Success 200 {object} util.Response
// @Router /api/teacher/question-groups/{id}/reorder [put]
func (c *QuestionController) ReorderGroup(ctx *gin.Context) {
	var req groupMembersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.Service.ReorderGroup(claims.SchoolID, util.MustParseUint(ctx.Param("id")), req.QuestionIDs); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Copy a whole group into the caller's school
// @Tags question-bank
// @Produce json
// @Security BearerAuth
// @Param id path int true "group id"
// @Success 201 {object} util.Response
// @Router /api/teacher/question-groups/{id}/copy [post]
func (c *QuestionController) CopyGroup(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	g, err := c.Service.CopyGroup(claims.SchoolID, claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, g)
}
