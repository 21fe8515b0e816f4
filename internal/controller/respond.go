package controller

import (
	"errors"
	"net/http"

	"school_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the response envelope. Every
// handler funnels its error path through here so the status codes stay
// consistent across the API.
func respondError(ctx *gin.Context, err error) {
	if errs, ok := util.AsValidation(err); ok {
		util.ValidationFailed(ctx, errs)
		return
	}

	switch {
	case errors.Is(err, util.ErrNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrAttemptLimitExceeded),
		errors.Is(err, util.ErrScheduleNotAvailable),
		errors.Is(err, util.ErrAttemptNotOpen),
		errors.Is(err, util.ErrExamNotEditable),
		errors.Is(err, util.ErrInvalidTransition):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrInvalidAnswer):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
