package controller

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"school_exam_backend/internal/service"
	"school_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadController handles question attachments and group stimulus
// images.
type UploadController struct {
	Storage *service.StorageService
}

func NewUploadController(storage *service.StorageService) *UploadController {
	return &UploadController{Storage: storage}
}

// @Summary Upload a question attachment or stimulus image
// @Tags question-bank
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "image file"
// @Success 201 {object} util.Response
// @Router /api/teacher/uploads [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImage(ext) {
		util.BadRequest(ctx, fmt.Sprintf("unsupported file type %s", ext))
		return
	}

	// Sniff the real content type; the first open is consumed by the
	// detector, so reopen for the upload itself.
	probe, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	contentType, err := util.ValidateMimeType(probe, []string{util.MimeImage})
	probe.Close()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	claims := util.GetUserFromContext(ctx)
	filename := fmt.Sprintf("%d/%s/%s%s", claims.SchoolID, time.Now().Format(util.DateFormat), uuid.New().String(), ext)
	url, err := c.Storage.Upload(ctx.Request.Context(), filename, src, file.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"url": url})
}

func allowedImage(ext string) bool {
	for _, allowed := range util.AllowedImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
