package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"surveylens/internal/app"
	"surveylens/internal/transport/http/response"
)

type UploadHandler struct {
	uploadService  *app.UploadService
	maxUploadBytes int64
}

func NewUploadHandler(uploadService *app.UploadService, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		uploadService:  uploadService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload accepts a multipart form with a single "file" field holding a CSV
// file, stores it and returns the new upload id with its column list.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	if c.Request.ContentLength > h.maxUploadBytes {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MiB)")
		return
	}
	// Cap the body while it streams; chunked uploads past the limit fail
	// with MaxBytesError instead of being buffered whole first.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MiB)")
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "please upload a csv file (form field 'file')")
		return
	}

	if !isCSVFile(file) {
		response.Error(c, http.StatusUnprocessableEntity, response.CodeBadRequest, "only csv files are allowed")
		return
	}
	if file.Size > h.maxUploadBytes {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MiB)")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to open uploaded file")
		return
	}
	defer src.Close()

	upload, err := h.uploadService.Upload(c.Request.Context(), app.UploadInput{
		UserID:   userID,
		FileName: file.Filename,
		Size:     file.Size,
		Content:  src,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.ErrorDetail(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed", err.Error())
		}
		return
	}

	response.OK(c, gin.H{
		"id":      upload.ID,
		"columns": upload.Columns,
	})
}

func (h *UploadHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	uploads, err := h.uploadService.List(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list uploads failed")
		return
	}
	response.OK(c, uploads)
}

func (h *UploadHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	uploadID := c.Param("id")
	if err := h.uploadService.Delete(c.Request.Context(), userID, uploadID); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrUploadNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, app.ErrNotOwner):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete upload failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_upload_id": uploadID})
}

func isCSVFile(file *multipart.FileHeader) bool {
	if strings.HasSuffix(strings.ToLower(file.Filename), ".csv") {
		return true
	}
	contentType := file.Header.Get("Content-Type")
	return contentType == "text/csv"
}
