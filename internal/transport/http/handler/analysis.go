package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"surveylens/internal/app"
	"surveylens/internal/transport/http/response"
)

type AnalysisHandler struct {
	analysisService *app.AnalysisService
}

type SaveAnalysisRequest struct {
	Title       string           `json:"title"`
	AuthorName  string           `json:"author_name"`
	Description string           `json:"description"`
	Plots       *[]app.PlotEntry `json:"plots"`
}

type UpdateAnalysisRequest struct {
	Title       string           `json:"title"`
	AuthorName  string           `json:"author_name"`
	Description *string          `json:"description"`
	Plots       *[]app.PlotEntry `json:"plots"`
}

type PublishAnalysisRequest struct {
	AnalysisID string `json:"analysis_id" binding:"required"`
}

func NewAnalysisHandler(analysisService *app.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

func (h *AnalysisHandler) Save(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req SaveAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	input := app.SaveAnalysisInput{
		UserID:      userID,
		Username:    getUsernameFromContext(c),
		Title:       req.Title,
		AuthorName:  req.AuthorName,
		Description: req.Description,
	}
	if req.Plots != nil {
		input.Plots = *req.Plots
		input.PlotsProvided = true
	}

	analysis, err := h.analysisService.Save(input)
	if err != nil {
		h.writeAnalysisError(c, err, "save analysis failed")
		return
	}

	response.OK(c, analysis)
}

func (h *AnalysisHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	analyses, err := h.analysisService.List(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list analyses failed")
		return
	}
	response.OK(c, analyses)
}

func (h *AnalysisHandler) Get(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	analysis, err := h.analysisService.Get(userID, c.Param("id"))
	if err != nil {
		h.writeAnalysisError(c, err, "get analysis failed")
		return
	}
	response.OK(c, analysis)
}

func (h *AnalysisHandler) Update(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req UpdateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	input := app.UpdateAnalysisInput{
		UserID:      userID,
		AnalysisID:  c.Param("id"),
		Title:       req.Title,
		AuthorName:  req.AuthorName,
		Description: req.Description,
	}
	if req.Plots != nil {
		input.Plots = *req.Plots
		input.PlotsProvided = true
	}

	analysis, err := h.analysisService.Update(input)
	if err != nil {
		h.writeAnalysisError(c, err, "update analysis failed")
		return
	}
	response.OK(c, analysis)
}

func (h *AnalysisHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	if err := h.analysisService.Delete(userID, c.Param("id")); err != nil {
		h.writeAnalysisError(c, err, "delete analysis failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AnalysisHandler) Publish(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req PublishAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "analysis id is required")
		return
	}

	analysis, err := h.analysisService.Publish(userID, req.AnalysisID)
	if err != nil {
		h.writeAnalysisError(c, err, "publish analysis failed")
		return
	}

	response.OK(c, gin.H{
		"message":  "analysis published successfully",
		"analysis": analysis,
	})
}

func (h *AnalysisHandler) writeAnalysisError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrPlotValidation):
		response.ErrorDetail(c, http.StatusBadRequest, response.CodeBadRequest, "validation error", err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrAnalysisNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "analysis not found")
	case errors.Is(err, app.ErrNotOwner):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "not authorized to access this analysis")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		response.ErrorDetail(c, http.StatusConflict, response.CodeConflict,
			"duplicate data error", "a record with this information already exists")
	default:
		response.ErrorDetail(c, http.StatusInternalServerError, response.CodeInternalServer, fallback, err.Error())
	}
}
