package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"surveylens/internal/app"
	"surveylens/internal/plot"
	"surveylens/internal/transport/http/response"
)

type PlotHandler struct {
	plotService *app.PlotService
}

type PlotDataRequest struct {
	PlotType    string   `json:"plot_type" binding:"required"`
	XAxis       string   `json:"x_axis"`
	YAxes       []string `json:"y_axes"`
	CSVUploadID string   `json:"csv_upload_id" binding:"required"`
}

type GroupByRequest struct {
	Columns     []string `json:"columns"`
	CSVUploadID string   `json:"csv_upload_id" binding:"required"`
}

func NewPlotHandler(plotService *app.PlotService) *PlotHandler {
	return &PlotHandler{plotService: plotService}
}

// PlotData derives a chart payload from a stored upload. Axis requirements
// are checked before the file is opened.
func (h *PlotHandler) PlotData(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req PlotDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "plot type and csv upload id are required")
		return
	}

	result, err := h.plotService.BuildPlotData(c.Request.Context(), app.PlotDataInput{
		UserID:   userID,
		UploadID: req.CSVUploadID,
		PlotType: req.PlotType,
		XAxis:    req.XAxis,
		YAxes:    req.YAxes,
	})
	if err != nil {
		h.writePlotError(c, err)
		return
	}

	response.OK(c, result)
}

// GroupBy counts distinct values per requested column.
func (h *PlotHandler) GroupBy(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req GroupByRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "columns and csv upload id are required")
		return
	}

	result, err := h.plotService.GroupBy(c.Request.Context(), app.GroupByInput{
		UserID:   userID,
		UploadID: req.CSVUploadID,
		Columns:  req.Columns,
	})
	if err != nil {
		h.writePlotError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *PlotHandler) writePlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, plot.ErrInvalidRequest):
		response.ErrorDetail(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request", err.Error())
	case errors.Is(err, plot.ErrNoData):
		response.ErrorDetail(c, http.StatusBadRequest, response.CodeBadRequest,
			"failed to generate plot data",
			"the csv may not contain appropriate data for the selected plot type and axes")
	case errors.Is(err, app.ErrUploadNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "csv upload not found")
	case errors.Is(err, app.ErrNotOwner):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "not authorized to access this csv upload")
	default:
		response.ErrorDetail(c, http.StatusInternalServerError, response.CodeInternalServer,
			"failed to generate plot data", err.Error())
	}
}
