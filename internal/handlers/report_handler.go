package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ketan-bobby/skillpulse/internal/services"
	"github.com/ketan-bobby/skillpulse/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// GetPersonReport returns a person's aggregated performance report
// @Summary Person report
// @Description Aggregates a person's results, domain averages and training priorities
// @Tags reports
// @Produce json
// @Param person_id path string true "Person ID"
// @Success 200 {object} services.PersonReport
// @Failure 403 {object} ErrorResponse
// @Router /reports/person/{person_id} [get]
func (h *ReportHandler) GetPersonReport(c *gin.Context) {
	personID := c.Param("person_id")
	if personID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid person_id",
		})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	report, err := h.reportService.PersonReport(c.Request.Context(), personID, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetDomainReport returns per-domain aggregates across all results
// @Summary Domain report
// @Description Returns result counts, average scores and pass rates per skill domain
// @Tags reports
// @Produce json
// @Success 200 {array} services.DomainReportRow
// @Failure 403 {object} ErrorResponse
// @Router /reports/domains [get]
func (h *ReportHandler) GetDomainReport(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	rows, err := h.reportService.DomainReport(c.Request.Context(), userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// ExportPersonReport downloads a person report as an xlsx workbook
// @Summary Export person report
// @Description Renders the person report as an Excel workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param person_id path string true "Person ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /reports/person/{person_id}/export [get]
func (h *ReportHandler) ExportPersonReport(c *gin.Context) {
	personID := c.Param("person_id")
	if personID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid person_id",
		})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Exporting person report", "person_id", personID)

	workbook, err := h.reportService.ExportPersonReport(c.Request.Context(), personID, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("assessment-report-%s.xlsx", personID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, workbook)
}

func (h *ReportHandler) handleServiceError(c *gin.Context, err error) {
	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrResultNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Result not found",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
	default:
		h.logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
