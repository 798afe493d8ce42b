package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
	"github.com/ketan-bobby/skillpulse/internal/services"
	"github.com/ketan-bobby/skillpulse/internal/utils"
	"github.com/ketan-bobby/skillpulse/internal/validator"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	validator         *validator.Validator
}

func NewAssignmentHandler(
	assignmentService services.AssignmentService,
	validator *validator.Validator,
	logger utils.Logger,
) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		validator:         validator,
	}
}

// CreateAssignment records that a person owes a test
// @Summary Create assignment
// @Description Creates a new test assignment for a person
// @Tags assignments
// @Accept json
// @Produce json
// @Param assignment body services.CreateAssignmentRequest true "Assignment data"
// @Success 201 {object} services.AssignmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /assignments [post]
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	h.LogRequest(c, "Creating assignment")

	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
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

	assignment, err := h.assignmentService.Create(c.Request.Context(), &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// GetAssignment returns one assignment
// @Summary Get assignment
// @Description Returns an assignment by ID
// @Tags assignments
// @Produce json
// @Param id path uint true "Assignment ID"
// @Success 200 {object} services.AssignmentResponse
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	assignment, err := h.assignmentService.GetByID(c.Request.Context(), id, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// ListAssignments lists assignments visible to the caller
// @Summary List assignments
// @Description Lists assignments; candidates see only their own
// @Tags assignments
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param status query string false "Assignment status filter"
// @Param person_id query string false "Person filter"
// @Success 200 {object} services.AssignmentListResponse
// @Router /assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := h.parseAssignmentFilters(c)

	list, err := h.assignmentService.List(c.Request.Context(), filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetAssignmentStats returns ledger counters
// @Summary Assignment statistics
// @Description Returns assignment counts by status
// @Tags assignments
// @Produce json
// @Success 200 {object} repositories.AssignmentStats
// @Router /assignments/stats [get]
func (h *AssignmentHandler) GetAssignmentStats(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	stats, err := h.assignmentService.GetStats(c.Request.Context(), userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// UpdateAssignmentStatus moves an assignment through its state machine
// @Summary Update assignment status
// @Description Transitions an assignment to a new status
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path uint true "Assignment ID"
// @Param status body services.UpdateAssignmentStatusRequest true "New status"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /assignments/{id}/status [put]
func (h *AssignmentHandler) UpdateAssignmentStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating assignment status", "assignment_id", id)

	var req services.UpdateAssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
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

	if err := h.assignmentService.UpdateStatus(c.Request.Context(), id, &req, userID.(string)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Assignment status updated"})
}

// SetResultsVisibility toggles candidate access to the assignment's result
// @Summary Set results visibility
// @Description Shows or hides the result from the assigned person
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path uint true "Assignment ID"
// @Param visibility body services.ResultsVisibilityRequest true "Visibility flag"
// @Success 200 {object} SuccessResponse
// @Router /assignments/{id}/visibility [put]
func (h *AssignmentHandler) SetResultsVisibility(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Setting results visibility", "assignment_id", id)

	var req services.ResultsVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
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

	if err := h.assignmentService.SetResultsVisibility(c.Request.Context(), id, &req, userID.(string)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Results visibility updated"})
}

// ===== HELPERS =====

func (h *AssignmentHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: err.Error(),
		})
		return 0
	}
	return uint(id)
}

func (h *AssignmentHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *AssignmentHandler) parseAssignmentFilters(c *gin.Context) repositories.AssignmentFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 10)

	filters := repositories.AssignmentFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if status := c.Query("status"); status != "" {
		assignmentStatus := models.AssignmentStatus(status)
		filters.Status = &assignmentStatus
	}

	if personID := strings.TrimSpace(c.Query("person_id")); personID != "" {
		filters.PersonID = &personID
	}

	if testIDStr := c.Query("test_id"); testIDStr != "" {
		if testID, err := strconv.ParseUint(testIDStr, 10, 32); err == nil {
			id := uint(testID)
			filters.TestID = &id
		}
	}

	if dueBefore := c.Query("due_before"); dueBefore != "" {
		if t, err := time.Parse(time.RFC3339, dueBefore); err == nil {
			filters.DueBefore = &t
		}
	}

	return filters
}

func (h *AssignmentHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule": businessRuleError.Rule,
			},
		})
		return
	}

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
	case errors.Is(err, services.ErrAssignmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Assignment not found",
		})
	case errors.Is(err, services.ErrTestNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Test not found",
		})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Invalid assignment status transition",
		})
	case errors.Is(err, services.ErrCatalogUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Test catalog unavailable",
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
