package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ketan-bobby/skillpulse/internal/repositories"
	"github.com/ketan-bobby/skillpulse/internal/services"
	"github.com/ketan-bobby/skillpulse/internal/utils"
	"github.com/ketan-bobby/skillpulse/internal/validator"
)

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
	validator     *validator.Validator
}

func NewResultHandler(
	resultService services.ResultService,
	validator *validator.Validator,
	logger utils.Logger,
) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
		validator:     validator,
	}
}

// GetResult returns one test result
// @Summary Get result
// @Description Returns a test result by ID
// @Tags results
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} services.ResultResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/{id} [get]
func (h *ResultHandler) GetResult(c *gin.Context) {
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

	result, err := h.resultService.GetByID(c.Request.Context(), id, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListResults lists results visible to the caller
// @Summary List results
// @Description Lists results; candidates see only their own visible results
// @Tags results
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param person_id query string false "Person filter"
// @Param passed query bool false "Passed filter"
// @Success 200 {object} services.ResultListResponse
// @Router /results [get]
func (h *ResultHandler) ListResults(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := h.parseResultFilters(c)

	list, err := h.resultService.List(c.Request.Context(), filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetPersonResults lists one person's results
// @Summary List person results
// @Description Lists all results for a person
// @Tags results
// @Produce json
// @Param person_id path string true "Person ID"
// @Success 200 {object} services.ResultListResponse
// @Router /results/person/{person_id} [get]
func (h *ResultHandler) GetPersonResults(c *gin.Context) {
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

	filters := h.parseResultFilters(c)

	list, err := h.resultService.GetByPerson(c.Request.Context(), personID, filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetAnalysis returns the skill-gap analysis for a result
// @Summary Get skill-gap analysis
// @Description Returns the analysis, computing and persisting it on first read
// @Tags results
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} models.SkillGapAnalysis
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /results/{id}/analysis [get]
func (h *ResultHandler) GetAnalysis(c *gin.Context) {
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

	analysis, err := h.resultService.GetAnalysis(c.Request.Context(), id, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// RecomputeAnalysis overwrites stored analyses for the given results
// @Summary Recompute analyses
// @Description Recomputes skill-gap analyses; score columns are never touched
// @Tags results
// @Accept json
// @Produce json
// @Param request body services.RecomputeAnalysisRequest true "Result IDs"
// @Success 200 {object} SuccessResponse{data=[]services.RecomputeOutcome}
// @Failure 403 {object} ErrorResponse
// @Router /results/recompute [post]
func (h *ResultHandler) RecomputeAnalysis(c *gin.Context) {
	h.LogRequest(c, "Recomputing skill-gap analyses")

	var req services.RecomputeAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
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

	outcomes, err := h.resultService.ForceRecompute(c.Request.Context(), &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Recompute finished",
		Data:    outcomes,
	})
}

// ===== HELPERS =====

func (h *ResultHandler) parseIDParam(c *gin.Context, param string) uint {
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

func (h *ResultHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
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

func (h *ResultHandler) parseResultFilters(c *gin.Context) repositories.ResultFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 10)

	filters := repositories.ResultFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
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

	if passedStr := c.Query("passed"); passedStr != "" {
		if passed, err := strconv.ParseBool(passedStr); err == nil {
			filters.Passed = &passed
		}
	}

	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = &t
		}
	}

	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = &t
		}
	}

	return filters
}

func (h *ResultHandler) handleServiceError(c *gin.Context, err error) {
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
	case errors.Is(err, services.ErrResultNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Result not found",
		})
	case errors.Is(err, services.ErrResultsHidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Results are not visible for this assignment",
		})
	case errors.Is(err, services.ErrAnalyticsGenerationFailed):
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Skill gap analysis generation failed",
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
