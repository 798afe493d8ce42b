package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ketan-bobby/skillpulse/internal/services"
	"github.com/ketan-bobby/skillpulse/internal/utils"
	"github.com/ketan-bobby/skillpulse/internal/validator"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	validator      *validator.Validator
}

func NewSessionHandler(
	sessionService services.SessionService,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		validator:      validator,
	}
}

// StartSession starts or resumes a test session
// @Summary Start test session
// @Description Starts a session for an assigned test, or resumes the active one
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Start session data"
// @Success 201 {object} services.SessionResponse
// @Success 200 {object} services.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/start [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	h.LogRequest(c, "Starting test session")

	var req services.StartSessionRequest
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

	session, err := h.sessionService.StartOrResume(c.Request.Context(), &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if session.Resumed {
		status = http.StatusOK
	}
	c.JSON(status, session)
}

// GetSession returns one session
// @Summary Get session
// @Description Returns a session by ID
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
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

	session, err := h.sessionService.GetByID(c.Request.Context(), id, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SaveAnswer stores one draft answer on an active session
// @Summary Save answer
// @Description Stores a draft answer; submit-time answers win on conflict
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Session ID"
// @Param answer body services.SaveAnswerRequest true "Answer data"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/answer [post]
func (h *SessionHandler) SaveAnswer(c *gin.Context) {
	sessionID := h.parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}

	var req services.SaveAnswerRequest
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

	err := h.sessionService.SaveAnswer(c.Request.Context(), sessionID, req.QuestionID, req.Answer, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Answer saved"})
}

// RecordProctoringEvent appends one integrity signal to a session
// @Summary Record proctoring event
// @Description Appends an integrity event to the session's event stream
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Session ID"
// @Param event body services.ProctoringEventRequest true "Proctoring event"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/events [post]
func (h *SessionHandler) RecordProctoringEvent(c *gin.Context) {
	sessionID := h.parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}

	var req services.ProctoringEventRequest
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

	err := h.sessionService.RecordProctoringEvent(c.Request.Context(), sessionID, &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Proctoring event recorded"})
}

// SubmitSession submits a session for scoring
// @Summary Submit session
// @Description Scores the session and records the result; retries return the stored outcome
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.SubmitSessionRequest true "Submit session data"
// @Success 200 {object} services.SubmitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /sessions/submit [post]
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	h.LogRequest(c, "Submitting test session")

	var req services.SubmitSessionRequest
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

	outcome, err := h.sessionService.Submit(c.Request.Context(), &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// ===== HELPERS =====

func (h *SessionHandler) parseIDParam(c *gin.Context, param string) uint {
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

func (h *SessionHandler) handleServiceError(c *gin.Context, err error) {
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
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Session not found",
		})
	case errors.Is(err, services.ErrTestNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Test not found",
		})
	case errors.Is(err, services.ErrNotAssigned):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Test is not assigned to this person",
		})
	case errors.Is(err, services.ErrSessionCompleted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Session is already completed",
		})
	case errors.Is(err, services.ErrAttemptLimitExceeded):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Maximum attempts exceeded",
		})
	case errors.Is(err, services.ErrCatalogUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Test catalog unavailable, please retry",
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
