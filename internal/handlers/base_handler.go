package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ketan-bobby/skillpulse/internal/utils"
)

// ErrorResponse is the uniform error payload for all endpoints.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse is the uniform success payload for endpoints that do not
// return a resource body.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the shared handler plumbing.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs the start of request handling with the request-scoped
// logger when the middleware attached one.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	logger := utils.FromContext(c, h.logger)
	logger.Info(msg, args...)
}
