package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/qtohub/internal/apperr"
	"github.com/geocoder89/qtohub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

// RespondAppError maps an error kind from the service layer to a status.
// Only the client-safe message is sent.
func RespondAppError(ctx *gin.Context, err error) {
	msg := apperr.MessageOf(err)

	var details interface{}
	if field := apperr.FieldOf(err); field != "" {
		details = gin.H{"field": field}
	}

	switch {
	case errors.Is(err, apperr.ErrValidation):
		RespondError(ctx, http.StatusBadRequest, "invalid_request", msg, details)
	case errors.Is(err, apperr.ErrConflict):
		RespondError(ctx, http.StatusConflict, "conflict", msg, details)
	case errors.Is(err, apperr.ErrAuthentication):
		RespondUnAuthorized(ctx, "unauthorized", msg)
	case errors.Is(err, apperr.ErrAuthorization):
		RespondError(ctx, http.StatusForbidden, "forbidden", msg, nil)
	case errors.Is(err, apperr.ErrNotFound):
		RespondNotFound(ctx, msg)
	case errors.Is(err, apperr.ErrParse):
		RespondError(ctx, http.StatusUnprocessableEntity, "unprocessable_file", msg, nil)
	default:
		RespondInternal(ctx, msg)
	}
}
