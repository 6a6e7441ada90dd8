package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medvision/internal/domain"
)

// ErrorResponse is the standardized error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is the standardized success envelope.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

func respondSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message, Data: data})
}

// respondServiceError maps service errors onto transport status codes:
// validation failures are the caller's fault, everything else is a 500.
func respondServiceError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrValidation) {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	respondError(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
}
