package middleware

import (
	"net/http"

	"github.com/Tanisha-99/internal-transfer-system/shared/apperrors"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

// StatusForError maps an error kind to the HTTP status the boundary reports.
func StatusForError(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeAccountNotFound, apperrors.CodeTransferNotFound:
		return http.StatusNotFound
	case apperrors.CodeAccountAlreadyExists:
		return http.StatusConflict
	case apperrors.CodeInsufficientBalance:
		return http.StatusUnprocessableEntity
	case apperrors.CodeInvalidAmount:
		return http.StatusBadRequest
	case apperrors.CodeStorageFailure:
		if apperrors.IsRetryable(err) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError writes err as {"code", "message"}. Storage failures
// never leak their cause to the client.
func RespondWithAppError(c *gin.Context, err error) {
	status := StatusForError(err)
	code := apperrors.CodeOf(err)
	message := err.Error()

	switch {
	case code == apperrors.CodeStorageFailure && apperrors.IsRetryable(err):
		c.Header("Retry-After", "1")
		message = "Temporary storage failure, retry the request"
	case code == apperrors.CodeStorageFailure || code == "":
		code = apperrors.CodeStorageFailure
		message = "Internal server error"
	}

	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Code: code, Message: message})
}
