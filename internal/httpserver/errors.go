package httpserver

import (
	"errors"
	"net/http"

	"customer-api/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	codeValidation  = "VALIDATION_ERROR"
	codeServerError = "SERVER_ERROR"
	codeNotFound    = "NOT_FOUND"
)

var errorStatus = map[string]int{
	domain.ErrInvalidCredentials.Code:    http.StatusUnauthorized,
	domain.ErrInvalidAPIToken.Code:       http.StatusUnauthorized,
	domain.ErrUnauthenticated.Code:       http.StatusUnauthorized,
	domain.ErrUserNotFound.Code:          http.StatusNotFound,
	domain.ErrCustomerNotFound.Code:      http.StatusNotFound,
	domain.ErrCustomerAlreadyExists.Code: http.StatusUnprocessableEntity,
}

// writeError maps err onto the response envelope. Anything that is not a
// domain error is logged and reported as a generic server error.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		status, ok := errorStatus[de.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		var fields map[string][]string
		if errors.Is(err, domain.ErrCustomerAlreadyExists) {
			fields = map[string][]string{"email": {"The email has already been taken."}}
		}
		respondError(c, status, de.Code, de.Message, fields)
		return
	}

	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	respondError(c, http.StatusInternalServerError, codeServerError, "Internal server error", nil)
}

func writeValidation(c *gin.Context, fields map[string][]string) {
	respondError(c, http.StatusUnprocessableEntity, codeValidation, "The given data was invalid.", fields)
}
