package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	sessiondomain "github.com/railzwaylabs/parkwise/internal/session/domain"
	vehicledomain "github.com/railzwaylabs/parkwise/internal/vehicle/domain"
	zonedomain "github.com/railzwaylabs/parkwise/internal/zone/domain"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternal       = errors.New("internal_error")
)

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// validationError reports a malformed request field.
type validationError struct {
	field   string
	code    string
	message string
}

func newValidationError(field, code, message string) *validationError {
	return &validationError{field: field, code: code, message: message}
}

func (e *validationError) Error() string { return e.message }

func (e *validationError) Unwrap() error { return ErrInvalidRequest }

func invalidRequestError() error {
	return ErrInvalidRequest
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{ErrInvalidRequest, http.StatusBadRequest},
	{ErrUnauthorized, http.StatusUnauthorized},

	{feedomain.ErrInvalidInterval, http.StatusBadRequest},
	{feedomain.ErrUnknownEligibility, http.StatusBadRequest},
	{feedomain.ErrInvalidSchedule, http.StatusUnprocessableEntity},

	{zonedomain.ErrInvalidName, http.StatusBadRequest},
	{zonedomain.ErrInvalidCode, http.StatusBadRequest},
	{zonedomain.ErrInvalidTimeZone, http.StatusBadRequest},
	{zonedomain.ErrInvalidCurrency, http.StatusBadRequest},
	{zonedomain.ErrNotFound, http.StatusNotFound},
	{zonedomain.ErrDuplicateCode, http.StatusConflict},

	{vehicledomain.ErrInvalidUser, http.StatusBadRequest},
	{vehicledomain.ErrInvalidPlate, http.StatusBadRequest},
	{vehicledomain.ErrNotFound, http.StatusNotFound},
	{vehicledomain.ErrDuplicatePlate, http.StatusConflict},

	{sessiondomain.ErrInvalidUser, http.StatusBadRequest},
	{sessiondomain.ErrNotFound, http.StatusNotFound},
	{sessiondomain.ErrActiveSessionExists, http.StatusConflict},
	{sessiondomain.ErrAlreadyEnded, http.StatusConflict},
}

// AbortWithError maps err onto a status code and the error envelope. Errors
// without a known sentinel become a 500 whose detail stays in the logs.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	for _, entry := range errorStatuses {
		if !errors.Is(err, entry.err) {
			continue
		}
		body := errorBody{Type: entry.err.Error(), Message: err.Error()}
		var verr *validationError
		if errors.As(err, &verr) {
			body.Type = verr.code
			body.Field = verr.field
		}
		c.AbortWithStatusJSON(entry.status, gin.H{"error": body})
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errorBody{
		Type:    ErrInternal.Error(),
		Message: "internal server error",
	}})
}
