package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/tallyledger/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeUserUnknown          = "USER_UNKNOWN"
	CodeUserExists           = "USER_EXISTS"
	CodeDrinkUnknown         = "DRINK_UNKNOWN"
	CodeFreeDrinksDisabled   = "FREE_DRINKS_DISABLED"
	CodeCommentRequired      = "COMMENT_REQUIRED"
	CodeCashUserMissing      = "CASH_USER_MISSING"
	CodeCannotRemoveCount    = "CANNOT_REMOVE_COUNT"
	CodeInvalidPin           = "INVALID_PIN"
	CodePinSaveFailed        = "PIN_SAVE_FAILED"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrUnauthorized), errors.Is(err, model.ErrIdentityUnknown):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Not authorized for this user"}}
	case errors.Is(err, model.ErrConfirmationRequired):
		return &httpError{http.StatusPreconditionFailed, APIError{CodeConfirmationRequired, "Confirmation phrase required"}}

	case errors.Is(err, model.ErrUserUnknown):
		return &httpError{http.StatusNotFound, APIError{CodeUserUnknown, "User unknown"}}
	case errors.Is(err, model.ErrUserExists):
		return &httpError{http.StatusConflict, APIError{CodeUserExists, "User already exists"}}
	case errors.Is(err, model.ErrReservedUserName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "User name is reserved"}}
	case errors.Is(err, model.ErrDrinkUnknown):
		return &httpError{http.StatusNotFound, APIError{CodeDrinkUnknown, "Drink unknown"}}
	case errors.Is(err, model.ErrFreeDrinksDisabled):
		return &httpError{http.StatusConflict, APIError{CodeFreeDrinksDisabled, "Free drinks are disabled"}}
	case errors.Is(err, model.ErrCommentRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeCommentRequired, err.Error()}}
	case errors.Is(err, model.ErrCashUserMissing):
		return &httpError{http.StatusConflict, APIError{CodeCashUserMissing, "Cash user missing"}}
	case errors.Is(err, model.ErrCannotRemoveCount):
		return &httpError{http.StatusConflict, APIError{CodeCannotRemoveCount, "Cannot remove more free drinks than booked"}}

	case errors.Is(err, model.ErrInvalidDrinkName), errors.Is(err, model.ErrNegativePrice):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}

	case errors.Is(err, model.ErrInvalidPin):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPin, "PIN must be exactly 4 digits"}}
	case errors.Is(err, model.ErrPinSaveFailed):
		return &httpError{http.StatusInternalServerError, APIError{CodePinSaveFailed, "Failed to save PIN"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
