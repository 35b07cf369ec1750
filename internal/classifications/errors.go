package classifications

import (
	"errors"
	"net/http"
)

// Validation errors for operator classifications.
var (
	ErrKindRequired        = errors.New("please choose a type")
	ErrUnknownKind         = errors.New("unknown document type")
	ErrDescriptionRequired = errors.New("please enter the work order description")
)

// IsValidation reports whether err is a classification validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrKindRequired) ||
		errors.Is(err, ErrUnknownKind) ||
		errors.Is(err, ErrDescriptionRequired)
}

// MapHTTPStatus maps classification validation errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if IsValidation(err) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
