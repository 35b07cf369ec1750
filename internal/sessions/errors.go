package sessions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/voidsort/internal/archive"
	"github.com/JaimeStill/voidsort/internal/builds"
	"github.com/JaimeStill/voidsort/internal/classifications"
	"github.com/JaimeStill/voidsort/internal/documents"
)

// Session errors. State errors leave the session unchanged.
var (
	ErrAddressRequired = errors.New("please enter the property address")
	ErrNotFound        = errors.New("session not found")
	ErrNotLast         = errors.New("finish is only available on the last document")
	ErrFinalizing      = errors.New("session is finalizing")
	ErrFinished        = errors.New("session is finished")
	ErrCapacity        = errors.New("too many active sessions")
	ErrInvalidID       = errors.New("invalid session id")
	ErrInvalidBody     = errors.New("invalid request body")
)

// MapHTTPStatus maps session, input, validation, and build errors to HTTP
// status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotLast), errors.Is(err, ErrFinalizing), errors.Is(err, ErrFinished):
		return http.StatusConflict
	case errors.Is(err, ErrCapacity):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrAddressRequired), errors.Is(err, archive.ErrAddressRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidBody):
		return http.StatusBadRequest
	case classifications.IsValidation(err):
		return http.StatusUnprocessableEntity
	case documents.IsInput(err):
		return documents.MapHTTPStatus(err)
	}
	return builds.MapHTTPStatus(err)
}
