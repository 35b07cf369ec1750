package builds

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/voidsort/internal/archive"
	"github.com/JaimeStill/voidsort/pkg/storage"
)

// Domain errors for build operations.
var (
	ErrNotFound    = errors.New("build not found")
	ErrDuplicate   = errors.New("build already exists")
	ErrInvalidID   = errors.New("invalid build id")
	ErrInvalidBody = errors.New("invalid request body")
)

// MapHTTPStatus maps build domain errors to HTTP status codes, deferring to
// storage for blob errors.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidID) || errors.Is(err, ErrInvalidBody) {
		return http.StatusBadRequest
	}
	if errors.Is(err, archive.ErrAddressRequired) {
		return http.StatusUnprocessableEntity
	}
	return storage.MapHTTPStatus(err)
}
