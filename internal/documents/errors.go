package documents

import (
	"errors"
	"net/http"
)

// Input errors raised while loading an archive. None of them leave partial state
// behind; the caller may retry the load.
var (
	ErrNotArchive       = errors.New("please drop a .zip file")
	ErrCorruptArchive   = errors.New("failed to read the zip archive")
	ErrNoDocuments      = errors.New("no PDF files found in the zip archive")
	ErrTooManyDocuments = errors.New("zip archive contains too many PDF files")
	ErrDocumentTooLarge = errors.New("PDF entry exceeds maximum document size")
)

// IsInput reports whether err is an archive input error.
func IsInput(err error) bool {
	return errors.Is(err, ErrNotArchive) ||
		errors.Is(err, ErrCorruptArchive) ||
		errors.Is(err, ErrNoDocuments) ||
		errors.Is(err, ErrTooManyDocuments) ||
		errors.Is(err, ErrDocumentTooLarge)
}

// MapHTTPStatus maps document input errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotArchive) || errors.Is(err, ErrCorruptArchive) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNoDocuments) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrTooManyDocuments) || errors.Is(err, ErrDocumentTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
