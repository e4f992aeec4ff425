package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/cv-tailor/internal/adapt"
	"github.com/jonathan/cv-tailor/internal/analyzer"
	"github.com/jonathan/cv-tailor/internal/fetch"
	"github.com/jonathan/cv-tailor/internal/profile"
)

// HTTPStatus maps pipeline errors to response codes. Bad input (unreachable
// posting, unusable page, invalid profile) is the caller's problem; an
// unreachable completion endpoint is a dependency outage.
func HTTPStatus(err error) int {
	var fetchErr *fetch.Error
	var extractErr *analyzer.ExtractionError
	var validationErr *profile.ValidationError
	var unavailableErr *adapt.UnavailableError

	switch {
	case errors.As(err, &fetchErr), errors.As(err, &extractErr), errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
