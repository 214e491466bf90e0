package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound             = errors.New("hotel not found")
	ErrSuppliersUnavailable = errors.New("all suppliers failed to provide data")
	ErrCacheUnavailable     = errors.New("cache unavailable")
	ErrSupplierStatus       = errors.New("supplier returned non-2xx status")
)

type SupplierFailure struct {
	Supplier string
	Err      error
}

// SuppliersUnavailableError is returned when not a single supplier answered.
type SuppliersUnavailableError struct {
	Failures []SupplierFailure
}

func (e *SuppliersUnavailableError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Supplier, f.Err))
	}
	if len(parts) == 0 {
		return ErrSuppliersUnavailable.Error()
	}
	return ErrSuppliersUnavailable.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *SuppliersUnavailableError) Is(target error) bool {
	return target == ErrSuppliersUnavailable
}

func (e *SuppliersUnavailableError) Status() int { return http.StatusServiceUnavailable }

// HTTPStatus maps an error from the catalog pipeline to a response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSuppliersUnavailable), errors.Is(err, ErrCacheUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
