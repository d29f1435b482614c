package apierr

import (
	"errors"
	"fmt"
	"net/http"

	svcerr "github.com/yungbote/supplesafe-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From maps a service error onto an HTTP status and a stable code.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, svcerr.ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, svcerr.ErrValidation):
		return New(http.StatusUnprocessableEntity, "validation_failed", err)
	case errors.Is(err, svcerr.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, svcerr.ErrExtraction):
		return New(http.StatusBadGateway, "extraction_failed", err)
	case errors.Is(err, svcerr.ErrPersistence):
		return New(http.StatusServiceUnavailable, "persistence_failed", err)
	default:
		return New(http.StatusInternalServerError, "internal_error", err)
	}
}
