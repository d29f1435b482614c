package apierr

import (
	"fmt"
	"net/http"
	"testing"

	svcerr "github.com/yungbote/supplesafe-backend/internal/pkg/errors"
)

func TestFromMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: no session", svcerr.ErrUnauthorized), http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("%w: name is required", svcerr.ErrValidation), http.StatusUnprocessableEntity, "validation_failed"},
		{svcerr.ErrNotFound, http.StatusNotFound, "not_found"},
		{fmt.Errorf("%w: bad json", svcerr.ErrExtraction), http.StatusBadGateway, "extraction_failed"},
		{fmt.Errorf("%w: insert", svcerr.ErrPersistence), http.StatusServiceUnavailable, "persistence_failed"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		got := From(tc.err)
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("From(%v) = %d/%s, want %d/%s", tc.err, got.Status, got.Code, tc.status, tc.code)
		}
	}
	if From(nil) != nil {
		t.Fatalf("From(nil) should be nil")
	}
	explicit := New(http.StatusTeapot, "teapot", nil)
	if got := From(fmt.Errorf("wrapped: %w", explicit)); got != explicit {
		t.Fatalf("From should unwrap an existing *Error")
	}
}
