package walks

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteServiceError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrBadState, http.StatusUnprocessableEntity},
		{ErrConflict, http.StatusConflict},
		{ErrStoreUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("lookup: %w", ErrStoreUnavailable), http.StatusServiceUnavailable},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeServiceError(rec, c.err)
		if rec.Code != c.want {
			t.Fatalf("err %v: expected status %d, got %d", c.err, c.want, rec.Code)
		}
	}
}
