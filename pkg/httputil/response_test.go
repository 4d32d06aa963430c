package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wardenauth/warden/pkg/errdefs"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credentials", errdefs.ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid token", errdefs.ErrInvalidToken, http.StatusUnauthorized},
		{"wrapped invalid token", fmt.Errorf("verify: %w", errdefs.ErrInvalidToken), http.StatusUnauthorized},
		{"forbidden", errdefs.ErrForbidden, http.StatusForbidden},
		{"not found", errdefs.ErrNotFound, http.StatusNotFound},
		{"conflict", errdefs.ErrConflict, http.StatusBadRequest},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusForError(tt.err); got != tt.want {
				t.Errorf("StatusForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWriteError_MasksInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Error != "internal server error" {
		t.Errorf("internal detail leaked: %q", resp.Error)
	}
}

func TestWriteError_TaxonomyMessagePassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errdefs.ErrInvalidCredentials)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Error == "internal server error" {
		t.Error("classified errors must keep their message")
	}
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteSuccess(rec, map[string]string{"status": "ok"}); err != nil {
		t.Fatalf("WriteSuccess failed: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
}

func TestWriteNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteNoContent(rec)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Error("204 responses must carry no body")
	}
}
