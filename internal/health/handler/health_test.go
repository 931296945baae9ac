package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"playverse/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

func TestHealthRoutes(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{"liveness", "/health", nil, http.StatusOK, `"status":"ok"`},
		{"legacy liveness", "/api/health", nil, http.StatusOK, `"status":"ok"`},
		{"ready", "/ready", nil, http.StatusOK, `"database":"ok"`},
		{"database down", "/ready", errors.New("no reachable servers"), http.StatusServiceUnavailable, `"status":"unavailable"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			ping := func(context.Context) error { return tt.pingErr }
			NewHealthHandler(ping, logger.Discard()).RegisterRoutes(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
