package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"playverse/internal/venues/service"
	"playverse/pkg/contracts"
	apperrors "playverse/pkg/errors"
	"playverse/pkg/logger"
	"playverse/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockVenueService struct {
	service.VenueService

	createFunc func(ctx context.Context, v *model.Venue) error
	getAllFunc func(ctx context.Context) ([]*model.Venue, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockVenueService) Create(ctx context.Context, v *model.Venue) error {
	return m.createFunc(ctx, v)
}

func (m *mockVenueService) GetAll(ctx context.Context) ([]*model.Venue, error) {
	return m.getAllFunc(ctx)
}

func (m *mockVenueService) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

type lockedGuard struct{}

func (lockedGuard) Protect(httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusUnauthorized)
	}
}

func newRouter(svc service.VenueService, guard contracts.Guard) *httprouter.Router {
	router := httprouter.New()
	NewVenueHandler(svc, guard, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreateVenue(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "created",
			body:       `{"name":"Green Arena","location":"Indiranagar","sport":"football","imageUrl":"https://img.example/a.png"}`,
			wantStatus: http.StatusCreated,
			wantBody:   `"success":true`,
		},
		{
			name:       "malformed body",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid request body",
		},
		{
			name:       "duplicate",
			body:       `{"name":"Green Arena","location":"Indiranagar","sport":"football","imageUrl":"https://img.example/a.png"}`,
			svcErr:     apperrors.Conflict("A venue with this name, location, and sport already exists."),
			wantStatus: http.StatusConflict,
			wantBody:   "already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockVenueService{createFunc: func(context.Context, *model.Venue) error { return tt.svcErr }}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/venues", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			newRouter(svc, contracts.OpenGuard{}).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestGetAllVenues_IsPublic(t *testing.T) {
	svc := &mockVenueService{
		getAllFunc: func(context.Context) ([]*model.Venue, error) {
			return []*model.Venue{{Name: "Green Arena"}, {Name: "Box Park"}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/venues", nil)
	rec := httptest.NewRecorder()
	newRouter(svc, lockedGuard{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Success bool          `json:"success"`
		Data    []model.Venue `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || len(body.Data) != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestVenueWritesAreGuarded(t *testing.T) {
	router := newRouter(&mockVenueService{}, lockedGuard{})

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/venues"},
		{http.MethodPut, "/api/v1/venues/64b7f0c2a1b2c3d4e5f60718"},
		{http.MethodDelete, "/api/v1/venues/64b7f0c2a1b2c3d4e5f60718"},
	} {
		req := httptest.NewRequest(r.method, r.path, strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", r.method, r.path, rec.Code)
		}
	}
}

func TestDeleteVenue(t *testing.T) {
	var deleted string
	svc := &mockVenueService{deleteFunc: func(_ context.Context, id string) error {
		deleted = id
		return nil
	}}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/venues/64b7f0c2a1b2c3d4e5f60718", nil)
	rec := httptest.NewRecorder()
	newRouter(svc, contracts.OpenGuard{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if deleted != "64b7f0c2a1b2c3d4e5f60718" {
		t.Errorf("deleted = %q", deleted)
	}
}
