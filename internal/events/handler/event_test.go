package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"playverse/internal/events/service"
	"playverse/pkg/contracts"
	apperrors "playverse/pkg/errors"
	httputil "playverse/pkg/http"
	"playverse/pkg/logger"
	"playverse/pkg/model"
	"playverse/pkg/spreadsheet"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEventService struct {
	service.EventService

	listFunc   func(ctx context.Context, sport string, page httputil.PageRequest) (*service.EventList, error)
	getFunc    func(ctx context.Context, idOrSlug string) (*model.EventView, error)
	createFunc func(ctx context.Context, e *model.Event) error
	updateFunc func(ctx context.Context, id string, updates *model.EventUpdate) (*model.Event, error)
	slotFunc   func(ctx context.Context, venue, location, date, slot string) (*model.Event, error)
	importFunc func(ctx context.Context, r io.Reader) ([]*model.Event, error)
	exportFunc func(ctx context.Context, w io.Writer) error
}

func (m *mockEventService) List(ctx context.Context, sport string, page httputil.PageRequest) (*service.EventList, error) {
	return m.listFunc(ctx, sport, page)
}

func (m *mockEventService) Get(ctx context.Context, idOrSlug string) (*model.EventView, error) {
	return m.getFunc(ctx, idOrSlug)
}

func (m *mockEventService) Create(ctx context.Context, e *model.Event) error {
	return m.createFunc(ctx, e)
}

func (m *mockEventService) Update(ctx context.Context, id string, updates *model.EventUpdate) (*model.Event, error) {
	return m.updateFunc(ctx, id, updates)
}

func (m *mockEventService) FindBySlot(ctx context.Context, venue, location, date, slot string) (*model.Event, error) {
	return m.slotFunc(ctx, venue, location, date, slot)
}

func (m *mockEventService) Import(ctx context.Context, r io.Reader) ([]*model.Event, error) {
	return m.importFunc(ctx, r)
}

func (m *mockEventService) Export(ctx context.Context, w io.Writer) error {
	return m.exportFunc(ctx, w)
}

// denyGuard rejects every protected request.
type denyGuard struct{}

func (denyGuard) Protect(httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		_ = httputil.WriteError(w, apperrors.Unauthorized("Admin token required"))
	}
}

func newRouter(svc service.EventService, guard contracts.Guard) *httprouter.Router {
	router := httprouter.New()
	NewEventHandler(svc, guard, logger.Discard(), 50).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestList(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantPage   httputil.PageRequest
	}{
		{name: "no paging", query: "?sport=football", wantStatus: http.StatusOK},
		{name: "paged and capped", query: "?page=2&limit=500", wantStatus: http.StatusOK, wantPage: httputil.PageRequest{Enabled: true, Page: 2, Limit: 50}},
		{name: "page without limit", query: "?page=2", wantStatus: http.StatusBadRequest},
		{name: "negative limit", query: "?page=1&limit=-4", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEventService{
				listFunc: func(_ context.Context, _ string, page httputil.PageRequest) (*service.EventList, error) {
					assert.Equal(t, tt.wantPage, page)
					return &service.EventList{Total: 1, Sport: "football", Events: []*model.EventView{}}, nil
				},
			}

			rec := serve(newRouter(svc, contracts.OpenGuard{}), http.MethodGet, "/api/v1/events"+tt.query, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := &mockEventService{
		getFunc: func(context.Context, string) (*model.EventView, error) {
			return nil, apperrors.NotFound("Event")
		},
	}

	rec := serve(newRouter(svc, contracts.OpenGuard{}), http.MethodGet, "/api/v1/events/some-slug", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Event not found")
}

func TestCreate(t *testing.T) {
	var got *model.Event
	svc := &mockEventService{
		createFunc: func(_ context.Context, e *model.Event) error {
			got = e
			e.Slug = "green-arena-indiranagar-2025-05-04-6-7-pm"
			return nil
		},
	}

	body := `{"name":"Sunday Football","description":"5v5","date":"2025-05-04","slot":"6-7 PM","price":250,` +
		`"sportsName":"football","venueName":"Green Arena","location":"Indiranagar","participantsLimit":10}`
	rec := serve(newRouter(svc, contracts.OpenGuard{}), http.MethodPost, "/api/v1/events", strings.NewReader(body))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC), got.Date)
	assert.Contains(t, rec.Body.String(), `"slug":"green-arena-indiranagar-2025-05-04-6-7-pm"`)
}

func TestCreate_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"name":`},
		{name: "bad date", body: `{"name":"Sunday Football","date":"04/05/2025"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEventService{
				createFunc: func(context.Context, *model.Event) error {
					t.Fatal("service must not be called")
					return nil
				},
			}

			rec := serve(newRouter(svc, contracts.OpenGuard{}), http.MethodPost, "/api/v1/events", strings.NewReader(tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdate_ParsesDate(t *testing.T) {
	svc := &mockEventService{
		updateFunc: func(_ context.Context, id string, u *model.EventUpdate) (*model.Event, error) {
			assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", id)
			require.NotNil(t, u.Date)
			assert.Equal(t, 2025, u.Date.Year())
			require.NotNil(t, u.Price)
			assert.Equal(t, 300.0, *u.Price)
			return &model.Event{Name: "Sunday Football"}, nil
		},
	}

	rec := serve(newRouter(svc, contracts.OpenGuard{}), http.MethodPut, "/api/v1/events/64b7f0c2a1b2c3d4e5f60718",
		strings.NewReader(`{"date":"2025-06-01","price":300}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Event updated successfully")
}

func TestAdminRoutesAreGuarded(t *testing.T) {
	router := newRouter(&mockEventService{}, denyGuard{})

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/events"},
		{http.MethodPut, "/api/v1/events/64b7f0c2a1b2c3d4e5f60718"},
		{http.MethodDelete, "/api/v1/events/64b7f0c2a1b2c3d4e5f60718"},
		{http.MethodGet, "/api/v1/event-exports/excel"},
		{http.MethodPost, "/api/v1/event-imports/excel"},
		{http.MethodGet, "/api/v1/refunds/events-with-payments"},
	}
	for _, r := range routes {
		rec := serve(router, r.method, r.path, strings.NewReader("{}"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", r.method, r.path)
	}
}

func TestFindBySlot(t *testing.T) {
	svc := &mockEventService{
		slotFunc: func(_ context.Context, venue, location, date, slot string) (*model.Event, error) {
			assert.Equal(t, "green-arena", venue)
			assert.Equal(t, "indiranagar", location)
			assert.Equal(t, "2025-05-04", date)
			assert.Equal(t, "6.00-pm_7.00-pm", slot)
			return &model.Event{Name: "Sunday Football"}, nil
		},
	}

	rec := serve(newRouter(svc, contracts.OpenGuard{}), http.MethodGet,
		"/api/v1/event-slots/green-arena/indiranagar/2025-05-04/6.00-pm_7.00-pm", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImport(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("note", "no file"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/event-imports/excel", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		newRouter(&mockEventService{}, contracts.OpenGuard{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please upload an Excel file")
	})

	t.Run("uploaded", func(t *testing.T) {
		svc := &mockEventService{
			importFunc: func(_ context.Context, r io.Reader) ([]*model.Event, error) {
				data, err := io.ReadAll(r)
				require.NoError(t, err)
				assert.Equal(t, "xlsx-bytes", string(data))
				return []*model.Event{{Name: "A"}, {Name: "B"}}, nil
			},
		}

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", "events.xlsx")
		require.NoError(t, err)
		_, err = fw.Write([]byte("xlsx-bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/event-imports/excel", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		newRouter(svc, contracts.OpenGuard{}).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp uploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, "Events Uploaded Successfully", resp.Message)
	})
}

func TestExport(t *testing.T) {
	svc := &mockEventService{
		exportFunc: func(_ context.Context, w io.Writer) error {
			_, err := w.Write([]byte("workbook"))
			return err
		},
	}

	rec := serve(newRouter(svc, contracts.OpenGuard{}), http.MethodGet, "/api/v1/event-exports/excel", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, spreadsheet.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=")
	assert.Equal(t, "workbook", rec.Body.String())
}

func TestExport_FailureIsJSON(t *testing.T) {
	svc := &mockEventService{
		exportFunc: func(context.Context, io.Writer) error {
			return apperrors.Internal("Failed to generate Excel file", nil)
		},
	}

	rec := serve(newRouter(svc, contracts.OpenGuard{}), http.MethodGet, "/api/v1/event-exports/excel", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}
