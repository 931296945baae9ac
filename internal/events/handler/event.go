package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"playverse/internal/events/service"
	"playverse/internal/events/validator"
	"playverse/pkg/contracts"
	apperrors "playverse/pkg/errors"
	httputil "playverse/pkg/http"
	"playverse/pkg/logger"
	"playverse/pkg/model"
	"playverse/pkg/spreadsheet"
)

const multipartMemory = 8 << 20

type EventHandler struct {
	service      service.EventService
	admin        contracts.Guard
	log          *logger.Logger
	maxPageLimit int
}

func NewEventHandler(service service.EventService, admin contracts.Guard, log *logger.Logger, maxPageLimit int) *EventHandler {
	return &EventHandler{
		service:      service,
		admin:        admin,
		log:          log,
		maxPageLimit: maxPageLimit,
	}
}

type eventRequest struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Date              string  `json:"date"`
	Slot              string  `json:"slot"`
	Price             float64 `json:"price"`
	ActualPrice       float64 `json:"actualPrice"`
	SportsName        string  `json:"sportsName"`
	VenueName         string  `json:"venueName"`
	Location          string  `json:"location"`
	VenueImage        string  `json:"venueImage"`
	ParticipantsLimit int     `json:"participantsLimit"`
}

func (req eventRequest) toModel() (*model.Event, error) {
	e := &model.Event{
		Name:              req.Name,
		Description:       req.Description,
		Slot:              req.Slot,
		Price:             req.Price,
		ActualPrice:       req.ActualPrice,
		SportsName:        req.SportsName,
		VenueName:         req.VenueName,
		Location:          req.Location,
		VenueImage:        req.VenueImage,
		ParticipantsLimit: req.ParticipantsLimit,
	}
	if req.Date != "" {
		date, err := validator.ParseDate(req.Date)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		e.Date = date
	}
	return e, nil
}

type eventUpdateRequest struct {
	model.EventUpdate
	Date *string `json:"date,omitempty"`
}

func (req eventUpdateRequest) toModel() (*model.EventUpdate, error) {
	u := req.EventUpdate
	u.Date = nil
	if req.Date != nil {
		date, err := validator.ParseDate(*req.Date)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		u.Date = &date
	}
	return &u, nil
}

type eventMessage struct {
	Message string       `json:"message"`
	Event   *model.Event `json:"event"`
}

type uploadResponse struct {
	Message string         `json:"message"`
	Count   int            `json:"count"`
	Events  []*model.Event `json:"events"`
}

func (h *EventHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *EventHandler) writeJSON(w http.ResponseWriter, handler string, status int, body any) {
	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := httputil.ExtractPage(r, h.maxPageLimit)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	list, err := h.service.List(r.Context(), r.URL.Query().Get("sport"), page)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	h.writeJSON(w, "List", http.StatusOK, list)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}
	h.writeJSON(w, "Get", http.StatusOK, view)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, "Create", http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}

	e, err := req.toModel()
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	if err := h.service.Create(r.Context(), e); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, e); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req eventUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, "Update", http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}

	updates, err := req.toModel()
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	e, err := h.service.Update(r.Context(), ps.ByName("id"), updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeJSON(w, "Update", http.StatusOK, eventMessage{Message: "Event updated successfully", Event: e})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	e, err := h.service.Delete(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	h.writeJSON(w, "Delete", http.StatusOK, eventMessage{Message: "Event deleted successfully", Event: e})
}

func (h *EventHandler) SuccessfulPayments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	summary, err := h.service.SuccessfulPayments(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "SuccessfulPayments", err)
		return
	}
	h.writeJSON(w, "SuccessfulPayments", http.StatusOK, summary)
}

func (h *EventHandler) FindBySlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	e, err := h.service.FindBySlot(r.Context(),
		ps.ByName("venue"),
		ps.ByName("location"),
		ps.ByName("date"),
		ps.ByName("slot"),
	)
	if err != nil {
		h.writeError(w, "FindBySlot", err)
		return
	}
	h.writeJSON(w, "FindBySlot", http.StatusOK, e)
}

func (h *EventHandler) TodayByVenue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	day, err := h.service.TodayByVenue(r.Context())
	if err != nil {
		h.writeError(w, "TodayByVenue", err)
		return
	}
	h.writeJSON(w, "TodayByVenue", http.StatusOK, day)
}

func (h *EventHandler) DailyReport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report, err := h.service.DailyReport(r.Context())
	if err != nil {
		h.writeError(w, "DailyReport", err)
		return
	}
	h.writeJSON(w, "DailyReport", http.StatusOK, report)
}

func (h *EventHandler) EventsWithPayments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	events, err := h.service.EventsWithPayments(r.Context())
	if err != nil {
		h.writeError(w, "EventsWithPayments", err)
		return
	}
	h.writeJSON(w, "EventsWithPayments", http.StatusOK, events)
}

func (h *EventHandler) Import(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.writeError(w, "Import", apperrors.InvalidInput("Please upload an Excel file"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Import", apperrors.InvalidInput("Please upload an Excel file"))
		return
	}
	defer file.Close()

	events, err := h.service.Import(r.Context(), file)
	if err != nil {
		h.writeError(w, "Import", err)
		return
	}
	h.writeJSON(w, "Import", http.StatusCreated, uploadResponse{
		Message: "Events Uploaded Successfully",
		Count:   len(events),
		Events:  events,
	})
}

func (h *EventHandler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf); err != nil {
		h.writeError(w, "Export", err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+spreadsheet.ExportFileName(time.Now()))
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Error("failed to write workbook", "handler", "Export", "error", err)
	}
}
