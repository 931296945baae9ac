package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"playverse/internal/venues/service"
	"playverse/pkg/contracts"
	httputil "playverse/pkg/http"
	"playverse/pkg/logger"
	"playverse/pkg/model"
)

// envelope is the response shape of the venue endpoints.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type VenueHandler struct {
	service service.VenueService
	admin   contracts.Guard
	log     *logger.Logger
}

func NewVenueHandler(service service.VenueService, admin contracts.Guard, log *logger.Logger) *VenueHandler {
	return &VenueHandler{service: service, admin: admin, log: log}
}

func (h *VenueHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/venues", h.GetAll)
	router.GET("/api/v1/venues/:id", h.GetByID)
	router.POST("/api/v1/venues", h.admin.Protect(h.Create))
	router.PUT("/api/v1/venues/:id", h.admin.Protect(h.Update))
	router.DELETE("/api/v1/venues/:id", h.admin.Protect(h.Delete))
}

func (h *VenueHandler) respond(w http.ResponseWriter, handler string, status int, body envelope) {
	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *VenueHandler) fail(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *VenueHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var v model.Venue
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		h.respond(w, "Create", http.StatusBadRequest, envelope{Message: "Invalid request body"})
		return
	}
	if err := h.service.Create(r.Context(), &v); err != nil {
		h.fail(w, "Create", err)
		return
	}
	h.respond(w, "Create", http.StatusCreated, envelope{Success: true, Data: v, Message: "Venue created successfully"})
}

func (h *VenueHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	venues, err := h.service.GetAll(r.Context())
	if err != nil {
		h.fail(w, "GetAll", err)
		return
	}
	h.respond(w, "GetAll", http.StatusOK, envelope{Success: true, Data: venues})
}

func (h *VenueHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.fail(w, "GetByID", err)
		return
	}
	h.respond(w, "GetByID", http.StatusOK, envelope{Success: true, Data: v})
}

func (h *VenueHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.VenueUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.respond(w, "Update", http.StatusBadRequest, envelope{Message: "Invalid request body"})
		return
	}
	v, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.fail(w, "Update", err)
		return
	}
	h.respond(w, "Update", http.StatusOK, envelope{Success: true, Data: v, Message: "Venue updated successfully"})
}

func (h *VenueHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.fail(w, "Delete", err)
		return
	}
	h.respond(w, "Delete", http.StatusOK, envelope{Success: true, Message: "Venue deleted successfully"})
}
