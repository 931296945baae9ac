package handler

import (
	"net/http"

	"playverse/internal/notifications/service"
	"playverse/pkg/contracts"
	httputil "playverse/pkg/http"
	"playverse/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type BroadcastHandler struct {
	service service.BroadcastService
	admin   contracts.Guard
	log     *logger.Logger
}

func NewBroadcastHandler(service service.BroadcastService, admin contracts.Guard, log *logger.Logger) *BroadcastHandler {
	return &BroadcastHandler{service: service, admin: admin, log: log}
}

func (h *BroadcastHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/events/:id/send-confirmation", h.admin.Protect(h.SendConfirmation))
	router.POST("/api/v1/events/:id/send-cancellation", h.admin.Protect(h.SendCancellation))
}

type confirmationResponse struct {
	Message           string         `json:"message"`
	ConfirmationCount int            `json:"confirmationCount"`
	Recipients        int            `json:"recipients"`
	Data              map[string]any `json:"data"`
}

type cancellationResponse struct {
	Message           string         `json:"message"`
	CancellationCount int            `json:"cancellationCount"`
	Recipients        int            `json:"recipients"`
	Data              map[string]any `json:"data"`
}

func (h *BroadcastHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BroadcastHandler) writeJSON(w http.ResponseWriter, handler string, body any) {
	if err := httputil.WriteJSON(w, http.StatusOK, body); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *BroadcastHandler) SendConfirmation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.service.SendConfirmation(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "SendConfirmation", err)
		return
	}
	h.writeJSON(w, "SendConfirmation", confirmationResponse{
		Message:           "Confirmation messages sent",
		ConfirmationCount: b.Count,
		Recipients:        b.Recipients,
		Data:              b.Response,
	})
}

func (h *BroadcastHandler) SendCancellation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.service.SendCancellation(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "SendCancellation", err)
		return
	}
	h.writeJSON(w, "SendCancellation", cancellationResponse{
		Message:           "Cancellation messages sent",
		CancellationCount: b.Count,
		Recipients:        b.Recipients,
		Data:              b.Response,
	})
}
