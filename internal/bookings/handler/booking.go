package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"playverse/internal/bookings/service"
	"playverse/pkg/contracts"
	apperrors "playverse/pkg/errors"
	httputil "playverse/pkg/http"
	"playverse/pkg/logger"
	"playverse/pkg/model"
	"playverse/pkg/payu"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Failure reasons appended to the client redirect.
const (
	ReasonPaymentFailed     = "payment_failed"
	ReasonServerError       = "server_error"
	ReasonSignatureMismatch = "signature_mismatch"
	ReasonBookingNotFound   = "booking_not_found"
	ReasonInsufficientSlots = "insufficient_slots"
	ReasonPaymentPending    = "payment_pending"
)

const invalidGatewayResponse = "Invalid response from PayU"

type BookingHandler struct {
	service       service.BookingService
	admin         contracts.Guard
	log           *logger.Logger
	clientBaseURL string
}

func NewBookingHandler(service service.BookingService, admin contracts.Guard, log *logger.Logger, clientBaseURL string) *BookingHandler {
	return &BookingHandler{
		service:       service,
		admin:         admin,
		log:           log,
		clientBaseURL: strings.TrimRight(clientBaseURL, "/"),
	}
}

type webhookAck struct {
	Status  string `json:"status"`
	Outcome string `json:"outcome,omitempty"`
	Note    string `json:"note,omitempty"`
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writeJSON(w http.ResponseWriter, handler string, status int, body any) {
	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, "Book", http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}

	reservation, err := h.service.Reserve(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}
	h.writeJSON(w, "Book", http.StatusOK, reservation)
}

// parseGatewayResponse accepts both the form-encoded callback PayU posts and
// a JSON body.
func parseGatewayResponse(r *http.Request) (*payu.Response, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		return payu.ParseJSON(body)
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return payu.ParseForm(r.PostForm)
}

func (h *BookingHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp, err := parseGatewayResponse(r)
	if err != nil {
		h.log.Warn("Malformed payment webhook", "error", err)
		h.writeError(w, "Webhook", apperrors.InvalidInput("Invalid webhook payload"))
		return
	}

	result, err := h.service.HandleGatewayResponse(r.Context(), service.SourceWebhook, resp)
	if err != nil {
		h.writeError(w, "Webhook", err)
		return
	}
	h.writeJSON(w, "Webhook", http.StatusOK, webhookAck{
		Status:  "ok",
		Outcome: string(result.Outcome),
		Note:    result.Note,
	})
}

func (h *BookingHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.redirect(w, r, service.SourceRedirectSuccess, "PaymentSuccess")
}

func (h *BookingHandler) PaymentFailure(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.redirect(w, r, service.SourceRedirectFailure, "PaymentFailure")
}

// redirect reconciles a browser return from the gateway and sends the player
// back to the event page with the outcome in the query string.
func (h *BookingHandler) redirect(w http.ResponseWriter, r *http.Request, source service.Source, handler string) {
	resp, err := parseGatewayResponse(r)
	if err != nil || resp.Status == "" {
		h.log.Warn("Malformed payment redirect", "handler", handler, "error", err)
		h.writeError(w, handler, apperrors.InvalidInput(invalidGatewayResponse))
		return
	}

	result, err := h.service.HandleGatewayResponse(r.Context(), source, resp)
	if err != nil {
		reason := ReasonServerError
		switch {
		case apperrors.HasCode(err, apperrors.CodeGatewaySignature):
			reason = ReasonSignatureMismatch
		case apperrors.HasCode(err, apperrors.CodeNotFound):
			reason = ReasonBookingNotFound
		default:
			h.log.Error("Payment redirect failed", "handler", handler, "txnid", resp.TxnID, "error", err)
		}
		httputil.WriteRedirect(w, r, failureURL(h.clientBaseURL, unverifiedEventID(resp), reason))
		return
	}

	base := result.ClientURL
	if base == "" {
		base = h.clientBaseURL
	}

	if result.Status == model.PaymentSuccess {
		httputil.WriteRedirect(w, r, successURL(base, result.EventID, result.TxnID))
		return
	}

	reason := resp.ErrorMessage
	switch {
	case result.Note == service.NoteInsufficientSlots:
		reason = ReasonInsufficientSlots
	case result.Status == model.PaymentPending:
		reason = ReasonPaymentPending
	case reason == "":
		reason = ReasonPaymentFailed
	}
	httputil.WriteRedirect(w, r, failureURL(base, result.EventID, reason))
}

// unverifiedEventID reads the event id echoed back in udf3. It is only used to
// pick the page to land on, never to change state.
func unverifiedEventID(resp *payu.Response) string {
	if primitive.IsValidObjectID(resp.UDF3) {
		return resp.UDF3
	}
	return ""
}

func eventPage(base, eventID string) string {
	base = strings.TrimRight(base, "/")
	if eventID == "" {
		return base + "/"
	}
	return base + "/event/" + url.PathEscape(eventID)
}

func successURL(base, eventID, txnID string) string {
	q := url.Values{}
	q.Set("payment", "success")
	q.Set("txnid", txnID)
	return eventPage(base, eventID) + "?" + q.Encode()
}

func failureURL(base, eventID, reason string) string {
	q := url.Values{}
	q.Set("payment", "failure")
	q.Set("reason", reason)
	return eventPage(base, eventID) + "?" + q.Encode()
}

func (h *BookingHandler) Refund(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	outcome, err := h.service.Refund(r.Context(), ps.ByName("id"), ps.ByName("participantId"))
	if err != nil {
		h.writeError(w, "Refund", err)
		return
	}
	h.writeJSON(w, "Refund", http.StatusOK, outcome)
}
