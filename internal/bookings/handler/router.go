package handler

import "github.com/julienschmidt/httprouter"

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/events/:id/book", h.Book)
	router.POST("/api/v1/events/:id/refund/:participantId", h.admin.Protect(h.Refund))

	// PayU server-to-server callback and browser returns (surl/furl).
	router.POST("/api/v1/payments/payu/webhook", h.Webhook)
	router.POST("/api/v1/payments/payu/success", h.PaymentSuccess)
	router.POST("/api/v1/payments/payu/failure", h.PaymentFailure)
}
