package handler

import "github.com/julienschmidt/httprouter"

func (h *EventHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/events", h.List)
	router.POST("/api/v1/events", h.admin.Protect(h.Create))
	router.GET("/api/v1/events/:id", h.Get)
	router.PUT("/api/v1/events/:id", h.admin.Protect(h.Update))
	router.DELETE("/api/v1/events/:id", h.admin.Protect(h.Delete))
	router.GET("/api/v1/events/:id/successful-payments", h.SuccessfulPayments)

	// Public SEO links: /event-slots/green-arena/indiranagar/2025-05-04/6.00-pm_7.00-pm
	router.GET("/api/v1/event-slots/:venue/:location/:date/:slot", h.FindBySlot)

	router.GET("/api/v1/event-reports/by-venue", h.TodayByVenue)
	router.GET("/api/v1/event-reports/daily", h.DailyReport)

	router.GET("/api/v1/event-exports/excel", h.admin.Protect(h.Export))
	router.POST("/api/v1/event-imports/excel", h.admin.Protect(h.Import))

	router.GET("/api/v1/refunds/events-with-payments", h.admin.Protect(h.EventsWithPayments))
}
