package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Handlers lets several domain handlers share one router.
type Handlers []Handler

func (hs Handlers) RegisterRoutes(router *httprouter.Router) {
	for _, h := range hs {
		h.RegisterRoutes(router)
	}
}

// Guard wraps a route that only authorised callers may reach.
type Guard interface {
	Protect(next httprouter.Handle) httprouter.Handle
}

// OpenGuard lets every request through.
type OpenGuard struct{}

func (OpenGuard) Protect(next httprouter.Handle) httprouter.Handle { return next }
