package handler

import (
	"reelsmith/internal/service"
)

// Handler wires HTTP routes to the service layer.
type Handler struct {
	Service *service.Service
}

func NewHandler() *Handler {
	return &Handler{
		Service: service.NewService(),
	}
}

// NewHandlerWithService builds a handler around an existing service,
// used by the server entrypoint and tests.
func NewHandlerWithService(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}
