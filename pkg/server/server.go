package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/brewhouse/tapkeeper/pkg/model"
	"github.com/brewhouse/tapkeeper/pkg/taproom"
)

// Taproom is the engine surface the handlers need.
type Taproom interface {
	Kegs() []model.Keg
	Taps() []taproom.TapStatus
	AddKeg(ctx context.Context, beerName string, size model.KegSize, quantity int) (*model.Keg, error)
	IncrementQuantity(ctx context.Context, kegID string) (*model.Keg, error)
	DecrementOrRemove(ctx context.Context, kegID string) (*model.Keg, bool, error)
	AssignKeg(ctx context.Context, tapNumber int, kegID string) error
	UnassignKeg(ctx context.Context, tapNumber int) error
	KickAndUnassign(ctx context.Context, kegID string, tapNumber int) (*model.Keg, bool, error)
	Load(ctx context.Context) error
}

type Server struct {
	room   Taproom
	logger *zap.Logger
}

func New(room Taproom, logger *zap.Logger) *Server {
	return &Server{room: room, logger: logger}
}

func (s *Server) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/kegs", s.listKegs)
		api.Post("/kegs", s.addKeg)
		api.Post("/kegs/{id}/increment", s.incrementKeg)
		api.Post("/kegs/{id}/kick", s.kickKeg)

		api.Get("/taps", s.listTaps)
		api.Put("/taps/{number}/keg", s.assignKeg)
		api.Delete("/taps/{number}/keg", s.unassignKeg)
		api.Post("/taps/{number}/kick", s.kickTap)

		api.Post("/refresh", s.refresh)
	})

	return router
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("error encoding response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, taproom.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, taproom.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, taproom.ErrInvalidState), errors.Is(err, taproom.ErrNotAssigned):
		status = http.StatusConflict
	case errors.Is(err, taproom.ErrPersistence):
		status = http.StatusBadGateway
	}

	s.respond(w, status, errorResponse{Error: err.Error()})
}
