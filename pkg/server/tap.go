package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brewhouse/tapkeeper/pkg/taproom"
)

type tapResponse struct {
	Number    int          `json:"number"`
	Keg       *kegResponse `json:"keg,omitempty"`
	IsLastKeg bool         `json:"isLastKeg"`
}

type assignKegRequest struct {
	KegID string `json:"kegId"`
}

func (s *Server) listTaps(w http.ResponseWriter, _ *http.Request) {
	taps := s.room.Taps()

	response := make([]tapResponse, 0, len(taps))

	for _, tap := range taps {
		entry := tapResponse{Number: tap.Number, IsLastKeg: tap.IsLastKeg}

		if tap.Keg != nil {
			keg := kegFromModel(*tap.Keg)
			entry.Keg = &keg
		}

		response = append(response, entry)
	}

	s.respond(w, http.StatusOK, response)
}

func (s *Server) assignKeg(w http.ResponseWriter, r *http.Request) {
	number, err := tapNumber(r)
	if err != nil {
		s.respondError(w, err)

		return
	}

	var request assignKegRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondError(w, fmt.Errorf("%w: decoding request: %v", taproom.ErrInvalidArgument, err))

		return
	}

	if err := s.room.AssignKeg(r.Context(), number, request.KegID); err != nil {
		s.respondError(w, err)

		return
	}

	s.respond(w, http.StatusNoContent, nil)
}

// kickTap runs the tap-side kick flow: unassign, then decrement or remove.
// The body names the keg expected on the tap so a stale client cannot kick
// a keg that was swapped out under it.
func (s *Server) kickTap(w http.ResponseWriter, r *http.Request) {
	number, err := tapNumber(r)
	if err != nil {
		s.respondError(w, err)

		return
	}

	var request assignKegRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondError(w, fmt.Errorf("%w: decoding request: %v", taproom.ErrInvalidArgument, err))

		return
	}

	keg, removed, err := s.room.KickAndUnassign(r.Context(), request.KegID, number)
	if err != nil {
		s.respondError(w, err)

		return
	}

	response := kickResponse{Removed: removed}
	if keg != nil {
		kr := kegFromModel(*keg)
		response.Keg = &kr
	}

	s.respond(w, http.StatusOK, response)
}

func (s *Server) unassignKeg(w http.ResponseWriter, r *http.Request) {
	number, err := tapNumber(r)
	if err != nil {
		s.respondError(w, err)

		return
	}

	if err := s.room.UnassignKeg(r.Context(), number); err != nil {
		s.respondError(w, err)

		return
	}

	s.respond(w, http.StatusNoContent, nil)
}

func tapNumber(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "number")

	number, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: tap number %q is not an integer", taproom.ErrInvalidArgument, raw)
	}

	return number, nil
}
