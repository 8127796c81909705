package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brewhouse/tapkeeper/pkg/model"
	"github.com/brewhouse/tapkeeper/pkg/taproom"
)

type kegResponse struct {
	ID        string `json:"id"`
	BeerName  string `json:"beerName"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	OnTap     bool   `json:"onTap"`
	TapNumber *int   `json:"tapNumber,omitempty"`
}

func kegFromModel(keg model.Keg) kegResponse {
	return kegResponse{
		ID:        keg.ID,
		BeerName:  keg.BeerName,
		Size:      string(keg.Size),
		Quantity:  keg.Quantity,
		OnTap:     keg.OnTap,
		TapNumber: keg.TapNumber,
	}
}

type addKegRequest struct {
	BeerName string `json:"beerName"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

func (s *Server) listKegs(w http.ResponseWriter, _ *http.Request) {
	kegs := s.room.Kegs()

	response := make([]kegResponse, 0, len(kegs))
	for _, keg := range kegs {
		response = append(response, kegFromModel(keg))
	}

	s.respond(w, http.StatusOK, response)
}

func (s *Server) addKeg(w http.ResponseWriter, r *http.Request) {
	var request addKegRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondError(w, fmt.Errorf("%w: decoding request: %v", taproom.ErrInvalidArgument, err))

		return
	}

	keg, err := s.room.AddKeg(r.Context(), request.BeerName, model.KegSize(request.Size), request.Quantity)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respond(w, http.StatusCreated, kegFromModel(*keg))
}

func (s *Server) incrementKeg(w http.ResponseWriter, r *http.Request) {
	keg, err := s.room.IncrementQuantity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respond(w, http.StatusOK, kegFromModel(*keg))
}

type kickResponse struct {
	Removed bool         `json:"removed"`
	Keg     *kegResponse `json:"keg,omitempty"`
}

func (s *Server) kickKeg(w http.ResponseWriter, r *http.Request) {
	keg, removed, err := s.room.DecrementOrRemove(r.Context(), chi.URLParam(r, "id"))
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

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if err := s.room.Load(r.Context()); err != nil {
		s.respondError(w, err)

		return
	}

	s.respond(w, http.StatusNoContent, nil)
}
