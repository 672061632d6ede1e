package handlers

import (
	"net/http"

	"github.com/fenixacademy/funnel-backend/internal/usecase"
)

// TrackHandler acepta eventos de navegación del frontend (PageView al aterrizar,
// ViewContent al reproducir el VSL) y los encola hacia la Conversions API.
// Fire-and-forget: siempre 202 si el evento es conocido.
type TrackHandler struct {
	Tracker usecase.EventTracker
}

func NewTrackHandler(tracker usecase.EventTracker) *TrackHandler {
	return &TrackHandler{Tracker: tracker}
}

var knownEvents = map[string]bool{
	"PageView":         true,
	"ViewContent":      true,
	"InitiateCheckout": true,
	"Contact":          true,
	"Purchase":         true,
}

type trackRequest struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

func (h *TrackHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if !knownEvents[req.Event] {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "evento desconocido"})
		return
	}

	h.Tracker.Track(r.Context(), req.Event, req.Data)
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
