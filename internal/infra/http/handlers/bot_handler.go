package handlers

import (
	"net/http"

	"github.com/fenixacademy/funnel-backend/internal/infra/http/middleware"
	"github.com/fenixacademy/funnel-backend/internal/usecase"
)

// BotHandler recibe las aplicaciones del embudo del bot de IA: un solo POST
// con el formulario corto, sin sesión por pasos.
type BotHandler struct {
	Qualification *usecase.QualificationUseCase
	Limiter       *RateLimiter
}

func NewBotHandler(qualification *usecase.QualificationUseCase, limiter *RateLimiter) *BotHandler {
	return &BotHandler{
		Qualification: qualification,
		Limiter:       limiter,
	}
}

type botLeadResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Offer      string `json:"offer"`
	Dispatched bool   `json:"dispatched"`
}

func (h *BotHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(getClientIP(r)) {
		respondJSON(w, http.StatusTooManyRequests, errorResponse{Error: "demasiadas solicitudes, intenta de nuevo en unos minutos"})
		return
	}

	var input usecase.BotLeadInput
	if !decodeBody(w, r, &input) {
		return
	}

	lead, dispatched, err := h.Qualification.SubmitBot(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}

	if dispatched {
		middleware.RecordLeadSubmitted(string(lead.Status), string(lead.Offer))
	}

	respondJSON(w, http.StatusCreated, botLeadResponse{
		ID:         lead.ID,
		Status:     string(lead.Status),
		Offer:      string(lead.Offer),
		Dispatched: dispatched,
	})
}
