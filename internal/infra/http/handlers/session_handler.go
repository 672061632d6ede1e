package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fenixacademy/funnel-backend/internal/entity"
	"github.com/fenixacademy/funnel-backend/internal/infra/http/middleware"
	"github.com/fenixacademy/funnel-backend/internal/usecase"
)

// SessionHandler expone el formulario de calificación paso a paso. Cada
// respuesta devuelve el estado completo de la sesión para que el cliente
// renderice sin estado propio.
type SessionHandler struct {
	Qualification *usecase.QualificationUseCase
	Limiter       *RateLimiter
}

func NewSessionHandler(qualification *usecase.QualificationUseCase, limiter *RateLimiter) *SessionHandler {
	return &SessionHandler{
		Qualification: qualification,
		Limiter:       limiter,
	}
}

type sessionAnswers struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Experience string `json:"experience"`
	Capital    string `json:"capital"`
	Time       string `json:"time"`
	Goal       string `json:"goal"`
}

type sessionResponse struct {
	ID             string         `json:"id"`
	Step           int            `json:"step"`
	TotalSteps     int            `json:"total_steps"`
	Offer          string         `json:"offer"`
	Analyzing      bool           `json:"analyzing"`
	ExitPrompt     bool           `json:"exit_prompt"`
	DownsellPrompt bool           `json:"downsell_prompt"`
	Success        bool           `json:"success"`
	Closed         bool           `json:"closed"`
	Answers        sessionAnswers `json:"answers"`
}

func toSessionResponse(s entity.FormSession) sessionResponse {
	return sessionResponse{
		ID:             s.ID,
		Step:           s.Step,
		TotalSteps:     entity.TotalSteps,
		Offer:          string(s.Offer),
		Analyzing:      s.Analyzing,
		ExitPrompt:     s.ExitPrompt,
		DownsellPrompt: s.DownsellPrompt,
		Success:        s.Success,
		Closed:         s.Closed,
		Answers: sessionAnswers{
			Name:       s.Name,
			Phone:      s.Phone,
			Experience: string(s.Experience),
			Capital:    string(s.Capital),
			Time:       string(s.Time),
			Goal:       s.Goal,
		},
	}
}

// Start abre una sesión nueva del formulario.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(getClientIP(r)) {
		respondJSON(w, http.StatusTooManyRequests, errorResponse{Error: "demasiadas solicitudes, intenta de nuevo en unos minutos"})
		return
	}

	session := h.Qualification.Start(r.Context())
	respondJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.Qualification.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

type selectRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Select registra una opción de los pasos 1-3; el avance llega solo tras la
// pausa visible.
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.Qualification.Select(chi.URLParam(r, "id"), entity.SelectionField(req.Field), req.Value)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

type contactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *SessionHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.Qualification.SetContact(chi.URLParam(r, "id"), req.Name, req.Phone)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	session, err := h.Qualification.Next(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	session, err := h.Qualification.Back(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

// Dismiss es el intento de cierre del modal; según el estado cierra de verdad
// o abre la confirmación de salida.
func (h *SessionHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	session, err := h.Qualification.Dismiss(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *SessionHandler) ConfirmExit(w http.ResponseWriter, r *http.Request) {
	session, err := h.Qualification.ConfirmExit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *SessionHandler) CancelExit(w http.ResponseWriter, r *http.Request) {
	session, err := h.Qualification.CancelExit(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *SessionHandler) AcceptDownsell(w http.ResponseWriter, r *http.Request) {
	session, err := h.Qualification.AcceptDownsell(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *SessionHandler) RejectDownsell(w http.ResponseWriter, r *http.Request) {
	session, err := h.Qualification.RejectDownsell(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

type submitRequest struct {
	Goal string `json:"goal"`
}

type submitResponse struct {
	sessionResponse
	Dispatched bool `json:"dispatched"`
}

// Submit despacha el lead a la hoja. dispatched=false significa que el envío
// no salió; la sesión queda igual y el cliente puede reintentar.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, dispatched, err := h.Qualification.Submit(r.Context(), chi.URLParam(r, "id"), req.Goal)
	if err != nil {
		respondError(w, err)
		return
	}

	if dispatched {
		middleware.RecordLeadSubmitted(string(entity.Classify(session.Capital, session.Experience, session.Time)), string(session.Offer))
	}

	respondJSON(w, http.StatusOK, submitResponse{
		sessionResponse: toSessionResponse(session),
		Dispatched:      dispatched,
	})
}

func (h *SessionHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	session, err := h.Qualification.Acknowledge(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}
