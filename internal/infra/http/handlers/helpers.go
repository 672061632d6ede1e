package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fenixacademy/funnel-backend/internal/entity"
	"github.com/fenixacademy/funnel-backend/internal/usecase"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError mapea los errores de dominio a códigos HTTP: sesión inexistente
// → 404, violación de la máquina de estados o de una regla → 422/409, el
// resto → 500.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrSessionClosed),
		errors.Is(err, entity.ErrSessionBusy),
		errors.Is(err, entity.ErrWrongStep),
		errors.Is(err, entity.ErrInvalidOption),
		errors.Is(err, entity.ErrContactIncomplete),
		errors.Is(err, entity.ErrGoalRequired):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case usecase.IsDomainError(err):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "JSON inválido"})
		return false
	}
	return true
}
