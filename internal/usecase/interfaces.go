package usecase

import (
	"context"

	"github.com/fenixacademy/funnel-backend/internal/entity"
	"github.com/fenixacademy/funnel-backend/internal/infra/sheets"
)

// LeadGateway es el contrato contra la hoja remota. Create y Update devuelven
// un acuse de despacho, no una garantía de durabilidad: el transporte es
// opaco y no hay reintentos (ver sheets.Client).
type LeadGateway interface {
	Create(input sheets.CreateLeadInput) (entity.Lead, bool)
	Read() ([]entity.Lead, error)
	Update(id, field string, value bool) bool
}

// EventTracker publica eventos de marketing (el fbq.track del lado servidor).
// Es fuego-y-olvido: el que trackea nunca espera al Pixel.
type EventTracker interface {
	Track(ctx context.Context, event string, data map[string]any)
}

// AlertMailer avisa al inbox de ventas cuando entra un lead caliente.
type AlertMailer interface {
	SendHotLeadAlert(lead entity.Lead) error
}

// SessionStore guarda las sesiones efímeras del formulario. With serializa
// las mutaciones de una sesión; devuelve entity.ErrSessionNotFound si no existe.
type SessionStore interface {
	Put(s *entity.FormSession)
	With(id string, fn func(*entity.FormSession) error) error
}
