package usecase

import (
	"context"
	"log"
	"time"

	"github.com/fenixacademy/funnel-backend/internal/entity"
	"github.com/fenixacademy/funnel-backend/internal/infra/sheets"
)

// Pausas visibles del formulario. No hay trabajo real detrás de ninguna:
// existen para que la transición se perciba, no para ocultar latencia.
const (
	DefaultSelectDelay    = 250 * time.Millisecond
	DefaultAnalyzingDelay = 2000 * time.Millisecond
)

type QualificationConfig struct {
	SelectDelay    time.Duration
	AnalyzingDelay time.Duration
}

// QualificationUseCase maneja el ciclo de vida completo del formulario de
// calificación: pasos, sub-flujos de salida/downsell y el envío final.
type QualificationUseCase struct {
	Sessions SessionStore
	Gateway  LeadGateway
	Tracker  EventTracker
	Mailer   AlertMailer

	cfg QualificationConfig
}

func NewQualificationUseCase(
	sessions SessionStore,
	gateway LeadGateway,
	tracker EventTracker,
	mailer AlertMailer,
	cfg QualificationConfig,
) *QualificationUseCase {
	if cfg.SelectDelay <= 0 {
		cfg.SelectDelay = DefaultSelectDelay
	}
	if cfg.AnalyzingDelay <= 0 {
		cfg.AnalyzingDelay = DefaultAnalyzingDelay
	}
	return &QualificationUseCase{
		Sessions: sessions,
		Gateway:  gateway,
		Tracker:  tracker,
		Mailer:   mailer,
		cfg:      cfg,
	}
}

// Start abre una sesión nueva: siempre paso 1, oferta Standard, respuestas
// vacías. Abrir el modal es intención real, así que trackea InitiateCheckout.
func (uc *QualificationUseCase) Start(ctx context.Context) entity.FormSession {
	s := entity.NewFormSession()
	uc.Sessions.Put(s)

	uc.track(ctx, "InitiateCheckout", map[string]any{
		"content_name": "Aplicación Fenix Academy",
	})

	return *s
}

func (uc *QualificationUseCase) Get(id string) (entity.FormSession, error) {
	var snap entity.FormSession
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		snap = *s
		return nil
	})
	return snap, err
}

// Select registra una opción de los pasos 1-3 y programa el auto-avance.
func (uc *QualificationUseCase) Select(id string, field entity.SelectionField, value string) (entity.FormSession, error) {
	var snap entity.FormSession
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		if err := s.Select(field, value); err != nil {
			return err
		}
		uc.scheduleAdvance(id, s.Step)
		snap = *s
		return nil
	})
	return snap, err
}

func (uc *QualificationUseCase) scheduleAdvance(id string, fromStep int) {
	time.AfterFunc(uc.cfg.SelectDelay, func() {
		_ = uc.Sessions.With(id, func(s *entity.FormSession) error {
			s.Advance(fromStep)
			return nil
		})
	})
}

// SetContact guarda nombre y teléfono del paso 4.
func (uc *QualificationUseCase) SetContact(id, name, phone string) (entity.FormSession, error) {
	var snap entity.FormSession
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		if err := s.SetContact(name, phone); err != nil {
			return err
		}
		snap = *s
		return nil
	})
	return snap, err
}

// Next avanza desde el paso 4: entra a la pantalla de análisis y programa el
// aterrizaje en el paso final.
func (uc *QualificationUseCase) Next(id string) (entity.FormSession, error) {
	var snap entity.FormSession
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		if err := s.BeginAnalysis(); err != nil {
			return err
		}
		time.AfterFunc(uc.cfg.AnalyzingDelay, func() {
			_ = uc.Sessions.With(id, func(s *entity.FormSession) error {
				s.FinishAnalysis()
				return nil
			})
		})
		snap = *s
		return nil
	})
	return snap, err
}

func (uc *QualificationUseCase) Back(id string) (entity.FormSession, error) {
	var snap entity.FormSession
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		if err := s.Back(); err != nil {
			return err
		}
		snap = *s
		return nil
	})
	return snap, err
}

// Dismiss procesa un intento de cierre y deja que la sesión decida: cerrar o
// abrir la confirmación de salida.
func (uc *QualificationUseCase) Dismiss(id string) (entity.FormSession, error) {
	var snap entity.FormSession
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		s.Dismiss()
		snap = *s
		return nil
	})
	return snap, err
}

// ConfirmExit pasa de la confirmación al downsell. Entrar al downsell es
// intención real: trackea ViewContent con la oferta rebajada.
func (uc *QualificationUseCase) ConfirmExit(ctx context.Context, id string) (entity.FormSession, error) {
	var snap entity.FormSession
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		if err := s.ConfirmExit(); err != nil {
			return err
		}
		snap = *s
		return nil
	})
	if err == nil {
		uc.track(ctx, "ViewContent", map[string]any{
			"content_name": string(entity.OfferDownsell),
		})
	}
	return snap, err
}

func (uc *QualificationUseCase) CancelExit(id string) (entity.FormSession, error) {
	var snap entity.FormSession
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		if err := s.CancelExit(); err != nil {
			return err
		}
		snap = *s
		return nil
	})
	return snap, err
}

func (uc *QualificationUseCase) AcceptDownsell(id string) (entity.FormSession, error) {
	var snap entity.FormSession
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		if err := s.AcceptDownsell(); err != nil {
			return err
		}
		snap = *s
		return nil
	})
	return snap, err
}

func (uc *QualificationUseCase) RejectDownsell(id string) (entity.FormSession, error) {
	var snap entity.FormSession
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		if err := s.RejectDownsell(); err != nil {
			return err
		}
		snap = *s
		return nil
	})
	return snap, err
}

// Submit despacha el lead a la hoja. Si el despacho falla, la sesión se queda
// en el paso final y la llamada se puede repetir tal cual; no guardamos
// estado de reintento. Sin rollback ni confirmación: a-lo-sumo-una-vez.
func (uc *QualificationUseCase) Submit(ctx context.Context, id, goal string) (entity.FormSession, bool, error) {
	var input sheets.CreateLeadInput
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		if err := s.PrepareSubmit(goal); err != nil {
			return err
		}
		input = sheets.CreateLeadInput{
			Name:       s.Name,
			Phone:      s.Phone,
			Experience: s.Experience,
			Capital:    s.Capital,
			Time:       s.Time,
			Goal:       s.Goal,
			Offer:      s.Offer,
		}
		return nil
	})
	if err != nil {
		return entity.FormSession{}, false, err
	}

	// El despacho va fuera del lock de la sesión: es una llamada de red.
	lead, dispatched := uc.Gateway.Create(input)

	var snap entity.FormSession
	werr := uc.Sessions.With(id, func(s *entity.FormSession) error {
		if dispatched {
			s.MarkSuccess()
		}
		snap = *s
		return nil
	})
	if werr != nil {
		return entity.FormSession{}, dispatched, werr
	}

	if dispatched {
		uc.trackPurchase(ctx, lead)
		uc.alertIfHot(lead)
	}

	return snap, dispatched, nil
}

// Acknowledge cierra la sesión tras la pantalla de éxito.
func (uc *QualificationUseCase) Acknowledge(id string) (entity.FormSession, error) {
	var snap entity.FormSession
	err := uc.Sessions.With(id, func(s *entity.FormSession) error {
		if err := s.Acknowledge(); err != nil {
			return err
		}
		snap = *s
		return nil
	})
	return snap, err
}

// trackPurchase manda el valor de la oferta aceptada. El valor alimenta la
// optimización de ROAS del lado de Meta y tiene que coincidir con lo persistido.
func (uc *QualificationUseCase) trackPurchase(ctx context.Context, lead entity.Lead) {
	uc.track(ctx, "Purchase", map[string]any{
		"value":        lead.Offer.PurchaseValue(),
		"currency":     "USD",
		"content_name": string(lead.Offer),
		"content_type": "product",
		"num_items":    1,

		"lead_experience": string(lead.Experience),
		"lead_capital":    string(lead.Capital),
	})
}

func (uc *QualificationUseCase) alertIfHot(lead entity.Lead) {
	if lead.Status != entity.StatusHot || uc.Mailer == nil {
		return
	}
	go func(l entity.Lead) {
		if err := uc.Mailer.SendHotLeadAlert(l); err != nil {
			log.Printf("⚠️ Alerta de lead caliente no enviada (%s): %v", l.ID, err)
		}
	}(lead)
}

func (uc *QualificationUseCase) track(ctx context.Context, event string, data map[string]any) {
	if uc.Tracker != nil {
		uc.Tracker.Track(ctx, event, data)
	}
}
