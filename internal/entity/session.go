package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormSession es el estado efímero del formulario de calificación. Vive solo
// en memoria mientras el modal está abierto; únicamente una sesión completada
// produce un Lead. Reabrir el modal crea una sesión nueva desde cero.

const TotalSteps = 5

var (
	ErrSessionNotFound   = errors.New("sesión no encontrada")
	ErrSessionClosed     = errors.New("la sesión ya está cerrada")
	ErrSessionBusy       = errors.New("la sesión está en pausa de análisis")
	ErrWrongStep         = errors.New("acción no válida en el estado actual")
	ErrInvalidOption     = errors.New("opción fuera del catálogo")
	ErrContactIncomplete = errors.New("nombre y teléfono de al menos 10 dígitos son obligatorios")
	ErrGoalRequired      = errors.New("el objetivo no puede ir vacío")
)

type SelectionField string

const (
	FieldExperience SelectionField = "experience"
	FieldTime       SelectionField = "time"
	FieldCapital    SelectionField = "capital"
)

// Paso en el que se pregunta cada selección: 1 experiencia, 2 horario,
// 3 capital. El 4 pide contacto y el 5 el objetivo.
var selectionStep = map[SelectionField]int{
	FieldExperience: 1,
	FieldTime:       2,
	FieldCapital:    3,
}

type FormSession struct {
	ID   string
	Step int

	Name       string
	Phone      string // solo dígitos
	Experience Experience
	Capital    Capital
	Time       TimeSlot
	Goal       string

	Offer Offer

	Analyzing      bool
	ExitPrompt     bool // "¿seguro que quieres salir?"
	DownsellPrompt bool
	Success        bool
	Closed         bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewFormSession() *FormSession {
	now := time.Now()
	return &FormSession{
		ID:        uuid.New().String(),
		Step:      1,
		Offer:     OfferStandard,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *FormSession) touch() {
	s.UpdatedAt = time.Now()
}

func (s *FormSession) guardInteractive() error {
	if s.Closed {
		return ErrSessionClosed
	}
	if s.Analyzing {
		return ErrSessionBusy
	}
	if s.ExitPrompt || s.DownsellPrompt {
		return ErrWrongStep
	}
	return nil
}

// Select registra la opción del paso actual (pasos 1-3). El avance al paso
// siguiente lo dispara el temporizador del usecase, no esta llamada.
func (s *FormSession) Select(field SelectionField, value string) error {
	if err := s.guardInteractive(); err != nil {
		return err
	}
	step, ok := selectionStep[field]
	if !ok {
		return ErrInvalidOption
	}
	if s.Step != step {
		return ErrWrongStep
	}

	switch field {
	case FieldExperience:
		exp, ok := ParseExperience(value)
		if !ok {
			return ErrInvalidOption
		}
		s.Experience = exp
	case FieldTime:
		slot, ok := ParseTimeSlot(value)
		if !ok {
			return ErrInvalidOption
		}
		s.Time = slot
	case FieldCapital:
		cap, ok := ParseCapital(value)
		if !ok {
			return ErrInvalidOption
		}
		s.Capital = cap
	}

	s.touch()
	return nil
}

// Advance sube un paso si la sesión sigue donde estaba cuando se programó el
// temporizador. Si el usuario ya retrocedió o cerró, no hace nada.
func (s *FormSession) Advance(fromStep int) {
	if s.Closed || s.Analyzing || s.Success {
		return
	}
	if s.Step != fromStep || s.Step >= 4 {
		return
	}
	s.Step++
	s.touch()
}

// SetContact guarda nombre y teléfono (paso 4). El teléfono se normaliza a
// solo dígitos; el + implícito se agrega al renderizar.
func (s *FormSession) SetContact(name, phone string) error {
	if err := s.guardInteractive(); err != nil {
		return err
	}
	if s.Step != 4 {
		return ErrWrongStep
	}
	s.Name = strings.TrimSpace(name)
	s.Phone = NormalizePhone(phone)
	s.touch()
	return nil
}

// ContactReady replica el gate del botón continuar del paso 4.
func (s *FormSession) ContactReady() bool {
	return s.Name != "" && len(s.Phone) >= 10
}

// BeginAnalysis entra a la pantalla de "analizando tu perfil". No hay trabajo
// real detrás: es una transición temporizada sin efectos.
func (s *FormSession) BeginAnalysis() error {
	if err := s.guardInteractive(); err != nil {
		return err
	}
	if s.Step != 4 {
		return ErrWrongStep
	}
	if !s.ContactReady() {
		return ErrContactIncomplete
	}
	s.Analyzing = true
	s.touch()
	return nil
}

// FinishAnalysis aterriza en el paso final. La dispara el temporizador.
func (s *FormSession) FinishAnalysis() {
	if s.Closed || !s.Analyzing {
		return
	}
	s.Analyzing = false
	s.Step = TotalSteps
	s.touch()
}

// Back rebobina un paso sin perder respuestas.
func (s *FormSession) Back() error {
	if err := s.guardInteractive(); err != nil {
		return err
	}
	if s.Success || s.Step <= 1 {
		return ErrWrongStep
	}
	s.Step--
	s.touch()
	return nil
}

// PrepareSubmit valida y fija el objetivo (paso 5) antes del despacho.
func (s *FormSession) PrepareSubmit(goal string) error {
	if err := s.guardInteractive(); err != nil {
		return err
	}
	if s.Success || s.Step != TotalSteps {
		return ErrWrongStep
	}
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return ErrGoalRequired
	}
	s.Goal = goal
	s.touch()
	return nil
}

func (s *FormSession) MarkSuccess() {
	s.Success = true
	s.touch()
}

// Dismiss procesa un intento de cierre (backdrop o botón X) y devuelve true
// si la sesión quedó cerrada. Flujo de salida en dos etapas: el primer
// intento con avance real abre la confirmación; confirmar lleva al downsell.
// Solo se negocia un downsell por sesión: si ya lo aceptó, el siguiente
// intento cierra directo.
func (s *FormSession) Dismiss() bool {
	if s.Closed {
		return true
	}
	switch {
	case s.Step == 1 || s.Success:
		s.close()
	case s.ExitPrompt || s.DownsellPrompt:
		s.close()
	case s.Offer == OfferDownsell:
		s.close()
	default:
		s.ExitPrompt = true
		s.touch()
	}
	return s.Closed
}

func (s *FormSession) close() {
	s.Closed = true
	s.ExitPrompt = false
	s.DownsellPrompt = false
	s.touch()
}

// ConfirmExit: el usuario insiste en salir; se le muestra el downsell.
func (s *FormSession) ConfirmExit() error {
	if s.Closed {
		return ErrSessionClosed
	}
	if !s.ExitPrompt {
		return ErrWrongStep
	}
	s.ExitPrompt = false
	s.DownsellPrompt = true
	s.touch()
	return nil
}

// CancelExit: el cierre fue accidental; vuelve al paso donde estaba.
func (s *FormSession) CancelExit() error {
	if s.Closed {
		return ErrSessionClosed
	}
	if !s.ExitPrompt {
		return ErrWrongStep
	}
	s.ExitPrompt = false
	s.touch()
	return nil
}

// AcceptDownsell congela la oferta en $127 y deja seguir llenando con las
// respuestas intactas.
func (s *FormSession) AcceptDownsell() error {
	if s.Closed {
		return ErrSessionClosed
	}
	if !s.DownsellPrompt {
		return ErrWrongStep
	}
	s.Offer = OfferDownsell
	s.DownsellPrompt = false
	s.touch()
	return nil
}

func (s *FormSession) RejectDownsell() error {
	if s.Closed {
		return ErrSessionClosed
	}
	if !s.DownsellPrompt {
		return ErrWrongStep
	}
	s.close()
	return nil
}

// Acknowledge cierra la sesión después de la pantalla de éxito.
func (s *FormSession) Acknowledge() error {
	if s.Closed {
		return ErrSessionClosed
	}
	if !s.Success {
		return ErrWrongStep
	}
	s.close()
	return nil
}
