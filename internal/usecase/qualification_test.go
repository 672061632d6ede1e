package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fenixacademy/funnel-backend/internal/entity"
	"github.com/fenixacademy/funnel-backend/internal/infra/memory"
	"github.com/fenixacademy/funnel-backend/internal/infra/sheets"
)

// MockLeadGateway
type MockLeadGateway struct {
	mock.Mock
}

func (m *MockLeadGateway) Create(input sheets.CreateLeadInput) (entity.Lead, bool) {
	args := m.Called(input)
	if fn, ok := args.Get(0).(func(sheets.CreateLeadInput) entity.Lead); ok {
		return fn(input), args.Bool(1)
	}
	return args.Get(0).(entity.Lead), args.Bool(1)
}

func (m *MockLeadGateway) Read() ([]entity.Lead, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadGateway) Update(id, field string, value bool) bool {
	args := m.Called(id, field, value)
	return args.Bool(0)
}

// MockTracker guarda los eventos en orden para poder inspeccionarlos.
type MockTracker struct {
	mu     sync.Mutex
	events []trackedEvent
}

type trackedEvent struct {
	Event string
	Data  map[string]any
}

func (m *MockTracker) Track(ctx context.Context, event string, data map[string]any) {
	m.mu.Lock()
	m.events = append(m.events, trackedEvent{Event: event, Data: data})
	m.mu.Unlock()
}

func (m *MockTracker) Events() []trackedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]trackedEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockTracker) Named(event string) []trackedEvent {
	var out []trackedEvent
	for _, e := range m.Events() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendHotLeadAlert(lead entity.Lead) error {
	args := m.Called(lead)
	return args.Error(0)
}

func newTestUC(gateway *MockLeadGateway, tracker *MockTracker, mailer *MockMailer) *QualificationUseCase {
	var alertMailer AlertMailer
	if mailer != nil {
		alertMailer = mailer
	}
	return NewQualificationUseCase(
		memory.NewSessionStore(time.Hour),
		gateway,
		tracker,
		alertMailer,
		QualificationConfig{
			SelectDelay:    time.Millisecond,
			AnalyzingDelay: time.Millisecond,
		},
	)
}

func waitForStep(t *testing.T, uc *QualificationUseCase, id string, step int) {
	t.Helper()
	assert.Eventually(t, func() bool {
		s, err := uc.Get(id)
		return err == nil && s.Step == step && !s.Analyzing
	}, time.Second, 2*time.Millisecond)
}

func sealedLead(input sheets.CreateLeadInput) entity.Lead {
	return entity.Lead{
		ID:         "abc123xyz",
		Date:       time.Now(),
		Name:       input.Name,
		Phone:      input.Phone,
		Experience: input.Experience,
		Capital:    input.Capital,
		Time:       input.Time,
		Goal:       input.Goal,
		Offer:      input.Offer,
		Status:     entity.Classify(input.Capital, input.Experience, input.Time),
	}
}

func fillForm(t *testing.T, uc *QualificationUseCase, id string) {
	t.Helper()

	_, err := uc.Select(id, entity.FieldExperience, string(entity.ExperienceIntermedio))
	assert.NoError(t, err)
	waitForStep(t, uc, id, 2)

	_, err = uc.Select(id, entity.FieldTime, string(entity.TimeMedioTiempo))
	assert.NoError(t, err)
	waitForStep(t, uc, id, 3)

	_, err = uc.Select(id, entity.FieldCapital, string(entity.CapitalMas10000))
	assert.NoError(t, err)
	waitForStep(t, uc, id, 4)

	_, err = uc.SetContact(id, "Carlos Ruiz", "+52 155 1234 5678")
	assert.NoError(t, err)

	snap, err := uc.Next(id)
	assert.NoError(t, err)
	assert.True(t, snap.Analyzing)
	waitForStep(t, uc, id, 5)
}

func TestFullFormFlowSubmitsHotLead(t *testing.T) {
	ctx := context.Background()

	mockGateway := new(MockLeadGateway)
	tracker := &MockTracker{}
	mockMailer := new(MockMailer)
	mockMailer.On("SendHotLeadAlert", mock.Anything).Return(nil)

	mockGateway.On("Create", mock.Anything).Return(func(input sheets.CreateLeadInput) entity.Lead {
		return sealedLead(input)
	}, true)

	uc := newTestUC(mockGateway, tracker, mockMailer)

	session := uc.Start(ctx)
	fillForm(t, uc, session.ID)

	snap, dispatched, err := uc.Submit(ctx, session.ID, "Dejar mi empleo")
	assert.NoError(t, err)
	assert.True(t, dispatched)
	assert.True(t, snap.Success)

	// El gateway recibió exactamente lo que el usuario contestó.
	mockGateway.AssertCalled(t, "Create", sheets.CreateLeadInput{
		Name:       "Carlos Ruiz",
		Phone:      "5215512345678",
		Experience: entity.ExperienceIntermedio,
		Capital:    entity.CapitalMas10000,
		Time:       entity.TimeMedioTiempo,
		Goal:       "Dejar mi empleo",
		Offer:      entity.OfferStandard,
	})

	// Purchase con el valor de la oferta vigente.
	purchases := tracker.Named("Purchase")
	assert.Len(t, purchases, 1)
	assert.Equal(t, float64(entity.PriceStandard), purchases[0].Data["value"])
	assert.Equal(t, "USD", purchases[0].Data["currency"])

	// Lead caliente: la alerta por correo sale en un goroutine.
	assert.Eventually(t, func() bool {
		return len(mockMailer.Calls) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStartTracksInitiateCheckout(t *testing.T) {
	mockGateway := new(MockLeadGateway)
	tracker := &MockTracker{}

	uc := newTestUC(mockGateway, tracker, nil)
	uc.Start(context.Background())

	assert.Len(t, tracker.Named("InitiateCheckout"), 1)
}

func TestSubmitFailureLeavesSessionRetryable(t *testing.T) {
	ctx := context.Background()

	mockGateway := new(MockLeadGateway)
	tracker := &MockTracker{}

	// Primer despacho falla, el segundo sale.
	mockGateway.On("Create", mock.Anything).Return(entity.Lead{}, false).Once()
	mockGateway.On("Create", mock.Anything).Return(func(input sheets.CreateLeadInput) entity.Lead {
		return sealedLead(input)
	}, true).Once()

	uc := newTestUC(mockGateway, tracker, nil)
	session := uc.Start(ctx)
	fillForm(t, uc, session.ID)

	snap, dispatched, err := uc.Submit(ctx, session.ID, "Ingreso extra")
	assert.NoError(t, err)
	assert.False(t, dispatched)
	assert.False(t, snap.Success)
	assert.Empty(t, tracker.Named("Purchase"))

	// La sesión sigue en el paso final y el reintento es la misma llamada.
	snap, dispatched, err = uc.Submit(ctx, session.ID, "Ingreso extra")
	assert.NoError(t, err)
	assert.True(t, dispatched)
	assert.True(t, snap.Success)
	assert.Len(t, tracker.Named("Purchase"), 1)
}

func TestExitFlowAppliesDownsellOnce(t *testing.T) {
	ctx := context.Background()

	mockGateway := new(MockLeadGateway)
	mockGateway.On("Create", mock.Anything).Return(func(input sheets.CreateLeadInput) entity.Lead {
		return sealedLead(input)
	}, true)
	tracker := &MockTracker{}

	uc := newTestUC(mockGateway, tracker, nil)
	session := uc.Start(ctx)

	_, err := uc.Select(session.ID, entity.FieldExperience, string(entity.ExperienceNovato))
	assert.NoError(t, err)
	waitForStep(t, uc, session.ID, 2)

	// Intento de cierre con avance: confirmación, no cierre.
	snap, err := uc.Dismiss(session.ID)
	assert.NoError(t, err)
	assert.False(t, snap.Closed)
	assert.True(t, snap.ExitPrompt)

	snap, err = uc.ConfirmExit(ctx, session.ID)
	assert.NoError(t, err)
	assert.True(t, snap.DownsellPrompt)
	assert.Len(t, tracker.Named("ViewContent"), 1)

	snap, err = uc.AcceptDownsell(session.ID)
	assert.NoError(t, err)
	assert.Equal(t, entity.OfferDownsell, snap.Offer)
	assert.Equal(t, 2, snap.Step)

	// Con la oferta rebajada tomada, el siguiente intento de cierre es directo.
	snap, err = uc.Dismiss(session.ID)
	assert.NoError(t, err)
	assert.True(t, snap.Closed)
}

func TestSubmitAfterDownsellCarriesReducedOffer(t *testing.T) {
	ctx := context.Background()

	mockGateway := new(MockLeadGateway)
	mockGateway.On("Create", mock.Anything).Return(func(input sheets.CreateLeadInput) entity.Lead {
		return sealedLead(input)
	}, true)
	tracker := &MockTracker{}

	uc := newTestUC(mockGateway, tracker, nil)
	session := uc.Start(ctx)
	fillForm(t, uc, session.ID)

	// En el paso final intenta salir, acepta el downsell y envía igual.
	_, err := uc.Dismiss(session.ID)
	assert.NoError(t, err)
	_, err = uc.ConfirmExit(ctx, session.ID)
	assert.NoError(t, err)
	_, err = uc.AcceptDownsell(session.ID)
	assert.NoError(t, err)

	_, dispatched, err := uc.Submit(ctx, session.ID, "Ingreso extra")
	assert.NoError(t, err)
	assert.True(t, dispatched)

	created := mockGateway.Calls[0].Arguments.Get(0).(sheets.CreateLeadInput)
	assert.Equal(t, entity.OfferDownsell, created.Offer)

	purchases := tracker.Named("Purchase")
	assert.Len(t, purchases, 1)
	assert.Equal(t, float64(entity.PriceDownsell), purchases[0].Data["value"])
}

func TestSubmitBotLead(t *testing.T) {
	ctx := context.Background()

	mockGateway := new(MockLeadGateway)
	mockGateway.On("Create", mock.Anything).Return(func(input sheets.CreateLeadInput) entity.Lead {
		return sealedLead(input)
	}, true)
	tracker := &MockTracker{}

	uc := newTestUC(mockGateway, tracker, nil)

	lead, dispatched, err := uc.SubmitBot(ctx, BotLeadInput{
		Name:       "Luisa Mora",
		Phone:      "+57 301 555 7788",
		Experience: string(entity.ExperienceNovato),
		Capital:    string(entity.CapitalMenos500),
		Time:       string(entity.TimeUnaDosHoras),
		Goal:       "Automatizar mis operaciones",
	})

	assert.NoError(t, err)
	assert.True(t, dispatched)
	assert.Equal(t, entity.OfferBot, lead.Offer)

	purchases := tracker.Named("Purchase")
	assert.Len(t, purchases, 1)
	assert.Equal(t, float64(entity.PriceBot), purchases[0].Data["value"])
}

func TestSubmitBotLeadRejectsBadContact(t *testing.T) {
	mockGateway := new(MockLeadGateway)
	uc := newTestUC(mockGateway, &MockTracker{}, nil)

	_, _, err := uc.SubmitBot(context.Background(), BotLeadInput{
		Name:  "Luisa",
		Phone: "12345",
	})

	assert.Error(t, err)
	assert.True(t, IsDomainError(err))
	mockGateway.AssertNotCalled(t, "Create")
}

func TestGetUnknownSession(t *testing.T) {
	uc := newTestUC(new(MockLeadGateway), &MockTracker{}, nil)

	_, err := uc.Get("no-existe")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}
