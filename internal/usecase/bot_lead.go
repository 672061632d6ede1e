package usecase

import (
	"context"
	"strings"

	"github.com/fenixacademy/funnel-backend/internal/entity"
	"github.com/fenixacademy/funnel-backend/internal/infra/sheets"
)

// El embudo del bot tiene su propio formulario corto; llega en un solo envío
// en vez de sesión por pasos. La oferta es siempre el tag del bot.

type BotLeadInput struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Experience string `json:"experience"`
	Capital    string `json:"capital"`
	Time       string `json:"time"`
	Goal       string `json:"goal"`
}

// SubmitBot valida lo mínimo (mismo gate que el formulario: nombre presente y
// teléfono de 10+ dígitos) y despacha con la oferta del bot.
func (uc *QualificationUseCase) SubmitBot(ctx context.Context, input BotLeadInput) (entity.Lead, bool, error) {
	name := strings.TrimSpace(input.Name)
	phone := entity.NormalizePhone(input.Phone)
	if name == "" || len(phone) < 10 {
		return entity.Lead{}, false, &DomainError{
			Code:    "INVALID_CONTACT",
			Message: "nombre y teléfono de al menos 10 dígitos son obligatorios",
		}
	}

	// Los campos de perfil son opcionales en el embudo del bot; lo que no
	// venga del catálogo clasifica como cold por defecto.
	experience, _ := entity.ParseExperience(input.Experience)
	capital, _ := entity.ParseCapital(input.Capital)
	timeSlot, _ := entity.ParseTimeSlot(input.Time)

	lead, dispatched := uc.Gateway.Create(sheets.CreateLeadInput{
		Name:       name,
		Phone:      phone,
		Experience: experience,
		Capital:    capital,
		Time:       timeSlot,
		Goal:       strings.TrimSpace(input.Goal),
		Offer:      entity.OfferBot,
	})

	if dispatched {
		uc.trackPurchase(ctx, lead)
		uc.alertIfHot(lead)
	}

	return lead, dispatched, nil
}
