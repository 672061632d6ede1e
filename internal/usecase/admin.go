package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fenixacademy/funnel-backend/internal/entity"
)

// AdminUseCase es el panel de triage: mantiene una caché local de la lista
// completa de leads (se refresca solo al autenticar o a mano, sin polling) y
// aplica filtros, paginación y KPIs sobre esa caché.

type TimeFilter string

const (
	TimeAll     TimeFilter = "all"
	TimeToday   TimeFilter = "today"
	TimeLast7d  TimeFilter = "7d"
	TimeLast30d TimeFilter = "30d"
)

type ActionFilter string

const (
	ActionAll       ActionFilter = "all"
	ActionContacted ActionFilter = "contacted"
	ActionConverted ActionFilter = "converted"
	ActionPending   ActionFilter = "pending"
	ActionLost      ActionFilter = "lost"
)

type ProductFilter string

const (
	ProductAll   ProductFilter = "all"
	ProductCurso ProductFilter = "curso"
	ProductBot   ProductFilter = "bot"
)

type ToggleField string

const (
	ToggleContacted ToggleField = "contacted"
	ToggleConverted ToggleField = "converted"
	ToggleLost      ToggleField = "lost"
)

const PageSize = 50

type Filters struct {
	Time    TimeFilter
	Action  ActionFilter
	Product ProductFilter
}

// Stats son los KPIs del set filtrado, no del global: cambiar un filtro
// cambia los números. Los leads perdidos no cuentan para temperatura ni
// pipeline; el revenue suma solo convertidos según la oferta real tomada.
type Stats struct {
	Total          int     `json:"total"`
	HotCount       int     `json:"hot_count"`
	WarmCount      int     `json:"warm_count"`
	ColdCount      int     `json:"cold_count"`
	ConvertedCount int     `json:"converted_count"`
	ConversionRate float64 `json:"conversion_rate"`
	RealRevenue    int     `json:"real_revenue"`
	PipelineLeft   int     `json:"pipeline_left"`
}

type LeadPage struct {
	Leads      []entity.Lead
	Page       int
	TotalPages int
	Stats      Stats
}

type AdminUseCase struct {
	Gateway LeadGateway
	Tracker EventTracker

	mu     sync.Mutex
	leads  []entity.Lead
	loaded bool
}

func NewAdminUseCase(gateway LeadGateway, tracker EventTracker) *AdminUseCase {
	return &AdminUseCase{Gateway: gateway, Tracker: tracker}
}

// Refresh baja la lista completa y reemplaza la caché. Devuelve cuántos leads
// nuevos llegaron desde la carga anterior, para el aviso del panel.
func (uc *AdminUseCase) Refresh() (int, error) {
	data, err := uc.Gateway.Read()
	if err != nil {
		return 0, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	diff := 0
	if uc.loaded {
		diff = len(data) - len(uc.leads)
		if diff < 0 {
			diff = 0
		}
	}
	uc.leads = data
	uc.loaded = true

	return diff, nil
}

// List aplica los tres filtros en AND, calcula los KPIs sobre el set filtrado
// y recién después pagina (tamaño fijo).
func (uc *AdminUseCase) List(filters Filters, page int) LeadPage {
	uc.mu.Lock()
	leads := make([]entity.Lead, len(uc.leads))
	copy(leads, uc.leads)
	uc.mu.Unlock()

	filtered := applyFilters(leads, filters, time.Now())
	stats := computeStats(filtered)

	totalPages := (len(filtered) + PageSize - 1) / PageSize
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + PageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return LeadPage{
		Leads:      filtered[start:end],
		Page:       page,
		TotalPages: totalPages,
		Stats:      stats,
	}
}

func applyFilters(leads []entity.Lead, f Filters, now time.Time) []entity.Lead {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var cutoff time.Time
	switch f.Time {
	case TimeToday:
		cutoff = todayStart
	case TimeLast7d:
		cutoff = todayStart.AddDate(0, 0, -7)
	case TimeLast30d:
		cutoff = todayStart.AddDate(0, 0, -30)
	}

	out := make([]entity.Lead, 0, len(leads))
	for _, lead := range leads {
		if !cutoff.IsZero() && lead.Date.Before(cutoff) {
			continue
		}
		if !matchesAction(lead, f.Action) {
			continue
		}
		if !matchesProduct(lead, f.Product) {
			continue
		}
		out = append(out, lead)
	}
	return out
}

// Las categorías de acción son mutuamente excluyentes: contacted significa
// "contactado pero todavía ni convertido ni perdido".
func matchesAction(lead entity.Lead, action ActionFilter) bool {
	switch action {
	case ActionContacted:
		return lead.Contacted && !lead.Converted && !lead.Lost
	case ActionConverted:
		return lead.Converted
	case ActionLost:
		return lead.Lost
	case ActionPending:
		return !lead.Contacted && !lead.Converted && !lead.Lost
	}
	return true
}

func matchesProduct(lead entity.Lead, product ProductFilter) bool {
	switch product {
	case ProductCurso:
		return lead.Offer == entity.OfferStandard || lead.Offer == entity.OfferDownsell
	case ProductBot:
		return strings.Contains(string(lead.Offer), "Bot")
	}
	return true
}

func computeStats(filtered []entity.Lead) Stats {
	stats := Stats{Total: len(filtered)}

	for _, lead := range filtered {
		if lead.Converted {
			stats.ConvertedCount++
			// Revenue por la oferta real tomada; ofertas desconocidas
			// caen al precio Standard (fallback heredado, a propósito).
			stats.RealRevenue += lead.Offer.Price()
		}
		if lead.Lost {
			continue
		}
		switch lead.Status {
		case entity.StatusHot:
			stats.HotCount++
		case entity.StatusWarm:
			stats.WarmCount++
		case entity.StatusCold:
			stats.ColdCount++
		}
		if lead.Status == entity.StatusHot && !lead.Converted {
			stats.PipelineLeft += entity.PriceStandard
		}
	}

	if stats.Total > 0 {
		stats.ConversionRate = float64(stats.ConvertedCount) / float64(stats.Total) * 100
	}

	return stats
}

// Toggle invierte un flag del lead: primero en la caché local (optimista, sin
// rollback si el parche remoto falla) y después despacha el parche. Devuelve
// el lead ya actualizado y el acuse del despacho.
func (uc *AdminUseCase) Toggle(ctx context.Context, id string, field ToggleField) (entity.Lead, bool, error) {
	uc.mu.Lock()

	idx := -1
	for i := range uc.leads {
		if uc.leads[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		uc.mu.Unlock()
		return entity.Lead{}, false, &DomainError{Code: "LEAD_NOT_FOUND", Message: "lead no encontrado"}
	}

	lead := &uc.leads[idx]
	var newValue bool
	switch field {
	case ToggleContacted:
		lead.Contacted = !lead.Contacted
		newValue = lead.Contacted
	case ToggleConverted:
		lead.Converted = !lead.Converted
		newValue = lead.Converted
	case ToggleLost:
		// Un lead convertido no puede marcarse perdido sin revertir antes
		// la conversión.
		if lead.Converted {
			uc.mu.Unlock()
			return entity.Lead{}, false, &DomainError{
				Code:    "LEAD_CONVERTED",
				Message: "un lead convertido no puede marcarse como perdido",
			}
		}
		lead.Lost = !lead.Lost
		newValue = lead.Lost
	default:
		uc.mu.Unlock()
		return entity.Lead{}, false, &DomainError{Code: "INVALID_FIELD", Message: "campo de toggle desconocido"}
	}

	snap := *lead
	uc.mu.Unlock()

	dispatched := uc.Gateway.Update(id, string(field), newValue)

	if field == ToggleContacted && newValue && uc.Tracker != nil {
		uc.Tracker.Track(ctx, "Contact", map[string]any{"lead_id": id})
	}

	return snap, dispatched, nil
}

// MarkContacted fuerza contacted=true (lo usa el click en WhatsApp, que no es
// un toggle sino un "ya lo contacté").
func (uc *AdminUseCase) MarkContacted(ctx context.Context, id string) (entity.Lead, bool, error) {
	uc.mu.Lock()
	idx := -1
	for i := range uc.leads {
		if uc.leads[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		uc.mu.Unlock()
		return entity.Lead{}, false, &DomainError{Code: "LEAD_NOT_FOUND", Message: "lead no encontrado"}
	}
	if uc.leads[idx].Contacted {
		snap := uc.leads[idx]
		uc.mu.Unlock()
		return snap, true, nil
	}
	uc.leads[idx].Contacted = true
	snap := uc.leads[idx]
	uc.mu.Unlock()

	dispatched := uc.Gateway.Update(id, string(ToggleContacted), true)
	if uc.Tracker != nil {
		uc.Tracker.Track(ctx, "Contact", map[string]any{"lead_id": id})
	}
	return snap, dispatched, nil
}

// WhatsAppLink arma el link de salida con el mensaje personalizado según el
// perfil del lead. El copy viene del guion comercial del panel.
func (uc *AdminUseCase) WhatsAppLink(id string) (string, error) {
	uc.mu.Lock()
	var lead entity.Lead
	found := false
	for i := range uc.leads {
		if uc.leads[i].ID == id {
			lead = uc.leads[i]
			found = true
			break
		}
	}
	uc.mu.Unlock()

	if !found {
		return "", &DomainError{Code: "LEAD_NOT_FOUND", Message: "lead no encontrado"}
	}

	firstName := lead.Name
	if i := strings.IndexByte(firstName, ' '); i > 0 {
		firstName = firstName[:i]
	}

	var timePhrase string
	switch lead.Time {
	case entity.TimePocoTiempo:
		timePhrase = "tienes una agenda apretada"
	case entity.TimeMedioTiempo:
		timePhrase = "tienes algo de flexibilidad horaria"
	case entity.TimeUnaDosHoras:
		timePhrase = "cuentas con un par de horas al día"
	default:
		timePhrase = "tienes disponibilidad ajustada"
	}

	var expPhrase string
	switch lead.Experience {
	case entity.ExperienceNovato:
		expPhrase = "estás arrancando desde cero"
	case entity.ExperienceIntermedio:
		expPhrase = "ya tienes base pero buscas consistencia"
	case entity.ExperienceAvanzado:
		expPhrase = "ya tienes recorrido y buscas escalar"
	default:
		expPhrase = "te interesa formarte profesionalmente"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s, soy del equipo de Fenix Trading Academy. 🏆\n\n", firstName)
	fmt.Fprintf(&b, "Vi tu aplicación. Noté que %s y que %s.", timePhrase, expPhrase)

	switch {
	case lead.Offer == entity.OfferDownsell:
		b.WriteString("\n\nVi que aplicaste con la oferta especial de acceso. ¿Tienes alguna duda sobre los 2 meses de live trading?")
	case lead.Status == entity.StatusHot:
		b.WriteString("\n\nTu perfil de capital encaja perfecto con nuestra estrategia de aceleración. Tienes 5 minutos?")
	case lead.Experience == entity.ExperienceNovato:
		b.WriteString("\n\nMe gusta que quieras empezar desde cero para construir bases sólidas desde el inicio. Tendrías un minuto?")
	default:
		b.WriteString("\n\nMe gustaría hacerte unas preguntas breves para ver si aplicas al programa. Te queda bien ahora?")
	}

	return fmt.Sprintf("https://wa.me/%s?text=%s", lead.Phone, url.QueryEscape(b.String())), nil
}
