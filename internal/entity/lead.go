package entity

import (
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// Enumeraciones cerradas del formulario. Los valores son literales en español
// porque son exactamente lo que se escribe en la hoja de cálculo.

type Status string

const (
	StatusCold Status = "cold"
	StatusWarm Status = "warm"
	StatusHot  Status = "hot"
)

type Experience string

const (
	ExperienceNovato     Experience = "Novato"
	ExperienceIntermedio Experience = "Intermedio"
	ExperienceAvanzado   Experience = "Avanzado"
)

type Capital string

const (
	CapitalMenos500   Capital = "Menos de $500"
	Capital500a2000   Capital = "$500 - $2,000"
	Capital2000a10000 Capital = "$2,000 - $10,000"
	CapitalMas10000   Capital = "Más de $10,000"
)

type TimeSlot string

const (
	TimeUnaDosHoras TimeSlot = "1-2 Horas"
	TimeMedioTiempo TimeSlot = "Medio Tiempo"
	TimePocoTiempo  TimeSlot = "Poco Tiempo"
)

// Offer registra qué precio vio/aceptó el lead al enviar la aplicación.
type Offer string

const (
	OfferStandard Offer = "Standard $327"
	OfferDownsell Offer = "Downsell $127"
	OfferBot      Offer = "AI Bot $997"
)

const (
	PriceStandard = 327
	PriceDownsell = 127
	PriceBot      = 997
)

// Price mapea la oferta a su precio en USD. Una oferta desconocida cae al
// precio Standard: la hoja tiene filas viejas sin campo offer.
func (o Offer) Price() int {
	switch {
	case o == OfferDownsell:
		return PriceDownsell
	case strings.Contains(string(o), "Bot"):
		return PriceBot
	default:
		return PriceStandard
	}
}

// PurchaseValue es el valor monetario que viaja en el evento Purchase.
// Tiene que coincidir exactamente con la oferta persistida.
func (o Offer) PurchaseValue() float64 {
	return float64(o.Price())
}

// Lead es una aplicación enviada. Status se calcula una sola vez al crearla;
// contacted/converted/lost los mueve solo el panel de admin.
type Lead struct {
	ID         string     `json:"id"`
	Date       time.Time  `json:"date"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"` // solo dígitos; se renderiza con + delante
	Experience Experience `json:"experience"`
	Capital    Capital    `json:"capital"`
	Time       TimeSlot   `json:"time"`
	Goal       string     `json:"goal"`
	Offer      Offer      `json:"offer"`
	Status     Status     `json:"status"`
	Contacted  bool       `json:"contacted"`
	Converted  bool       `json:"converted"`
	Lost       bool       `json:"lost"`
}

const leadIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewLeadID genera el token alfanumérico de 9 caracteres que la hoja usa como
// clave de fila. Nunca se reutiliza.
func NewLeadID() string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = leadIDAlphabet[rand.Intn(len(leadIDAlphabet))]
	}
	return string(b)
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone deja el teléfono en solo dígitos.
func NormalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// RenderPhone antepone el + implícito al teléfono normalizado.
func RenderPhone(phone string) string {
	if phone == "" {
		return ""
	}
	return "+" + NormalizePhone(phone)
}

func ParseExperience(v string) (Experience, bool) {
	switch Experience(v) {
	case ExperienceNovato, ExperienceIntermedio, ExperienceAvanzado:
		return Experience(v), true
	}
	return "", false
}

func ParseCapital(v string) (Capital, bool) {
	switch Capital(v) {
	case CapitalMenos500, Capital500a2000, Capital2000a10000, CapitalMas10000:
		return Capital(v), true
	}
	return "", false
}

func ParseTimeSlot(v string) (TimeSlot, bool) {
	switch TimeSlot(v) {
	case TimeUnaDosHoras, TimeMedioTiempo, TimePocoTiempo:
		return TimeSlot(v), true
	}
	return "", false
}

// ParseStatus fuerza cualquier valor fuera del catálogo a cold.
func ParseStatus(v string) Status {
	switch Status(v) {
	case StatusHot, StatusWarm, StatusCold:
		return Status(v)
	}
	return StatusCold
}

// ParseOffer cubre filas viejas de la hoja que no traen offer.
func ParseOffer(v string) Offer {
	if strings.TrimSpace(v) == "" {
		return OfferStandard
	}
	return Offer(v)
}
