package sheets

import (
	"time"

	"github.com/fenixacademy/funnel-backend/internal/entity"
)

// CreateLeadInput es lo que el formulario sabe del lead. El id, la
// clasificación y los flags los pone el cliente de la hoja al despachar.
type CreateLeadInput struct {
	Name       string
	Phone      string // solo dígitos
	Experience entity.Experience
	Capital    entity.Capital
	Time       entity.TimeSlot
	Goal       string
	Offer      entity.Offer
}

// createRequest es la fila que entiende el script de Apps Script.
type createRequest struct {
	Action     string `json:"action"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Experience string `json:"experience"`
	Capital    string `json:"capital"`
	Time       string `json:"time"`
	Goal       string `json:"goal"`
	Offer      string `json:"offer"`
	Status     string `json:"status"`
	Contacted  bool   `json:"contacted"`
	Converted  bool   `json:"converted"`
	Lost       bool   `json:"lost"`
}

type updateRequest struct {
	Action string `json:"action"`
	ID     string `json:"id"`
	Field  string `json:"field"`
	Value  bool   `json:"value"`
}

// leadRow es una fila tal como la devuelve la hoja. Los booleanos llegan como
// "TRUE"/"FALSE" o booleanos nativos según cómo quedó la celda, así que se
// leen como any y se normalizan.
type leadRow struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Experience string `json:"experience"`
	Capital    string `json:"capital"`
	Time       string `json:"time"`
	Goal       string `json:"goal"`
	Offer      string `json:"offer"`
	Status     string `json:"status"`
	Contacted  any    `json:"contacted"`
	Converted  any    `json:"converted"`
	Lost       any    `json:"lost"`
}

func (r leadRow) toLead() entity.Lead {
	return entity.Lead{
		ID:         r.ID,
		Date:       parseSheetDate(r.Date),
		Name:       r.Name,
		Phone:      entity.NormalizePhone(r.Phone),
		Experience: entity.Experience(r.Experience),
		Capital:    entity.Capital(r.Capital),
		Time:       entity.TimeSlot(r.Time),
		Goal:       r.Goal,
		Offer:      entity.ParseOffer(r.Offer),
		Status:     entity.ParseStatus(r.Status),
		Contacted:  looseBool(r.Contacted),
		Converted:  looseBool(r.Converted),
		Lost:       looseBool(r.Lost),
	}
}

func looseBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "TRUE"
	}
	return false
}

// parseSheetDate tolera los formatos de fecha que suelta Google Sheets.
func parseSheetDate(s string) time.Time {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
