package sheets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fenixacademy/funnel-backend/internal/entity"
)

// Client habla con el script de Google Apps Script que respalda la hoja de
// leads. Las escrituras son al estilo no-cors del front original: se dispara
// el POST y no se lee el cuerpo de la respuesta. true significa "la petición
// salió", nunca "la hoja lo procesó". Entrega a-lo-sumo-una-vez, sin reintentos.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Create estampa un id fresco, clasifica el lead y despacha la fila.
// Devuelve el lead ya sellado (para alertas y métricas locales) y si el
// despacho salió sin error de transporte.
func (c *Client) Create(input CreateLeadInput) (entity.Lead, bool) {
	lead := entity.Lead{
		ID:         entity.NewLeadID(),
		Date:       time.Now(),
		Name:       input.Name,
		Phone:      entity.NormalizePhone(input.Phone),
		Experience: input.Experience,
		Capital:    input.Capital,
		Time:       input.Time,
		Goal:       input.Goal,
		Offer:      input.Offer,
		Status:     entity.Classify(input.Capital, input.Experience, input.Time),
	}

	payload := createRequest{
		Action:     "create",
		ID:         lead.ID,
		Name:       lead.Name,
		Phone:      entity.RenderPhone(lead.Phone),
		Experience: string(lead.Experience),
		Capital:    string(lead.Capital),
		Time:       string(lead.Time),
		Goal:       lead.Goal,
		Offer:      string(lead.Offer),
		Status:     string(lead.Status),
	}

	return lead, c.post(payload)
}

// Read baja la lista completa (la hoja no pagina) con un parámetro anti-caché
// y la devuelve normalizada, más recientes primero.
func (c *Client) Read() ([]entity.Lead, error) {
	url := fmt.Sprintf("%s?t=%d", c.endpoint, time.Now().UnixMilli())

	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("error consultando la hoja: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("la hoja respondió %d", resp.StatusCode)
	}

	var rows []leadRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("respuesta de la hoja ilegible: %w", err)
	}

	leads := make([]entity.Lead, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		leads = append(leads, rows[i].toLead())
	}

	return leads, nil
}

// Update manda un parche de un solo campo. Mismo contrato opaco que Create.
// Cada toggle es idempotente a nivel de campo: invertir un booleano es su
// propia inversa.
func (c *Client) Update(id, field string, value bool) bool {
	return c.post(updateRequest{
		Action: "update",
		ID:     id,
		Field:  field,
		Value:  value,
	})
}

func (c *Client) post(payload any) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("❌ Sheets: payload inválido: %v", err)
		return false
	}

	// text/plain evita el preflight CORS del script de Google; el script
	// parsea el cuerpo como JSON igual.
	resp, err := c.http.Post(c.endpoint, "text/plain;charset=utf-8", bytes.NewBuffer(body))
	if err != nil {
		log.Printf("❌ Sheets: fallo de red en el despacho: %v", err)
		return false
	}
	resp.Body.Close()

	return true
}
