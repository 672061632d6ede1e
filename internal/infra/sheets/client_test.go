package sheets

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fenixacademy/funnel-backend/internal/entity"
)

func TestCreateSealsAndDispatchesRow(t *testing.T) {
	var got map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		// El front original manda text/plain para esquivar el preflight del script.
		assert.Equal(t, "text/plain;charset=utf-8", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	lead, dispatched := client.Create(CreateLeadInput{
		Name:       "Carlos Ruiz",
		Phone:      "5215512345678",
		Experience: entity.ExperienceAvanzado,
		Capital:    entity.CapitalMas10000,
		Time:       entity.TimeUnaDosHoras,
		Goal:       "Vivir del trading",
		Offer:      entity.OfferStandard,
	})

	assert.True(t, dispatched)
	assert.Len(t, lead.ID, 9)
	assert.Equal(t, entity.StatusHot, lead.Status)

	assert.Equal(t, "create", got["action"])
	assert.Equal(t, lead.ID, got["id"])
	// El teléfono viaja renderizado con el + implícito.
	assert.Equal(t, "+5215512345678", got["phone"])
	assert.Equal(t, "hot", got["status"])
	assert.Equal(t, string(entity.OfferStandard), got["offer"])
}

func TestCreateReturnsFalseOnNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // muerto a propósito

	client := NewClient(server.URL)

	lead, dispatched := client.Create(CreateLeadInput{
		Name:  "Ana",
		Phone: "5215512345678",
		Offer: entity.OfferStandard,
	})

	assert.False(t, dispatched)
	// El lead sale sellado igual: el acuse es solo de transporte.
	assert.NotEmpty(t, lead.ID)
}

func TestReadNormalizesRowsNewestFirst(t *testing.T) {
	rows := []map[string]any{
		{
			"id": "old1", "date": "2026-08-01 10:30:00", "name": "Ana Pérez",
			"phone": "+52 155 2222 2222", "experience": "Novato", "capital": "Menos de $500",
			"time": "Poco Tiempo", "status": "cold", "contacted": "TRUE", "converted": "FALSE", "lost": false,
		},
		{
			// Fila vieja sin offer y con status fuera de catálogo.
			"id": "old2", "date": "2026-08-15", "name": "Pedro Gil",
			"phone": "5215533333333", "experience": "Intermedio", "capital": "$500 - $2,000",
			"time": "Medio Tiempo", "status": "tibio", "offer": "", "contacted": false, "converted": true,
		},
		{
			"id": "new1", "date": "2026-08-30T09:00:00Z", "name": "Luisa Mora",
			"phone": "573015557788", "experience": "Avanzado", "capital": "Más de $10,000",
			"time": "1-2 Horas", "status": "hot", "offer": "Downsell $127", "contacted": true,
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Parámetro anti-caché siempre presente.
		assert.NotEmpty(t, r.URL.Query().Get("t"))
		json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	leads, err := client.Read()
	assert.NoError(t, err)
	assert.Len(t, leads, 3)

	// La hoja apendea al final; la lista sale más recientes primero.
	assert.Equal(t, "new1", leads[0].ID)
	assert.Equal(t, "old1", leads[2].ID)

	// Booleanos laxos: "TRUE" textual y true nativo valen igual.
	assert.True(t, leads[2].Contacted)
	assert.False(t, leads[2].Converted)
	assert.True(t, leads[1].Converted)

	// Normalizaciones: status desconocido cae a cold, offer vacía a Standard,
	// teléfono a solo dígitos.
	assert.Equal(t, entity.StatusCold, leads[1].Status)
	assert.Equal(t, entity.OfferStandard, leads[1].Offer)
	assert.Equal(t, entity.OfferDownsell, leads[0].Offer)
	assert.Equal(t, "5215522222222", leads[2].Phone)

	// Fechas en los formatos que suelta la hoja.
	assert.Equal(t, 2026, leads[2].Date.Year())
	assert.Equal(t, 15, leads[1].Date.Day())
}

func TestReadFailsOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.Read()
	assert.Error(t, err)
}

func TestUpdateDispatchesPatch(t *testing.T) {
	var got map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	ok := client.Update("abc123xyz", "converted", true)
	assert.True(t, ok)

	assert.Equal(t, "update", got["action"])
	assert.Equal(t, "abc123xyz", got["id"])
	assert.Equal(t, "converted", got["field"])
	assert.Equal(t, true, got["value"])
}
