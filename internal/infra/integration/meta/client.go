package meta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fenixacademy/funnel-backend/internal/infra/pixel"
)

// Client manda eventos a la Conversions API de Meta. Es el reemplazo del
// fbq() del navegador para los eventos que nacen en el servidor.
type Client struct {
	baseURL     string
	accessToken string
	pixel       *pixel.Resolver
	http        *http.Client
}

func NewClient(accessToken, baseURL string, resolver *pixel.Resolver) *Client {
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v19.0"
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		pixel:       resolver,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Send publica un evento contra el pixel vigente (override del admin o el de
// entorno). Sin pixel o sin token el evento se descarta con aviso: el embudo
// nunca se cae por tracking.
func (c *Client) Send(event string, data map[string]any) error {
	pixelID := c.pixel.Current()
	if pixelID == "" || c.accessToken == "" {
		log.Printf("⚠️ Meta: pixel o token sin configurar, evento %s descartado", event)
		return nil
	}

	payload := eventRequest{
		Data: []serverEvent{{
			EventName:    event,
			EventTime:    time.Now().Unix(),
			ActionSource: "website",
			CustomData:   data,
		}},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error al armar el evento %s: %w", event, err)
	}

	url := fmt.Sprintf("%s/%s/events?access_token=%s", c.baseURL, pixelID, c.accessToken)
	resp, err := c.http.Post(url, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("error de red contra Meta: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("meta rechazó el evento %s (status %d): %s", event, resp.StatusCode, string(body))
	}

	var result eventResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("respuesta de Meta ilegible: %w", err)
	}

	log.Printf("🔷 Meta: evento %s recibido (trace %s)", event, result.FBTraceID)
	return nil
}
