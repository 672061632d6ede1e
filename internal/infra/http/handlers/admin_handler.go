package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fenixacademy/funnel-backend/internal/entity"
	"github.com/fenixacademy/funnel-backend/internal/infra/pixel"
	"github.com/fenixacademy/funnel-backend/internal/usecase"
)

// AdminHandler expone el panel de triage: login por secreto compartido,
// listado filtrado con KPIs, toggles de estado y link de WhatsApp.
type AdminHandler struct {
	Admin *usecase.AdminUseCase
	Auth  *usecase.AuthUseCase
	Pixel *pixel.Resolver
}

func NewAdminHandler(admin *usecase.AdminUseCase, auth *usecase.AuthUseCase, pixelResolver *pixel.Resolver) *AdminHandler {
	return &AdminHandler{
		Admin: admin,
		Auth:  auth,
		Pixel: pixelResolver,
	}
}

// RequireAuth valida el token Bearer emitido en el login.
func (h *AdminHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !h.Auth.Validate(token) {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "no autorizado"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login valida el secreto y de paso dispara la primera carga de la caché de
// leads, igual que el panel al abrirse.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.Auth.Login(req.Password)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	if _, err := h.Admin.Refresh(); err != nil {
		respondJSON(w, http.StatusBadGateway, errorResponse{Error: "no se pudo cargar la hoja de leads"})
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	h.Auth.Logout(token)
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type adminLead struct {
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
	Contacted  bool   `json:"contacted"`
	Converted  bool   `json:"converted"`
	Lost       bool   `json:"lost"`
}

func toAdminLead(lead entity.Lead) adminLead {
	date := ""
	if !lead.Date.IsZero() {
		date = lead.Date.Format("2006-01-02 15:04")
	}
	return adminLead{
		ID:         lead.ID,
		Date:       date,
		Name:       lead.Name,
		Phone:      entity.RenderPhone(lead.Phone),
		Experience: string(lead.Experience),
		Capital:    string(lead.Capital),
		Time:       string(lead.Time),
		Goal:       lead.Goal,
		Offer:      string(lead.Offer),
		Status:     string(lead.Status),
		Contacted:  lead.Contacted,
		Converted:  lead.Converted,
		Lost:       lead.Lost,
	}
}

type listResponse struct {
	Leads      []adminLead   `json:"leads"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Stats      usecase.Stats `json:"stats"`
	NewLeads   int           `json:"new_leads"`
}

// List devuelve la página filtrada con sus KPIs. Con ?refresh=true vuelve a
// bajar la hoja antes de listar y reporta cuántos leads nuevos entraron.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	newLeads := 0
	if q.Get("refresh") == "true" {
		diff, err := h.Admin.Refresh()
		if err != nil {
			respondJSON(w, http.StatusBadGateway, errorResponse{Error: "no se pudo refrescar la hoja de leads"})
			return
		}
		newLeads = diff
	}

	filters := usecase.Filters{
		Time:    usecase.TimeAll,
		Action:  usecase.ActionAll,
		Product: usecase.ProductAll,
	}
	if v := q.Get("time"); v != "" {
		filters.Time = usecase.TimeFilter(v)
	}
	if v := q.Get("action"); v != "" {
		filters.Action = usecase.ActionFilter(v)
	}
	if v := q.Get("product"); v != "" {
		filters.Product = usecase.ProductFilter(v)
	}

	page, _ := strconv.Atoi(q.Get("page"))
	result := h.Admin.List(filters, page)

	leads := make([]adminLead, 0, len(result.Leads))
	for _, lead := range result.Leads {
		leads = append(leads, toAdminLead(lead))
	}

	respondJSON(w, http.StatusOK, listResponse{
		Leads:      leads,
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Stats:      result.Stats,
		NewLeads:   newLeads,
	})
}

type toggleRequest struct {
	Field string `json:"field"`
}

type toggleResponse struct {
	Lead       adminLead `json:"lead"`
	Dispatched bool      `json:"dispatched"`
}

// Toggle invierte un flag del lead. La caché se actualiza de inmediato aunque
// el parche a la hoja falle; dispatched lo deja registrado.
func (h *AdminHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lead, dispatched, err := h.Admin.Toggle(r.Context(), chi.URLParam(r, "id"), usecase.ToggleField(req.Field))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toggleResponse{
		Lead:       toAdminLead(lead),
		Dispatched: dispatched,
	})
}

type whatsappResponse struct {
	URL  string    `json:"url"`
	Lead adminLead `json:"lead"`
}

// WhatsApp arma el link de salida con el mensaje personalizado y marca el
// lead como contactado, igual que el click en el panel.
func (h *AdminHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	link, err := h.Admin.WhatsAppLink(id)
	if err != nil {
		respondError(w, err)
		return
	}

	lead, _, err := h.Admin.MarkContacted(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, whatsappResponse{
		URL:  link,
		Lead: toAdminLead(lead),
	})
}

type settingsResponse struct {
	PixelID       string `json:"pixel_id"`
	PixelOverride string `json:"pixel_override"`
	PixelDefault  string `json:"pixel_default"`
}

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, settingsResponse{
		PixelID:       h.Pixel.Current(),
		PixelOverride: h.Pixel.Override(),
		PixelDefault:  h.Pixel.Default(),
	})
}

type settingsRequest struct {
	PixelOverride string `json:"pixel_override"`
}

// UpdateSettings fija o limpia el override de Pixel ID en caliente.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.Pixel.SetOverride(strings.TrimSpace(req.PixelOverride))

	respondJSON(w, http.StatusOK, settingsResponse{
		PixelID:       h.Pixel.Current(),
		PixelOverride: h.Pixel.Override(),
		PixelDefault:  h.Pixel.Default(),
	})
}
