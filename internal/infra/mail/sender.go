package mail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/fenixacademy/funnel-backend/internal/entity"
)

func NewEmailSender(host string, port int, user, password, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		To:       to,
	}
}

// SendHotLeadAlert avisa al inbox de ventas que entró un lead caliente, con
// el perfil completo para llamarlo antes de que se enfríe.
func (s *EmailSender) SendHotLeadAlert(lead entity.Lead) error {
	data := HotLeadEmailData{
		Name:       lead.Name,
		Phone:      entity.RenderPhone(lead.Phone),
		Experience: string(lead.Experience),
		Capital:    string(lead.Capital),
		Time:       string(lead.Time),
		Goal:       lead.Goal,
		Offer:      string(lead.Offer),
	}

	tmplPath := filepath.Join("templates", "hot_lead.html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("error al leer la plantilla de alerta: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("error al procesar la plantilla: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", "alertas@fenixacademy.com")
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("🔥 Lead caliente: %s (%s)", lead.Name, lead.Capital))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error al enviar la alerta SMTP: %w", err)
	}

	return nil
}
