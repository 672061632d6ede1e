package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fenixacademy/funnel-backend/internal/infra/http/handlers"
	"github.com/fenixacademy/funnel-backend/internal/infra/http/middleware"
	"github.com/fenixacademy/funnel-backend/internal/infra/integration/meta"
	"github.com/fenixacademy/funnel-backend/internal/infra/mail"
	"github.com/fenixacademy/funnel-backend/internal/infra/memory"
	"github.com/fenixacademy/funnel-backend/internal/infra/pixel"
	"github.com/fenixacademy/funnel-backend/internal/infra/queue"
	"github.com/fenixacademy/funnel-backend/internal/infra/sheets"
	"github.com/fenixacademy/funnel-backend/internal/usecase"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	godotenv.Load()

	sheetsURL := os.Getenv("SHEETS_URL")
	if sheetsURL == "" {
		log.Fatal("SHEETS_URL es obligatoria: sin hoja no hay leads")
	}

	rabbitMQ, err := queue.NewRabbitMQ(
		env("RABBITMQ_USER", "user"),
		env("RABBITMQ_PASS", "password"),
		env("RABBITMQ_HOST", "localhost"),
		env("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		panic(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Gateways y adapters
	gateway := sheets.NewClient(sheetsURL)
	pixelResolver := pixel.NewResolver(os.Getenv("META_PIXEL_ID"))
	metaClient := meta.NewClient(os.Getenv("META_CAPI_TOKEN"), os.Getenv("META_API_URL"), pixelResolver)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	var mailer usecase.AlertMailer
	if os.Getenv("SMTP_HOST") != "" {
		smtpPort, _ := strconv.Atoi(env("SMTP_PORT", "587"))
		mailer = mail.NewEmailSender(
			os.Getenv("SMTP_HOST"), smtpPort,
			os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"),
			os.Getenv("ALERT_TO"),
		)
	}

	// 2. Worker (consume la fila y reenvía a la Conversions API)
	worker := queue.NewWorker(rabbitMQ.Ch, metaClient)
	go worker.Start(queue.QueueName)

	// 3. UseCases
	sessions := memory.NewSessionStore(memory.DefaultSessionTTL)
	qualificationUC := usecase.NewQualificationUseCase(
		sessions, gateway, producer, mailer, usecase.QualificationConfig{},
	)
	adminUC := usecase.NewAdminUseCase(gateway, producer)
	authUC := usecase.NewAuthUseCase(os.Getenv("CRM_PASSWORD"), usecase.DefaultTokenTTL)

	// 4. Handlers
	limiter := handlers.NewRateLimiter(20, time.Minute)
	sessionHandler := handlers.NewSessionHandler(qualificationUC, limiter)
	botHandler := handlers.NewBotHandler(qualificationUC, limiter)
	trackHandler := handlers.NewTrackHandler(producer)
	adminHandler := handlers.NewAdminHandler(adminUC, authUC, pixelResolver)
	healthHandler := handlers.NewHealthHandler(rabbitMQ.Conn)

	// 5. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/track", trackHandler.Track)
	r.Post("/bot/leads", botHandler.Submit)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", sessionHandler.Start)
		r.Get("/{id}", sessionHandler.Get)
		r.Post("/{id}/select", sessionHandler.Select)
		r.Post("/{id}/contact", sessionHandler.Contact)
		r.Post("/{id}/next", sessionHandler.Next)
		r.Post("/{id}/back", sessionHandler.Back)
		r.Post("/{id}/dismiss", sessionHandler.Dismiss)
		r.Post("/{id}/exit/confirm", sessionHandler.ConfirmExit)
		r.Post("/{id}/exit/cancel", sessionHandler.CancelExit)
		r.Post("/{id}/downsell/accept", sessionHandler.AcceptDownsell)
		r.Post("/{id}/downsell/reject", sessionHandler.RejectDownsell)
		r.Post("/{id}/submit", sessionHandler.Submit)
		r.Post("/{id}/ack", sessionHandler.Acknowledge)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", adminHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(adminHandler.RequireAuth)
			r.Post("/logout", adminHandler.Logout)
			r.Get("/leads", adminHandler.List)
			r.Post("/leads/{id}/toggle", adminHandler.Toggle)
			r.Get("/leads/{id}/whatsapp", adminHandler.WhatsApp)
			r.Get("/settings", adminHandler.GetSettings)
			r.Put("/settings", adminHandler.UpdateSettings)
		})
	})

	port := ":" + env("PORT", "8080")
	log.Printf("🔥 Server Fenix Funnel corriendo en el puerto %s", port)
	http.ListenAndServe(port, r)
}
