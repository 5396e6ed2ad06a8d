package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thiagogitai/sinconsult-crm/internal/handler"
)

func setupRouter(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", h.HealthCheck)

	r.Post("/auth/login", h.Login)

	r.Route("/contacts", func(r chi.Router) {
		r.Post("/", h.CreateContact)
		r.Get("/", h.ListContacts)
		r.Get("/{id}", h.GetContact)
		r.Put("/{id}", h.UpdateContact)
		r.Delete("/{id}", h.DeleteContact)
	})

	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", h.CreateCampaign)
		r.Get("/", h.ListCampaigns)
		r.Get("/{id}", h.GetCampaign)
		r.Delete("/{id}", h.DeleteCampaign)
		r.Post("/{id}/start", h.StartCampaign)
		r.Post("/{id}/reset", h.ResetCampaign)
		r.Get("/{id}/stats", h.GetCampaignStats)
	})

	r.Post("/messages/send", h.SendMessage)

	r.Get("/instances", h.ListInstances)

	r.Post("/webhooks/whatsapp", h.ProviderWebhook)

	r.Route("/scheduler", func(r chi.Router) {
		r.Post("/start", h.StartScheduler)
		r.Post("/stop", h.StopScheduler)
	})

	return r
}
