package handler

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/thiagogitai/sinconsult-crm/internal/service"
)

func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var input service.CampaignInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid request body")
		return
	}

	campaign, err := h.service.Campaign.Create(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, campaign)
}

func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	campaigns, err := h.service.Campaign.List(r.Context(), page, limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, campaigns)
}

func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid campaign id")
		return
	}

	campaign, err := h.service.Campaign.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, campaign)
}

// StartCampaign triggers dispatch synchronously and reports the aggregate
// outcome. Individual provider failures never fail the request; they show up
// in the summary and in the campaign stats.
func (h *Handler) StartCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid campaign id")
		return
	}

	summary, err := h.service.Dispatch.Dispatch(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, summary)
}

// ResetCampaign flips a campaign stuck in "sending" back to "scheduled".
func (h *Handler) ResetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid campaign id")
		return
	}

	if err := h.service.Campaign.Reset(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"status": "scheduled"})
}

func (h *Handler) GetCampaignStats(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid campaign id")
		return
	}

	stats, err := h.service.Campaign.Stats(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, stats)
}

func (h *Handler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid campaign id")
		return
	}

	if err := h.service.Campaign.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.NoContent(w, r)
}
