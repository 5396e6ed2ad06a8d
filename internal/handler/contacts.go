package handler

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/thiagogitai/sinconsult-crm/internal/service"
)

func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var input service.ContactInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid request body")
		return
	}

	contact, err := h.service.Contact.Create(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, contact)
}

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	contacts, err := h.service.Contact.List(r.Context(), page, limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, contacts)
}

func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid contact id")
		return
	}

	contact, err := h.service.Contact.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, contact)
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid contact id")
		return
	}

	var input service.ContactInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid request body")
		return
	}

	contact, err := h.service.Contact.Update(r.Context(), id, input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, contact)
}

// DeleteContact soft-deletes: the contact is deactivated and disappears from
// recipient resolution, while its message history stays.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeValidation, "Invalid contact id")
		return
	}

	if err := h.service.Contact.Deactivate(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.NoContent(w, r)
}
