package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"evalboard/internal/domains"
	"evalboard/internal/httpx"
	"evalboard/internal/storage"
)

type TemplateHandlers struct {
	service TemplateServices
}

type TemplateServices interface {
	CreateTemplate(ctx context.Context, template domains.TemplateCreate, ownerID int) error
	GetAllTemplatesByOwner(ctx context.Context, ownerID int) ([]domains.Template, error)
	GetTemplateById(ctx context.Context, ownerID int, templateID int) (domains.Template, error)
	UpdateTemplate(ctx context.Context, templateID int, template domains.TemplateCreate, ownerID int) error
}

func NewTemplateHandlers(service TemplateServices) *TemplateHandlers {
	return &TemplateHandlers{
		service: service,
	}
}

func (h *TemplateHandlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	owner, ok := httpx.UserIdFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	templateData, err := httpx.ReadBody[domains.TemplateCreate](*r)
	if err != nil {
		slog.Error("CreateTemplate read body", "err", err)
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if templateData.Title == "" {
		httpx.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	if err := h.service.CreateTemplate(r.Context(), templateData, owner); err != nil {
		slog.Error("CreateTemplate failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Failed to create template")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *TemplateHandlers) GetAllTemplatesByOwner(w http.ResponseWriter, r *http.Request) {
	owner, ok := httpx.UserIdFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	templates, err := h.service.GetAllTemplatesByOwner(r.Context(), owner)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to list templates")
		return
	}
	httpx.JSON(w, http.StatusOK, templates)
}

func (h *TemplateHandlers) GetTemplateById(w http.ResponseWriter, r *http.Request) {
	templateID, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Invalid template id")
		return
	}

	owner, ok := httpx.UserIdFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	template, err := h.service.GetTemplateById(r.Context(), owner, int(templateID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Template not found")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Failed to load template")
		return
	}
	httpx.JSON(w, http.StatusOK, template)
}

func (h *TemplateHandlers) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Invalid template id")
		return
	}

	owner, ok := httpx.UserIdFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	templateData, err := httpx.ReadBody[domains.TemplateCreate](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateTemplate(r.Context(), int(templateID), templateData, owner); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Template not found")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Failed to update template")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
