package service

import (
	"context"
	"log/slog"

	"evalboard/internal/domains"
)

type TemplateService struct {
	provider TemplateProvider
}

type TemplateProvider interface {
	SaveTemplate(ctx context.Context, template domains.TemplateCreate, ownerID int) error
	UpdateTemplate(ctx context.Context, templateID int, template domains.TemplateCreate, ownerID int) error
	GetAllTemplatesByOwner(ctx context.Context, ownerID int) ([]domains.Template, error)
	GetTemplateById(ctx context.Context, ownerID int, templateID int) (domains.Template, error)
}

func NewTemplateService(provider TemplateProvider) *TemplateService {
	return &TemplateService{
		provider: provider,
	}
}

func (h *TemplateService) CreateTemplate(ctx context.Context, template domains.TemplateCreate, ownerID int) error {
	if err := h.provider.SaveTemplate(ctx, template, ownerID); err != nil {
		slog.Error("save template failed", "err", err, "owner_id", ownerID)
		return err
	}
	return nil
}

func (h *TemplateService) GetAllTemplatesByOwner(ctx context.Context, ownerID int) ([]domains.Template, error) {
	templates, err := h.provider.GetAllTemplatesByOwner(ctx, ownerID)
	if err != nil {
		slog.Error("list templates failed", "err", err, "owner_id", ownerID)
		return nil, err
	}
	return templates, nil
}

func (h *TemplateService) GetTemplateById(ctx context.Context, ownerID int, templateID int) (domains.Template, error) {
	template, err := h.provider.GetTemplateById(ctx, ownerID, templateID)
	if err != nil {
		slog.Error("get template failed", "err", err, "owner_id", ownerID, "template_id", templateID)
		return domains.Template{}, err
	}
	return template, nil
}

func (h *TemplateService) UpdateTemplate(ctx context.Context, templateID int, template domains.TemplateCreate, ownerID int) error {
	if err := h.provider.UpdateTemplate(ctx, templateID, template, ownerID); err != nil {
		slog.Error("update template failed", "err", err, "owner_id", ownerID, "template_id", templateID)
		return err
	}
	return nil
}
