package service

import (
	"context"
	"errors"
	"log/slog"

	"evalboard/internal/domains"
	"evalboard/internal/storage"
)

// MetricsService manages the objective-score weight configuration. Weights
// are stored raw; normalization happens inside the scoring engine.
type MetricsService struct {
	provider       MetricsConfigProvider
	defaultWeights domains.MetricWeights
}

type MetricsConfigProvider interface {
	GetDepartmentWeights(ctx context.Context, ownerID int64, department string) (domains.MetricWeights, error)
	SaveDepartmentWeights(ctx context.Context, ownerID int64, department string, weights domains.MetricWeights) error
}

func NewMetricsService(provider MetricsConfigProvider, defaultWeights domains.MetricWeights) *MetricsService {
	return &MetricsService{
		provider:       provider,
		defaultWeights: defaultWeights,
	}
}

// GetWeights returns the department override when present, the company-wide
// defaults otherwise.
func (s *MetricsService) GetWeights(ctx context.Context, ownerID int, department string) (domains.MetricWeights, error) {
	if department == "" {
		return s.defaultWeights, nil
	}
	weights, err := s.provider.GetDepartmentWeights(ctx, int64(ownerID), department)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return s.defaultWeights, nil
		}
		slog.Error("get department weights failed", "err", err, "department", department)
		return domains.MetricWeights{}, err
	}
	return weights, nil
}

func (s *MetricsService) SaveWeights(ctx context.Context, ownerID int, department string, weights domains.MetricWeights) error {
	if err := s.provider.SaveDepartmentWeights(ctx, int64(ownerID), department, weights); err != nil {
		slog.Error("save department weights failed", "err", err, "department", department)
		return err
	}
	return nil
}
