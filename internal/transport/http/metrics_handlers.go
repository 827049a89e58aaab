package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"evalboard/internal/domains"
	"evalboard/internal/httpx"

	"github.com/gorilla/mux"
)

type MetricsHandlers struct {
	service MetricsServices
}

type MetricsServices interface {
	GetWeights(ctx context.Context, ownerID int, department string) (domains.MetricWeights, error)
	SaveWeights(ctx context.Context, ownerID int, department string, weights domains.MetricWeights) error
}

func NewMetricsHandlers(service MetricsServices) *MetricsHandlers {
	return &MetricsHandlers{service: service}
}

func (h *MetricsHandlers) GetWeights(w http.ResponseWriter, r *http.Request) {
	owner, ok := httpx.UserIdFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	department := mux.Vars(r)["department"]
	if department == "" {
		httpx.Error(w, http.StatusBadRequest, "department is required")
		return
	}

	weights, err := h.service.GetWeights(r.Context(), owner, department)
	if err != nil {
		slog.Error("GetWeights failed", "err", err, "department", department)
		httpx.Error(w, http.StatusInternalServerError, "Failed to load metric weights")
		return
	}

	httpx.JSON(w, http.StatusOK, weights)
}

func (h *MetricsHandlers) SaveWeights(w http.ResponseWriter, r *http.Request) {
	owner, ok := httpx.UserIdFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	request, err := httpx.ReadBody[MetricWeightsRequest](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(request); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	weights := domains.MetricWeights{
		Manager:    request.Manager,
		Tasks:      request.Tasks,
		Attendance: request.Attendance,
	}
	if err := h.service.SaveWeights(r.Context(), owner, request.Department, weights); err != nil {
		slog.Error("SaveWeights failed", "err", err, "department", request.Department)
		httpx.Error(w, http.StatusInternalServerError, "Failed to save metric weights")
		return
	}

	httpx.JSON(w, http.StatusOK, weights)
}
