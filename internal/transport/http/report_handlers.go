package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"evalboard/internal/domains"
	"evalboard/internal/httpx"
	"evalboard/internal/service"
	"evalboard/internal/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ReportHandlers struct {
	service ReportServices
}

type ReportServices interface {
	SubmissionBreakdown(ctx context.Context, ownerID, assignmentID int, submissionID uuid.UUID) (domains.ComputedBreakdown, error)
	AggregateForTarget(ctx context.Context, ownerID, assignmentID int) (domains.AggregateReport, error)
}

func NewReportHandlers(service ReportServices) *ReportHandlers {
	return &ReportHandlers{service: service}
}

func (h *ReportHandlers) SubmissionBreakdown(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}
	submissionID, err := uuid.Parse(mux.Vars(r)["submissionId"])
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid submission id")
		return
	}

	owner, ok := httpx.UserIdFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	breakdown, err := h.service.SubmissionBreakdown(r.Context(), owner, int(assignmentID), submissionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound), errors.Is(err, storage.ErrNotFound):
			httpx.Error(w, http.StatusNotFound, "Submission not found")
		case errors.Is(err, service.ErrSnapshotInvalid):
			httpx.Error(w, http.StatusUnprocessableEntity, "Assignment form snapshot is invalid")
		default:
			slog.Error("SubmissionBreakdown failed", "err", err, "submission", submissionID)
			httpx.Error(w, http.StatusInternalServerError, "Failed to compute breakdown")
		}
		return
	}

	httpx.JSON(w, http.StatusOK, breakdown)
}

func (h *ReportHandlers) AggregateForTarget(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	owner, ok := httpx.UserIdFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	report, err := h.service.AggregateForTarget(r.Context(), owner, int(assignmentID))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httpx.Error(w, http.StatusNotFound, "Assignment not found")
		case errors.Is(err, service.ErrSnapshotInvalid):
			httpx.Error(w, http.StatusUnprocessableEntity, "Assignment form snapshot is invalid")
		default:
			slog.Error("AggregateForTarget failed", "err", err, "assignment", assignmentID)
			httpx.Error(w, http.StatusInternalServerError, "Failed to build report")
		}
		return
	}

	httpx.JSON(w, http.StatusOK, report)
}
