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
)

type AssignmentHandlers struct {
	service AssignmentServices
}

type AssignmentServices interface {
	CreateAssignment(ctx context.Context, payload domains.AssignmentCreate, ownerID int) (domains.AssignmentCreateResult, error)
	GetAllAssignmentsByOwner(ctx context.Context, ownerID int) ([]domains.Assignment, error)
	GetAssignmentById(ctx context.Context, ownerID, assignmentID int) (domains.AssignmentDetails, error)
	AddReviewer(ctx context.Context, ownerID, assignmentID int, reviewer domains.ReviewerCreate) (domains.ReviewerInvitation, error)
	RemoveReviewer(ctx context.Context, ownerID, assignmentID, inviteID int) error
}

func NewAssignmentHandlers(service AssignmentServices) *AssignmentHandlers {
	return &AssignmentHandlers{service: service}
}

func (h *AssignmentHandlers) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	owner, ok := httpx.UserIdFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	payload, err := httpx.ReadBody[domains.AssignmentCreate](*r)
	if err != nil {
		slog.Error("CreateAssignment read body", "err", err)
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.TemplateID == 0 {
		httpx.Error(w, http.StatusBadRequest, "template_id is required")
		return
	}

	created, err := h.service.CreateAssignment(r.Context(), payload, owner)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTargetUserRequired):
			httpx.Error(w, http.StatusBadRequest, "target_user is required")
		case errors.Is(err, service.ErrScheduleInvalid):
			httpx.Error(w, http.StatusBadRequest, "Assignment schedule is invalid")
		case errors.Is(err, service.ErrSnapshotInvalid):
			httpx.Error(w, http.StatusUnprocessableEntity, "Template schema is not a valid form")
		case errors.Is(err, storage.ErrNotFound):
			httpx.Error(w, http.StatusNotFound, "Template not found")
		default:
			slog.Error("CreateAssignment failed", "err", err)
			httpx.Error(w, http.StatusInternalServerError, "Failed to create assignment")
		}
		return
	}

	httpx.JSON(w, http.StatusCreated, created)
}

func (h *AssignmentHandlers) GetAllAssignmentsByOwner(w http.ResponseWriter, r *http.Request) {
	owner, ok := httpx.UserIdFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	assignments, err := h.service.GetAllAssignmentsByOwner(r.Context(), owner)
	if err != nil {
		slog.Error("GetAllAssignmentsByOwner failed", "err", err, "owner", owner)
		httpx.Error(w, http.StatusInternalServerError, "Failed to list assignments")
		return
	}

	httpx.JSON(w, http.StatusOK, assignments)
}

func (h *AssignmentHandlers) GetAssignmentById(w http.ResponseWriter, r *http.Request) {
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

	details, err := h.service.GetAssignmentById(r.Context(), owner, int(assignmentID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Assignment not found")
			return
		}
		slog.Error("GetAssignmentById failed", "err", err, "owner", owner, "assignment", assignmentID)
		httpx.Error(w, http.StatusInternalServerError, "Failed to load assignment")
		return
	}

	httpx.JSON(w, http.StatusOK, details)
}

func (h *AssignmentHandlers) AddReviewer(w http.ResponseWriter, r *http.Request) {
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

	reviewer, err := httpx.ReadBody[domains.ReviewerCreate](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if reviewer.FullName == "" {
		httpx.Error(w, http.StatusBadRequest, "full_name is required")
		return
	}

	invitation, err := h.service.AddReviewer(r.Context(), owner, int(assignmentID), reviewer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewerExists):
			httpx.Error(w, http.StatusConflict, "Reviewer already invited")
		case errors.Is(err, service.ErrInviteTokenExpired):
			httpx.Error(w, http.StatusConflict, "Assignment already ended")
		case errors.Is(err, storage.ErrNotFound):
			httpx.Error(w, http.StatusNotFound, "Assignment not found")
		default:
			slog.Error("AddReviewer failed", "err", err, "assignment", assignmentID)
			httpx.Error(w, http.StatusInternalServerError, "Failed to add reviewer")
		}
		return
	}

	httpx.JSON(w, http.StatusCreated, invitation)
}

func (h *AssignmentHandlers) RemoveReviewer(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}
	inviteID, ok := httpx.PathID(r, "inviteId")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Invalid invite id")
		return
	}

	owner, ok := httpx.UserIdFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.RemoveReviewer(r.Context(), owner, int(assignmentID), int(inviteID)); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewerNotFound), errors.Is(err, storage.ErrNotFound):
			httpx.Error(w, http.StatusNotFound, "Reviewer not found")
		default:
			slog.Error("RemoveReviewer failed", "err", err, "invite", inviteID)
			httpx.Error(w, http.StatusInternalServerError, "Failed to remove reviewer")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
