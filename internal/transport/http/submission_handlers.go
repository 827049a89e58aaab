package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"evalboard/internal/domains"
	"evalboard/internal/httpx"
	"evalboard/internal/scoring"
	"evalboard/internal/service"
)

type SubmissionHandlers struct {
	service SubmissionServices
}

type SubmissionServices interface {
	AccessByToken(ctx context.Context, token string) (domains.AssignmentAccess, error)
	StartByToken(ctx context.Context, token, channel string) (domains.Submission, error)
	SaveDraft(ctx context.Context, token string, answers []domains.Answer) (domains.SubmissionResult, error)
	Submit(ctx context.Context, token, channel string, answers []domains.Answer) (domains.SubmissionResult, domains.ComputedBreakdown, error)
	GetResultByToken(ctx context.Context, token string) (domains.SubmissionResult, error)
}

func NewSubmissionHandlers(service SubmissionServices) *SubmissionHandlers {
	return &SubmissionHandlers{service: service}
}

func (h *SubmissionHandlers) AccessByToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" && r.Method != http.MethodGet {
		request, err := httpx.ReadBody[AccessRequest](*r)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		token = request.Token
	}
	if token == "" {
		httpx.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	access, err := h.service.AccessByToken(r.Context(), token)
	if err != nil {
		writeTokenError(w, err, "AccessByToken")
		return
	}

	httpx.JSON(w, http.StatusOK, access)
}

func (h *SubmissionHandlers) Start(w http.ResponseWriter, r *http.Request) {
	request, err := httpx.ReadBody[StartRequest](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(request); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	submission, err := h.service.StartByToken(r.Context(), request.Token, request.Channel)
	if err != nil {
		writeTokenError(w, err, "Start")
		return
	}

	httpx.JSON(w, http.StatusCreated, submission)
}

func (h *SubmissionHandlers) SaveDraft(w http.ResponseWriter, r *http.Request) {
	request, err := httpx.ReadBody[SubmissionRequest](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(request); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.service.SaveDraft(r.Context(), request.Token, request.ToAnswers())
	if err != nil {
		writeTokenError(w, err, "SaveDraft")
		return
	}

	httpx.JSON(w, http.StatusOK, saved)
}

func (h *SubmissionHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	request, err := httpx.ReadBody[SubmissionRequest](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(request); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, breakdown, err := h.service.Submit(r.Context(), request.Token, request.Channel, request.ToAnswers())
	if err != nil {
		var validation scoring.ValidationErrors
		if errors.As(err, &validation) {
			httpx.JSON(w, http.StatusUnprocessableEntity, struct {
				Error   string                   `json:"error"`
				Details scoring.ValidationErrors `json:"details"`
			}{Error: "Submission failed validation", Details: validation})
			return
		}
		writeTokenError(w, err, "Submit")
		return
	}

	httpx.JSON(w, http.StatusOK, SubmitResponse{
		Submission: saved.Submission,
		Answers:    saved.Answers,
		Breakdown:  breakdown,
	})
}

func (h *SubmissionHandlers) GetResultByToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	result, err := h.service.GetResultByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			httpx.Error(w, http.StatusNotFound, "No submission yet")
			return
		}
		writeTokenError(w, err, "GetResultByToken")
		return
	}

	httpx.JSON(w, http.StatusOK, result)
}

func writeTokenError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrInviteTokenInvalid):
		httpx.Error(w, http.StatusUnauthorized, "Invalid invite token")
	case errors.Is(err, service.ErrInviteTokenExpired):
		httpx.Error(w, http.StatusGone, "Invite token has expired")
	case errors.Is(err, service.ErrInviteTokenUsed):
		httpx.Error(w, http.StatusForbidden, "Invite token use limit reached")
	case errors.Is(err, service.ErrSnapshotInvalid):
		httpx.Error(w, http.StatusUnprocessableEntity, "Assignment form snapshot is invalid")
	default:
		slog.Error(op+" failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Request failed")
	}
}
