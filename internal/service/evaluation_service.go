package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"evalboard/internal/domains"
	"evalboard/internal/scoring"
	"evalboard/internal/storage"

	"github.com/dgrijalva/jwt-go"
)

type EvaluationService struct {
	provider       AssignmentProvider
	templates      TemplateProvider
	metrics        MetricsProvider
	secret         string
	defaultWeights domains.MetricWeights
	invitationTTL  time.Duration
}

type AssignmentProvider interface {
	SaveAssignment(ctx context.Context, assignment domains.AssignmentToSave, generator domains.InviteTokenGenerator) (domains.Assignment, []domains.ReviewerInvitation, error)
	GetAllAssignmentsByOwner(ctx context.Context, ownerID int64) ([]domains.Assignment, error)
	GetAssignmentByID(ctx context.Context, ownerID, assignmentID int64) (domains.Assignment, error)
	GetAssignmentAccessByInviteID(ctx context.Context, inviteID int64) (domains.AssignmentAccess, error)
	ListInvitesByAssignmentID(ctx context.Context, ownerID, assignmentID int64) ([]domains.ReviewerInvite, error)
	GetInviteByID(ctx context.Context, inviteID int64) (domains.ReviewerInvite, error)
	AddInvite(ctx context.Context, assignmentID, ownerID int64, reviewer domains.ReviewerCreate, generator domains.InviteTokenGenerator) (domains.ReviewerInvitation, error)
	RemoveInvite(ctx context.Context, assignmentID, ownerID, inviteID int64) error
	UpdateInviteToken(ctx context.Context, inviteID int64, hash []byte, expiresAt time.Time) error
	GetAssignmentStatistics(ctx context.Context, ownerID, assignmentID int64) (domains.AssignmentStatisticsCounts, error)
	StartSubmission(ctx context.Context, assignmentID, inviteID int64, channel string) (domains.Submission, error)
	SaveDraftAnswers(ctx context.Context, assignmentID, inviteID int64, answers []domains.Answer) (domains.SubmissionResult, error)
	SubmitAnswers(ctx context.Context, payload domains.SubmissionToSave) (domains.SubmissionResult, error)
	GetSubmissionByInviteID(ctx context.Context, inviteID int64) (domains.SubmissionResult, error)
}

type MetricsProvider interface {
	GetDepartmentWeights(ctx context.Context, ownerID int64, department string) (domains.MetricWeights, error)
	GetTargetReadings(ctx context.Context, targetUser string) (domains.MetricReadings, error)
}

func NewEvaluationService(provider AssignmentProvider, templates TemplateProvider, metrics MetricsProvider, secret string, defaultWeights domains.MetricWeights) *EvaluationService {
	return &EvaluationService{
		provider:       provider,
		templates:      templates,
		metrics:        metrics,
		secret:         secret,
		defaultWeights: defaultWeights,
		invitationTTL:  15 * 24 * time.Hour,
	}
}

func (h *EvaluationService) CreateAssignment(ctx context.Context, payload domains.AssignmentCreate, ownerID int) (domains.AssignmentCreateResult, error) {
	slog.Info("CreateAssignment", "template_id", payload.TemplateID, "target_user", payload.TargetUser)
	if payload.TargetUser == "" {
		return domains.AssignmentCreateResult{}, ErrTargetUserRequired
	}

	template, err := h.templates.GetTemplateById(ctx, ownerID, int(payload.TemplateID))
	if err != nil {
		return domains.AssignmentCreateResult{}, fmt.Errorf("load template: %w", err)
	}

	schema := template.PublishedSchemaJSON
	if len(schema) == 0 {
		schema = template.DraftSchemaJSON
	}
	if len(schema) == 0 {
		return domains.AssignmentCreateResult{}, ErrSnapshotInvalid
	}
	if _, err := domains.DecodeFormSnapshot(schema); err != nil {
		slog.Error("CreateAssignment snapshot decode", "err", err, "template_id", template.ID)
		return domains.AssignmentCreateResult{}, ErrSnapshotInvalid
	}

	status := payload.Status
	if status == "" {
		status = "draft"
	}
	now := time.Now()
	if shouldOpenOnCreate(payload.StartsAt, now) && status != "closed" && status != "archived" {
		status = "open"
	}
	title := payload.Title
	if title == "" {
		title = template.Title
	}

	if payload.StartsAt != nil && payload.EndsAt != nil && !payload.EndsAt.After(*payload.StartsAt) {
		return domains.AssignmentCreateResult{}, ErrScheduleInvalid
	}
	if payload.EndsAt != nil && payload.EndsAt.Before(now) {
		return domains.AssignmentCreateResult{}, ErrScheduleInvalid
	}

	toSave := domains.AssignmentToSave{
		OwnerID:          int64(ownerID),
		TemplateID:       template.ID,
		SnapshotVersion:  template.Version,
		FormSnapshotJSON: schema,
		Title:            title,
		TargetUser:       payload.TargetUser,
		Department:       payload.Department,
		Status:           status,
		Anonymous:        payload.Anonymous,
		StartsAt:         payload.StartsAt,
		EndsAt:           payload.EndsAt,
		Reviewers:        payload.Reviewers,
	}

	assignment, invites, err := h.provider.SaveAssignment(ctx, toSave, h.buildToken)
	if err != nil {
		if errors.Is(err, ErrInviteTokenExpired) {
			return domains.AssignmentCreateResult{}, ErrScheduleInvalid
		}
		slog.Error("SaveAssignment failed", "err", err)
		return domains.AssignmentCreateResult{}, err
	}

	return domains.AssignmentCreateResult{Assignment: assignment, Invitations: invites}, nil
}

func (h *EvaluationService) GetAllAssignmentsByOwner(ctx context.Context, ownerID int) ([]domains.Assignment, error) {
	assignments, err := h.provider.GetAllAssignmentsByOwner(ctx, int64(ownerID))
	if err != nil {
		slog.Error("GetAllAssignmentsByOwner failed", "err", err, "owner_id", ownerID)
		return nil, err
	}
	return assignments, nil
}

func (h *EvaluationService) GetAssignmentById(ctx context.Context, ownerID, assignmentID int) (domains.AssignmentDetails, error) {
	assignment, err := h.provider.GetAssignmentByID(ctx, int64(ownerID), int64(assignmentID))
	if err != nil {
		slog.Error("GetAssignmentByID failed", "err", err, "owner_id", ownerID, "assignment_id", assignmentID)
		return domains.AssignmentDetails{}, err
	}

	invites, err := h.provider.ListInvitesByAssignmentID(ctx, int64(ownerID), int64(assignmentID))
	if err != nil {
		slog.Error("ListInvitesByAssignmentID failed", "err", err, "assignment_id", assignmentID)
		return domains.AssignmentDetails{}, err
	}

	statsCounts, err := h.provider.GetAssignmentStatistics(ctx, int64(ownerID), int64(assignmentID))
	if err != nil {
		slog.Error("GetAssignmentStatistics failed", "err", err, "assignment_id", assignmentID)
		return domains.AssignmentDetails{}, err
	}

	invitations := make([]domains.ReviewerInvitation, 0, len(invites))
	for _, invite := range invites {
		if !isInviteTokenAllowed(invite.State) {
			continue
		}

		payload := domains.InviteTokenPayload{
			AssignmentID:       assignment.ID,
			InviteID:           invite.ID,
			OwnerID:            assignment.OwnerID,
			AssignmentStartsAt: assignment.StartsAt,
			AssignmentEndsAt:   assignment.EndsAt,
			Reviewer: domains.ReviewerCreate{
				FullName: invite.FullName,
				Email:    invite.Email,
			},
		}
		token, hash, expiresAt, err := h.buildToken(payload)
		if err != nil {
			if errors.Is(err, ErrInviteTokenExpired) {
				continue
			}
			slog.Error("buildToken failed", "err", err, "invite_id", invite.ID)
			return domains.AssignmentDetails{}, err
		}

		if err := h.provider.UpdateInviteToken(ctx, invite.ID, hash, expiresAt); err != nil {
			slog.Error("UpdateInviteToken failed", "err", err, "invite_id", invite.ID)
			return domains.AssignmentDetails{}, err
		}

		invitations = append(invitations, domains.ReviewerInvitation{
			InviteID:  invite.ID,
			Token:     token,
			ExpiresAt: expiresAt,
			FullName:  invite.FullName,
			Email:     invite.Email,
		})
	}

	return domains.AssignmentDetails{
		Assignment:  assignment,
		Invitations: invitations,
		Statistics:  statsCounts.ToAssignmentStatistics(),
	}, nil
}

func (h *EvaluationService) AddReviewer(ctx context.Context, ownerID, assignmentID int, reviewer domains.ReviewerCreate) (domains.ReviewerInvitation, error) {
	assignment, err := h.provider.GetAssignmentByID(ctx, int64(ownerID), int64(assignmentID))
	if err != nil {
		slog.Error("GetAssignmentByID failed", "err", err, "owner_id", ownerID, "assignment_id", assignmentID)
		return domains.ReviewerInvitation{}, err
	}
	if assignment.EndsAt != nil && time.Now().After(*assignment.EndsAt) {
		return domains.ReviewerInvitation{}, ErrInviteTokenExpired
	}

	invitation, err := h.provider.AddInvite(ctx, assignment.ID, assignment.OwnerID, reviewer, h.buildToken)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			return domains.ReviewerInvitation{}, ErrReviewerExists
		case errors.Is(err, storage.ErrNotFound):
			return domains.ReviewerInvitation{}, storage.ErrNotFound
		case errors.Is(err, ErrInviteTokenExpired):
			return domains.ReviewerInvitation{}, ErrInviteTokenExpired
		default:
			slog.Error("AddInvite failed", "err", err, "assignment_id", assignmentID)
			return domains.ReviewerInvitation{}, err
		}
	}

	return invitation, nil
}

func (h *EvaluationService) RemoveReviewer(ctx context.Context, ownerID, assignmentID, inviteID int) error {
	if _, err := h.provider.GetAssignmentByID(ctx, int64(ownerID), int64(assignmentID)); err != nil {
		slog.Error("GetAssignmentByID failed", "err", err, "owner_id", ownerID, "assignment_id", assignmentID)
		return err
	}

	if err := h.provider.RemoveInvite(ctx, int64(assignmentID), int64(ownerID), int64(inviteID)); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return ErrReviewerNotFound
		default:
			slog.Error("RemoveInvite failed", "err", err, "invite_id", inviteID)
			return err
		}
	}

	return nil
}

func (h *EvaluationService) AccessByToken(ctx context.Context, token string) (domains.AssignmentAccess, error) {
	access, err := h.fetchAccess(ctx, token)
	if err != nil {
		return domains.AssignmentAccess{}, err
	}
	if err := ensureTokenUsable(access); err != nil {
		return domains.AssignmentAccess{}, err
	}
	return access, nil
}

func (h *EvaluationService) StartByToken(ctx context.Context, token, channel string) (domains.Submission, error) {
	access, err := h.fetchAccess(ctx, token)
	if err != nil {
		return domains.Submission{}, err
	}
	if err := ensureTokenUsable(access); err != nil {
		return domains.Submission{}, err
	}

	submission, err := h.provider.StartSubmission(ctx, access.Assignment.ID, access.Invite.ID, sanitizeChannel(channel))
	if err != nil {
		slog.Error("StartSubmission failed", "err", err, "invite_id", access.Invite.ID)
		return domains.Submission{}, err
	}
	return submission, nil
}

// SaveDraft replaces the reviewer's answer set wholesale. Drafts are not
// validated against required questions; that check runs at submit time.
func (h *EvaluationService) SaveDraft(ctx context.Context, token string, answers []domains.Answer) (domains.SubmissionResult, error) {
	access, err := h.fetchAccess(ctx, token)
	if err != nil {
		return domains.SubmissionResult{}, err
	}
	if err := ensureTokenUsable(access); err != nil {
		return domains.SubmissionResult{}, err
	}

	saved, err := h.provider.SaveDraftAnswers(ctx, access.Assignment.ID, access.Invite.ID, answers)
	if err != nil {
		slog.Error("SaveDraftAnswers failed", "err", err, "invite_id", access.Invite.ID)
		return domains.SubmissionResult{}, err
	}
	return saved, nil
}

// Submit validates the answer set against the assignment's snapshot, scores
// it and persists the final answers. A validation failure blocks the
// submission before anything is written.
func (h *EvaluationService) Submit(ctx context.Context, token, channel string, answers []domains.Answer) (domains.SubmissionResult, domains.ComputedBreakdown, error) {
	access, err := h.fetchAccess(ctx, token)
	if err != nil {
		return domains.SubmissionResult{}, domains.ComputedBreakdown{}, err
	}
	if err := ensureTokenUsable(access); err != nil {
		return domains.SubmissionResult{}, domains.ComputedBreakdown{}, err
	}

	snapshot, err := domains.DecodeFormSnapshot(access.Assignment.FormSnapshotJSON)
	if err != nil {
		slog.Error("Submit snapshot decode", "err", err, "assignment_id", access.Assignment.ID)
		return domains.SubmissionResult{}, domains.ComputedBreakdown{}, ErrSnapshotInvalid
	}

	metrics := resolveMetricInputs(ctx, h.metrics, h.defaultWeights, access.Assignment)
	breakdown, err := scoring.ComputeBreakdown(snapshot, answers, metrics)
	if err != nil {
		return domains.SubmissionResult{}, domains.ComputedBreakdown{}, err
	}
	logDataQualityWarnings(access.Assignment.ID, breakdown)

	payload := domains.SubmissionToSave{
		AssignmentID:   access.Assignment.ID,
		InviteID:       access.Invite.ID,
		Channel:        sanitizeChannel(channel),
		State:          "submitted",
		SubmittedAt:    time.Now().UTC(),
		Answers:        answers,
		IncrementUsage: true,
	}

	saved, err := h.provider.SubmitAnswers(ctx, payload)
	if err != nil {
		slog.Error("SubmitAnswers failed", "err", err, "invite_id", access.Invite.ID)
		return domains.SubmissionResult{}, domains.ComputedBreakdown{}, err
	}

	return saved, breakdown, nil
}

func logDataQualityWarnings(assignmentID int64, breakdown domains.ComputedBreakdown) {
	for _, row := range breakdown.PerQuestion {
		if row.Warning != "" {
			slog.Warn("data quality condition",
				"assignment_id", assignmentID,
				"question_id", row.QuestionID,
				"warning", row.Warning,
			)
		}
	}
}

// GetResultByToken returns the reviewer's own saved submission, draft or
// final.
func (h *EvaluationService) GetResultByToken(ctx context.Context, token string) (domains.SubmissionResult, error) {
	access, err := h.fetchAccess(ctx, token)
	if err != nil {
		return domains.SubmissionResult{}, err
	}

	result, err := h.provider.GetSubmissionByInviteID(ctx, access.Invite.ID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return domains.SubmissionResult{}, ErrSubmissionNotFound
		default:
			return domains.SubmissionResult{}, err
		}
	}
	return result, nil
}

func (h *EvaluationService) fetchAccess(ctx context.Context, token string) (domains.AssignmentAccess, error) {
	if token == "" {
		return domains.AssignmentAccess{}, ErrInviteTokenInvalid
	}

	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.secret), nil
	})
	if err != nil || !parsedToken.Valid {
		slog.Warn("fetchAccess parse", "err", err)
		return domains.AssignmentAccess{}, ErrInviteTokenInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return domains.AssignmentAccess{}, ErrInviteTokenInvalid
	}
	inviteID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return domains.AssignmentAccess{}, ErrInviteTokenInvalid
	}

	assignmentID, err := claimToInt64(claims["assignment_id"])
	if err != nil {
		return domains.AssignmentAccess{}, ErrInviteTokenInvalid
	}

	access, err := h.provider.GetAssignmentAccessByInviteID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.AssignmentAccess{}, ErrInviteTokenInvalid
		}
		slog.Warn("fetchAccess storage", "err", err)
		return domains.AssignmentAccess{}, ErrInviteTokenInvalid
	}

	if access.Invite.ID != inviteID {
		slog.Warn("fetchAccess invite mismatch", "expected", inviteID, "actual", access.Invite.ID)
		return domains.AssignmentAccess{}, ErrInviteTokenInvalid
	}
	if access.Assignment.ID != assignmentID {
		slog.Warn("fetchAccess assignment mismatch", "expected", assignmentID, "actual", access.Assignment.ID)
		return domains.AssignmentAccess{}, ErrInviteTokenInvalid
	}
	if access.Invite.TokenExpiresAt != nil && time.Now().After(*access.Invite.TokenExpiresAt) {
		return domains.AssignmentAccess{}, ErrInviteTokenExpired
	}
	if !isInviteTokenAllowed(access.Invite.State) {
		return domains.AssignmentAccess{}, ErrInviteTokenInvalid
	}

	return access, nil
}

func ensureTokenUsable(access domains.AssignmentAccess) error {
	if access.Invite.UseLimit > 0 && access.Invite.UsedCount >= access.Invite.UseLimit {
		return ErrInviteTokenUsed
	}
	return nil
}

func shouldOpenOnCreate(startsAt *time.Time, now time.Time) bool {
	if startsAt == nil {
		return false
	}
	start := startsAt.In(now.Location())
	current := now.In(now.Location())
	return start.Year() == current.Year() && start.YearDay() == current.YearDay()
}

func sanitizeChannel(channel string) string {
	switch channel {
	case "web", "api":
		return channel
	default:
		return "web"
	}
}

func isInviteTokenAllowed(state string) bool {
	switch state {
	case "invited", "pending", "approved", "active":
		return true
	default:
		return false
	}
}

func (h *EvaluationService) buildToken(payload domains.InviteTokenPayload) (string, []byte, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(h.invitationTTL)
	if payload.AssignmentEndsAt != nil {
		expiresAt = payload.AssignmentEndsAt.UTC()
	}
	if !expiresAt.After(now) {
		return "", nil, expiresAt, ErrInviteTokenExpired
	}

	claims := jwt.MapClaims{
		"sub":           strconv.FormatInt(payload.InviteID, 10),
		"assignment_id": payload.AssignmentID,
		"owner_id":      payload.OwnerID,
		"type":          "reviewer_invitation",
		"exp":           expiresAt.Unix(),
		"issued_at":     now.Unix(),
	}
	if payload.AssignmentStartsAt != nil {
		claims["nbf"] = payload.AssignmentStartsAt.UTC().Unix()
	}
	if payload.Reviewer.FullName != "" {
		claims["name"] = payload.Reviewer.FullName
	}
	if payload.Reviewer.Email != nil && *payload.Reviewer.Email != "" {
		claims["email"] = *payload.Reviewer.Email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.secret))
	if err != nil {
		return "", nil, expiresAt, err
	}

	sum := sha256.Sum256([]byte(signed))
	return signed, sum[:], expiresAt, nil
}

func claimToInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, errors.New("missing claim")
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported claim type %T", value)
	}
}
