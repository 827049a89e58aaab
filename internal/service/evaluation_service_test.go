package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"evalboard/internal/domains"
	"evalboard/internal/scoring"
	"evalboard/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var testSnapshotJSON = json.RawMessage(`{
	"version": 1,
	"questions": [
		{"id": "q_rating", "qtype": "rating", "text": "Quality of work", "weight": 60, "required": true,
		 "rating": {"min": 0, "max": 10, "step": 1}},
		{"id": "q_bool", "qtype": "bool", "text": "Meets deadlines", "weight": 40, "required": false}
	]
}`)

type stubAssignmentProvider struct {
	access domains.AssignmentAccess

	submitted  *domains.SubmissionToSave
	draftsSeen int
}

func (s *stubAssignmentProvider) SaveAssignment(ctx context.Context, assignment domains.AssignmentToSave, generator domains.InviteTokenGenerator) (domains.Assignment, []domains.ReviewerInvitation, error) {
	return domains.Assignment{}, nil, nil
}

func (s *stubAssignmentProvider) GetAllAssignmentsByOwner(ctx context.Context, ownerID int64) ([]domains.Assignment, error) {
	return nil, nil
}

func (s *stubAssignmentProvider) GetAssignmentByID(ctx context.Context, ownerID, assignmentID int64) (domains.Assignment, error) {
	return s.access.Assignment, nil
}

func (s *stubAssignmentProvider) GetAssignmentAccessByInviteID(ctx context.Context, inviteID int64) (domains.AssignmentAccess, error) {
	if inviteID != s.access.Invite.ID {
		return domains.AssignmentAccess{}, storage.ErrNotFound
	}
	return s.access, nil
}

func (s *stubAssignmentProvider) ListInvitesByAssignmentID(ctx context.Context, ownerID, assignmentID int64) ([]domains.ReviewerInvite, error) {
	return nil, nil
}

func (s *stubAssignmentProvider) GetInviteByID(ctx context.Context, inviteID int64) (domains.ReviewerInvite, error) {
	return s.access.Invite, nil
}

func (s *stubAssignmentProvider) AddInvite(ctx context.Context, assignmentID, ownerID int64, reviewer domains.ReviewerCreate, generator domains.InviteTokenGenerator) (domains.ReviewerInvitation, error) {
	return domains.ReviewerInvitation{}, nil
}

func (s *stubAssignmentProvider) RemoveInvite(ctx context.Context, assignmentID, ownerID, inviteID int64) error {
	return nil
}

func (s *stubAssignmentProvider) UpdateInviteToken(ctx context.Context, inviteID int64, hash []byte, expiresAt time.Time) error {
	return nil
}

func (s *stubAssignmentProvider) GetAssignmentStatistics(ctx context.Context, ownerID, assignmentID int64) (domains.AssignmentStatisticsCounts, error) {
	return domains.AssignmentStatisticsCounts{}, nil
}

func (s *stubAssignmentProvider) StartSubmission(ctx context.Context, assignmentID, inviteID int64, channel string) (domains.Submission, error) {
	return domains.Submission{AssignmentID: assignmentID, State: "draft"}, nil
}

func (s *stubAssignmentProvider) SaveDraftAnswers(ctx context.Context, assignmentID, inviteID int64, answers []domains.Answer) (domains.SubmissionResult, error) {
	s.draftsSeen++
	return domains.SubmissionResult{Answers: answers}, nil
}

func (s *stubAssignmentProvider) SubmitAnswers(ctx context.Context, payload domains.SubmissionToSave) (domains.SubmissionResult, error) {
	s.submitted = &payload
	return domains.SubmissionResult{
		Submission: domains.Submission{AssignmentID: payload.AssignmentID, State: payload.State},
		Answers:    payload.Answers,
	}, nil
}

func (s *stubAssignmentProvider) GetSubmissionByInviteID(ctx context.Context, inviteID int64) (domains.SubmissionResult, error) {
	return domains.SubmissionResult{}, storage.ErrNotFound
}

type stubMetricsProvider struct {
	weights  *domains.MetricWeights
	readings *domains.MetricReadings
}

func (s *stubMetricsProvider) GetDepartmentWeights(ctx context.Context, ownerID int64, department string) (domains.MetricWeights, error) {
	if s.weights == nil {
		return domains.MetricWeights{}, storage.ErrNotFound
	}
	return *s.weights, nil
}

func (s *stubMetricsProvider) GetTargetReadings(ctx context.Context, targetUser string) (domains.MetricReadings, error) {
	if s.readings == nil {
		return domains.MetricReadings{}, storage.ErrNotFound
	}
	return *s.readings, nil
}

func newTestService(provider *stubAssignmentProvider, metrics *stubMetricsProvider) *EvaluationService {
	defaults := domains.MetricWeights{Manager: 20, Tasks: 30, Attendance: 10}
	return NewEvaluationService(provider, nil, metrics, testSecret, defaults)
}

func testAccess(t *testing.T) domains.AssignmentAccess {
	t.Helper()
	return domains.AssignmentAccess{
		Assignment: domains.Assignment{
			ID:               7,
			OwnerID:          1,
			FormSnapshotJSON: testSnapshotJSON,
			TargetUser:       "u.petrov",
			Status:           "open",
		},
		Invite: domains.ReviewerInvite{
			ID:           42,
			AssignmentID: 7,
			FullName:     "Jane Reviewer",
			State:        "invited",
			UseLimit:     1,
		},
	}
}

func issueToken(t *testing.T, svc *EvaluationService, access domains.AssignmentAccess) string {
	t.Helper()
	token, _, _, err := svc.buildToken(domains.InviteTokenPayload{
		AssignmentID: access.Assignment.ID,
		InviteID:     access.Invite.ID,
		OwnerID:      access.Assignment.OwnerID,
	})
	require.NoError(t, err)
	return token
}

func TestSubmitPersistsAndScores(t *testing.T) {
	provider := &stubAssignmentProvider{access: testAccess(t)}
	svc := newTestService(provider, &stubMetricsProvider{})
	token := issueToken(t, svc, provider.access)

	yes := true
	eight := 8.0
	answers := []domains.Answer{
		{QuestionID: "q_rating", ValueNumber: &eight},
		{QuestionID: "q_bool", ValueBool: &yes},
	}

	saved, breakdown, err := svc.Submit(context.Background(), token, "web", answers)
	require.NoError(t, err)

	require.NotNil(t, provider.submitted)
	assert.True(t, provider.submitted.IncrementUsage)
	assert.Equal(t, "submitted", provider.submitted.State)
	assert.Len(t, saved.Answers, 2)

	// 8/10 of 60 plus all of 40: 88% of the total weight.
	assert.InDelta(t, 88.0, breakdown.TotalAchieved, 1e-9)
	assert.InDelta(t, 100.0, breakdown.TotalWeight, 1e-9)
	assert.InDelta(t, 8.8, breakdown.FinalScore10, 1e-9)
	assert.Nil(t, breakdown.SystemMetrics)
}

func TestSubmitBlendsSystemMetrics(t *testing.T) {
	provider := &stubAssignmentProvider{access: testAccess(t)}
	metrics := &stubMetricsProvider{
		readings: &domains.MetricReadings{Manager: 90, Tasks: 80, Attendance: 100},
	}
	svc := newTestService(provider, metrics)
	token := issueToken(t, svc, provider.access)

	yes := true
	eight := 8.0
	answers := []domains.Answer{
		{QuestionID: "q_rating", ValueNumber: &eight},
		{QuestionID: "q_bool", ValueBool: &yes},
	}

	_, breakdown, err := svc.Submit(context.Background(), token, "web", answers)
	require.NoError(t, err)

	require.NotNil(t, breakdown.SystemMetrics)
	assert.InDelta(t, 88.0, breakdown.FormPercent, 1e-9)
	// 90*20 + 80*30 + 100*10 + 88*40 over 100.
	assert.InDelta(t, 87.2, breakdown.SystemMetrics.WeightedPercent, 1e-9)
	assert.InDelta(t, 8.72, breakdown.SystemMetrics.FinalScore10, 1e-9)
}

func TestSubmitRejectsMissingRequiredAnswer(t *testing.T) {
	provider := &stubAssignmentProvider{access: testAccess(t)}
	svc := newTestService(provider, &stubMetricsProvider{})
	token := issueToken(t, svc, provider.access)

	yes := true
	_, _, err := svc.Submit(context.Background(), token, "web", []domains.Answer{
		{QuestionID: "q_bool", ValueBool: &yes},
	})

	var validation scoring.ValidationErrors
	require.ErrorAs(t, err, &validation)
	require.Len(t, validation, 1)
	assert.Equal(t, "q_rating", validation[0].QuestionID)
	assert.Nil(t, provider.submitted, "rejected submission must not be persisted")
}

func TestSubmitRejectsInvalidToken(t *testing.T) {
	provider := &stubAssignmentProvider{access: testAccess(t)}
	svc := newTestService(provider, &stubMetricsProvider{})

	_, _, err := svc.Submit(context.Background(), "not-a-token", "web", nil)
	assert.ErrorIs(t, err, ErrInviteTokenInvalid)
	assert.Nil(t, provider.submitted)
}

func TestAccessByTokenUseLimit(t *testing.T) {
	access := testAccess(t)
	access.Invite.UsedCount = 1
	provider := &stubAssignmentProvider{access: access}
	svc := newTestService(provider, &stubMetricsProvider{})
	token := issueToken(t, svc, access)

	_, err := svc.AccessByToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInviteTokenUsed)
}

func TestSaveDraftSkipsValidation(t *testing.T) {
	provider := &stubAssignmentProvider{access: testAccess(t)}
	svc := newTestService(provider, &stubMetricsProvider{})
	token := issueToken(t, svc, provider.access)

	yes := true
	saved, err := svc.SaveDraft(context.Background(), token, []domains.Answer{
		{QuestionID: "q_bool", ValueBool: &yes},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, provider.draftsSeen)
	assert.Len(t, saved.Answers, 1)
}

func TestSubmitRevokedInviteState(t *testing.T) {
	access := testAccess(t)
	provider := &stubAssignmentProvider{access: access}
	svc := newTestService(provider, &stubMetricsProvider{})
	token := issueToken(t, svc, access)

	provider.access.Invite.State = "revoked"

	_, _, err := svc.Submit(context.Background(), token, "web", nil)
	assert.ErrorIs(t, err, ErrInviteTokenInvalid)
}
