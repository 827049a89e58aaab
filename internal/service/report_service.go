package service

import (
	"context"
	"errors"
	"log/slog"

	"evalboard/internal/domains"
	"evalboard/internal/scoring"
	"evalboard/internal/storage"

	"github.com/google/uuid"
)

// ReportService recomputes breakdowns and aggregates on demand. Breakdowns
// are never read from storage as ground truth: answers plus the snapshot are
// always enough to rebuild them.
type ReportService struct {
	provider       ReportProvider
	metrics        MetricsProvider
	defaultWeights domains.MetricWeights
	buckets        scoring.BucketConfig
}

type ReportProvider interface {
	GetAssignmentByID(ctx context.Context, ownerID, assignmentID int64) (domains.Assignment, error)
	GetAssignmentStatistics(ctx context.Context, ownerID, assignmentID int64) (domains.AssignmentStatisticsCounts, error)
	GetSubmissionAnswers(ctx context.Context, ownerID, assignmentID int64, submissionID uuid.UUID) ([]domains.Answer, error)
	ListSubmittedAnswerSets(ctx context.Context, ownerID, assignmentID int64) ([][]domains.Answer, error)
}

func NewReportService(provider ReportProvider, metrics MetricsProvider, defaultWeights domains.MetricWeights, buckets scoring.BucketConfig) *ReportService {
	return &ReportService{
		provider:       provider,
		metrics:        metrics,
		defaultWeights: defaultWeights,
		buckets:        buckets,
	}
}

// SubmissionBreakdown rebuilds one submission's scoring detail.
func (h *ReportService) SubmissionBreakdown(ctx context.Context, ownerID, assignmentID int, submissionID uuid.UUID) (domains.ComputedBreakdown, error) {
	assignment, err := h.provider.GetAssignmentByID(ctx, int64(ownerID), int64(assignmentID))
	if err != nil {
		slog.Error("SubmissionBreakdown get assignment", "err", err, "assignment_id", assignmentID)
		return domains.ComputedBreakdown{}, err
	}

	snapshot, err := domains.DecodeFormSnapshot(assignment.FormSnapshotJSON)
	if err != nil {
		slog.Error("SubmissionBreakdown snapshot decode", "err", err, "assignment_id", assignmentID)
		return domains.ComputedBreakdown{}, ErrSnapshotInvalid
	}

	answers, err := h.provider.GetSubmissionAnswers(ctx, int64(ownerID), int64(assignmentID), submissionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.ComputedBreakdown{}, ErrSubmissionNotFound
		}
		slog.Error("GetSubmissionAnswers failed", "err", err, "submission_id", submissionID)
		return domains.ComputedBreakdown{}, err
	}

	metrics := resolveMetricInputs(ctx, h.metrics, h.defaultWeights, assignment)
	breakdown, err := scoring.ComputeBreakdown(snapshot, answers, metrics)
	if err != nil {
		// Stored submissions already passed validation once; a failure here
		// means the snapshot and answers drifted apart in storage.
		slog.Error("SubmissionBreakdown recompute", "err", err, "submission_id", submissionID)
		return domains.ComputedBreakdown{}, err
	}
	return breakdown, nil
}

// AggregateForTarget reduces every submitted answer set for the assignment's
// target into one report. The reduction is idempotent over whatever snapshot
// of submissions storage returns.
func (h *ReportService) AggregateForTarget(ctx context.Context, ownerID, assignmentID int) (domains.AggregateReport, error) {
	assignment, err := h.provider.GetAssignmentByID(ctx, int64(ownerID), int64(assignmentID))
	if err != nil {
		slog.Error("AggregateForTarget get assignment", "err", err, "assignment_id", assignmentID)
		return domains.AggregateReport{}, err
	}

	snapshot, err := domains.DecodeFormSnapshot(assignment.FormSnapshotJSON)
	if err != nil {
		slog.Error("AggregateForTarget snapshot decode", "err", err, "assignment_id", assignmentID)
		return domains.AggregateReport{}, ErrSnapshotInvalid
	}

	statsCounts, err := h.provider.GetAssignmentStatistics(ctx, int64(ownerID), int64(assignmentID))
	if err != nil {
		slog.Error("GetAssignmentStatistics failed", "err", err, "assignment_id", assignmentID)
		return domains.AggregateReport{}, err
	}

	answerSets, err := h.provider.ListSubmittedAnswerSets(ctx, int64(ownerID), int64(assignmentID))
	if err != nil {
		slog.Error("ListSubmittedAnswerSets failed", "err", err, "assignment_id", assignmentID)
		return domains.AggregateReport{}, err
	}

	metrics := resolveMetricInputs(ctx, h.metrics, h.defaultWeights, assignment)
	submissions := make([]domains.AnonymizedSubmission, 0, len(answerSets))
	for _, answers := range answerSets {
		breakdown, err := scoring.ComputeBreakdown(snapshot, answers, metrics)
		if err != nil {
			slog.Error("AggregateForTarget recompute", "err", err, "assignment_id", assignmentID)
			continue
		}
		submissions = append(submissions, domains.AnonymizedSubmission{Answers: answers, Breakdown: breakdown})
	}

	report := scoring.Aggregate(snapshot, assignment.TargetUser, statsCounts.InvitedCount, submissions, h.buckets)
	return report, nil
}

// resolveMetricInputs picks the department weight row when one exists, the
// company-wide defaults otherwise. Missing target readings mean the form
// score stands alone.
func resolveMetricInputs(ctx context.Context, provider MetricsProvider, defaults domains.MetricWeights, assignment domains.Assignment) *scoring.MetricInputs {
	if provider == nil {
		return nil
	}

	readings, err := provider.GetTargetReadings(ctx, assignment.TargetUser)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("GetTargetReadings failed", "err", err, "target_user", assignment.TargetUser)
		}
		return nil
	}

	weights := defaults
	if assignment.Department != nil && *assignment.Department != "" {
		departmentWeights, err := provider.GetDepartmentWeights(ctx, assignment.OwnerID, *assignment.Department)
		switch {
		case err == nil:
			weights = departmentWeights
		case errors.Is(err, storage.ErrNotFound):
			// company defaults stand
		default:
			slog.Error("GetDepartmentWeights failed", "err", err, "department", *assignment.Department)
		}
	}

	return &scoring.MetricInputs{Weights: weights, Readings: readings}
}
