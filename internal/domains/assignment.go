package domains

import (
	"encoding/json"
	"time"
)

// Assignment asks a set of reviewers to evaluate one target against a frozen
// form snapshot.
type Assignment struct {
	ID               int64           `json:"id"`
	OwnerID          int64           `json:"owner_id"`
	TemplateID       *int64          `json:"template_id,omitempty"`
	SnapshotVersion  int             `json:"snapshot_version"`
	FormSnapshotJSON json.RawMessage `json:"form_snapshot_json"`
	Title            string          `json:"title"`
	TargetUser       string          `json:"target_user"`
	Department       *string         `json:"department,omitempty"`
	Status           string          `json:"status"`
	Anonymous        bool            `json:"anonymous"`
	StartsAt         *time.Time      `json:"starts_at,omitempty"`
	EndsAt           *time.Time      `json:"ends_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type AssignmentCreate struct {
	TemplateID int64           `json:"template_id"`
	Title      string          `json:"title"`
	TargetUser string          `json:"target_user"`
	Department *string         `json:"department,omitempty"`
	Status     string          `json:"status"`
	Anonymous  bool            `json:"anonymous"`
	StartsAt   *time.Time      `json:"starts_at,omitempty"`
	EndsAt     *time.Time      `json:"ends_at,omitempty"`
	Reviewers  []ReviewerCreate `json:"reviewers"`
}

type AssignmentToSave struct {
	OwnerID          int64
	TemplateID       int64
	SnapshotVersion  int
	FormSnapshotJSON json.RawMessage
	Title            string
	TargetUser       string
	Department       *string
	Status           string
	Anonymous        bool
	StartsAt         *time.Time
	EndsAt           *time.Time
	Reviewers        []ReviewerCreate
}

type ReviewerCreate struct {
	FullName string  `json:"full_name"`
	Email    *string `json:"email,omitempty"`
}

// ReviewerInvite is one reviewer's token-gated enrollment in an assignment.
type ReviewerInvite struct {
	ID             int64      `json:"id"`
	AssignmentID   int64      `json:"assignment_id"`
	FullName       string     `json:"full_name"`
	Email          *string    `json:"email,omitempty"`
	State          string     `json:"state"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	UseLimit       int        `json:"use_limit"`
	UsedCount      int        `json:"used_count"`
	TokenHash      []byte     `json:"-"`
}

type ReviewerInvitation struct {
	InviteID  int64     `json:"invite_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	FullName  string    `json:"full_name"`
	Email     *string   `json:"email,omitempty"`
}

type InviteTokenPayload struct {
	AssignmentID       int64
	InviteID           int64
	OwnerID            int64
	AssignmentStartsAt *time.Time
	AssignmentEndsAt   *time.Time
	Reviewer           ReviewerCreate
}

type InviteTokenGenerator func(payload InviteTokenPayload) (token string, hash []byte, expiresAt time.Time, err error)

type AssignmentAccess struct {
	Assignment Assignment     `json:"assignment"`
	Invite     ReviewerInvite `json:"invite"`
}

type AssignmentCreateResult struct {
	Assignment  Assignment           `json:"assignment"`
	Invitations []ReviewerInvitation `json:"invitations"`
}

type AssignmentDetails struct {
	Assignment  Assignment           `json:"assignment"`
	Invitations []ReviewerInvitation `json:"invitations"`
	Statistics  AssignmentStatistics `json:"statistics"`
}

type AssignmentStatisticsCounts struct {
	InvitedCount         int
	SubmissionsStarted   int
	SubmissionsSubmitted int
}

type AssignmentStatistics struct {
	InvitedCount        int     `json:"invited_count"`
	RespondedCount      int     `json:"responded_count"`
	PendingCount        int     `json:"pending_count"`
	SubmissionsStarted  int     `json:"submissions_started"`
	SubmissionsInFlight int     `json:"submissions_in_progress"`
	CompletionRate      float64 `json:"completion_rate"`
}

func (c AssignmentStatisticsCounts) ToAssignmentStatistics() AssignmentStatistics {
	stats := AssignmentStatistics{
		InvitedCount:        c.InvitedCount,
		RespondedCount:      c.SubmissionsSubmitted,
		SubmissionsStarted:  c.SubmissionsStarted,
		SubmissionsInFlight: c.SubmissionsStarted - c.SubmissionsSubmitted,
	}
	if stats.SubmissionsInFlight < 0 {
		stats.SubmissionsInFlight = 0
	}
	stats.PendingCount = c.InvitedCount - c.SubmissionsSubmitted
	if stats.PendingCount < 0 {
		stats.PendingCount = 0
	}
	if stats.InvitedCount > 0 {
		stats.CompletionRate = float64(c.SubmissionsSubmitted) / float64(c.InvitedCount)
	}
	return stats
}
