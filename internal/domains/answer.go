package domains

import (
	"time"

	"github.com/google/uuid"
)

// Answer carries one respondent answer in the type-dependent column shape:
// exactly one value field is expected to be set, matching the question's qtype.
// NumericValue is an optional pre-computed projection used by rating answers.
type Answer struct {
	QuestionID   string   `json:"question_id"`
	ValueBool    *bool    `json:"value_bool,omitempty"`
	ValueNumber  *float64 `json:"value_number,omitempty"`
	ValueText    *string  `json:"value_text,omitempty"`
	OptionKey    *string  `json:"option_key,omitempty"`
	NumericValue *float64 `json:"numeric_value,omitempty"`
}

type Submission struct {
	ID           uuid.UUID  `json:"id"`
	AssignmentID int64      `json:"assignment_id"`
	State        string     `json:"state"`
	Channel      *string    `json:"channel,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
}

type SubmissionToSave struct {
	AssignmentID   int64
	InviteID       int64
	Channel        string
	State          string
	SubmittedAt    time.Time
	Answers        []Answer
	IncrementUsage bool
}

type SubmissionResult struct {
	Submission Submission `json:"submission"`
	Answers    []Answer   `json:"answers"`
}

// AnonymizedSubmission is the only submission shape the aggregate reducer
// accepts. It carries no reviewer identity at the type level, so an aggregate
// built from it cannot leak who answered what.
type AnonymizedSubmission struct {
	Answers   []Answer          `json:"answers"`
	Breakdown ComputedBreakdown `json:"breakdown"`
}
