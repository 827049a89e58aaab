package scoring

import (
	"fmt"
	"strings"
)

const (
	ReasonRequiredUnanswered = "required question has no answer"
	ReasonUnknownQuestion    = "answer references a question not in the snapshot"
)

// ValidationError blocks a submission before any scoring happens. The caller
// is expected to re-prompt the respondent for the named question.
type ValidationError struct {
	QuestionID string `json:"question_id"`
	Reason     string `json:"reason"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("question %q: %s", e.QuestionID, e.Reason)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "; ")
}
