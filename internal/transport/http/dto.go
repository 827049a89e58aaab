package httptransport

import (
	"github.com/go-playground/validator/v10"

	"evalboard/internal/domains"
)

var validate = validator.New()

type LoginData struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterData struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AnswerPayload struct {
	QuestionID   string   `json:"question_id" validate:"required"`
	ValueBool    *bool    `json:"value_bool,omitempty"`
	ValueNumber  *float64 `json:"value_number,omitempty"`
	ValueText    *string  `json:"value_text,omitempty"`
	OptionKey    *string  `json:"option_key,omitempty"`
	NumericValue *float64 `json:"numeric_value,omitempty"`
}

type SubmissionRequest struct {
	Token   string          `json:"token" validate:"required"`
	Channel string          `json:"channel,omitempty"`
	Answers []AnswerPayload `json:"answers" validate:"dive"`
}

type StartRequest struct {
	Token   string `json:"token" validate:"required"`
	Channel string `json:"channel,omitempty"`
}

type AccessRequest struct {
	Token string `json:"token" validate:"required"`
}

type MetricWeightsRequest struct {
	Department string  `json:"department" validate:"required"`
	Manager    float64 `json:"manager" validate:"gte=0"`
	Tasks      float64 `json:"tasks" validate:"gte=0"`
	Attendance float64 `json:"attendance" validate:"gte=0"`
}

type SubmitResponse struct {
	Submission domains.Submission        `json:"submission"`
	Answers    []domains.Answer          `json:"answers"`
	Breakdown  domains.ComputedBreakdown `json:"breakdown"`
}

func (r SubmissionRequest) ToAnswers() []domains.Answer {
	answers := make([]domains.Answer, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, domains.Answer{
			QuestionID:   a.QuestionID,
			ValueBool:    a.ValueBool,
			ValueNumber:  a.ValueNumber,
			ValueText:    a.ValueText,
			OptionKey:    a.OptionKey,
			NumericValue: a.NumericValue,
		})
	}
	return answers
}
