package domains

import (
	"encoding/json"
	"fmt"
)

// QType discriminates the question variants a form snapshot may contain.
type QType string

const (
	QTypeBool   QType = "bool"
	QTypeRating QType = "rating"
	QTypeChoice QType = "choice"
	QTypeText   QType = "text"
)

func (t QType) Valid() bool {
	switch t {
	case QTypeBool, QTypeRating, QTypeChoice, QTypeText:
		return true
	default:
		return false
	}
}

type RatingMeta struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

type ChoiceOption struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Question struct {
	ID       string         `json:"id"`
	QType    QType          `json:"qtype"`
	Text     string         `json:"text"`
	Weight   float64        `json:"weight"`
	Required bool           `json:"required"`
	Rating   *RatingMeta    `json:"rating,omitempty"`
	Choices  []ChoiceOption `json:"choices,omitempty"`
}

// MaxChoiceScore returns the highest option score, 0 for an empty option list.
func (q Question) MaxChoiceScore() float64 {
	var max float64
	for _, opt := range q.Choices {
		if opt.Score > max {
			max = opt.Score
		}
	}
	return max
}

// FormSnapshot is the immutable ordered question list captured when an
// assignment is created from a template version.
type FormSnapshot struct {
	Version   int        `json:"version"`
	Questions []Question `json:"questions"`
}

func (s FormSnapshot) QuestionByID(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// DecodeFormSnapshot parses a stored snapshot and fills in rating defaults
// (0..10, step 1) for rating questions that omit them.
func DecodeFormSnapshot(raw json.RawMessage) (FormSnapshot, error) {
	var snapshot FormSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return FormSnapshot{}, fmt.Errorf("decode form snapshot: %w", err)
	}
	for i := range snapshot.Questions {
		q := &snapshot.Questions[i]
		if !q.QType.Valid() {
			return FormSnapshot{}, fmt.Errorf("question %q: unknown qtype %q", q.ID, q.QType)
		}
		if q.QType == QTypeRating {
			if q.Rating == nil {
				q.Rating = &RatingMeta{Min: 0, Max: 10, Step: 1}
			}
			if q.Rating.Step <= 0 {
				q.Rating.Step = 1
			}
			if q.Rating.Max == 0 && q.Rating.Min == 0 {
				q.Rating.Max = 10
			}
		}
		if q.Weight < 0 {
			q.Weight = 0
		}
	}
	return snapshot, nil
}
