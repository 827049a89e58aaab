package scoring

import (
	"math"

	"evalboard/internal/domains"
)

// ScoreQuestion computes one breakdown row from a question and its normalized
// contribution. Achieved is always clamped to [0, weight].
func ScoreQuestion(q domains.Question, c Contribution) domains.PerQuestionResult {
	result := domains.PerQuestionResult{
		QuestionID:    q.ID,
		QuestionText:  q.Text,
		QType:         q.QType,
		Weight:        q.Weight,
		Answered:      c.Answered,
		Display:       c.Display,
		SelectedLabel: c.Label,
		Warning:       c.Warning,
	}

	switch q.QType {
	case domains.QTypeBool:
		if c.Numeric != nil {
			result.Achieved = q.Weight * *c.Numeric
		}
	case domains.QTypeRating:
		if c.Numeric != nil {
			min, max := ratingRange(q)
			if max > min {
				result.Achieved = q.Weight * (*c.Numeric - min) / (max - min)
			} else if *c.Numeric >= max {
				result.Achieved = q.Weight
			}
		}
	case domains.QTypeChoice:
		if c.Numeric != nil {
			if maxScore := q.MaxChoiceScore(); maxScore > 0 {
				result.Achieved = q.Weight * *c.Numeric / maxScore
			}
		}
	case domains.QTypeText:
		// Text answers are not scored numerically. A weighted text question
		// stays at zero until someone grades it by hand.
		if q.Weight > 0 {
			result.PendingManual = true
		}
	}

	if result.Achieved < 0 {
		result.Achieved = 0
	}
	if result.Achieved > q.Weight {
		result.Achieved = q.Weight
	}
	if q.Weight > 0 {
		result.PercentOfWeight = int(math.Round(100 * result.Achieved / q.Weight))
	}
	return result
}

// Validate checks a full answer set against the snapshot before any scoring:
// every answer must reference a snapshot question and every required question
// must carry an answer. All offending questions are reported at once.
func Validate(snapshot domains.FormSnapshot, answers []domains.Answer) error {
	var errs ValidationErrors

	byQuestion := indexAnswers(answers)
	for _, a := range answers {
		if _, ok := snapshot.QuestionByID(a.QuestionID); !ok {
			errs = append(errs, ValidationError{QuestionID: a.QuestionID, Reason: ReasonUnknownQuestion})
		}
	}
	for _, q := range snapshot.Questions {
		if !q.Required {
			continue
		}
		if !Normalize(q, byQuestion[q.ID]).Answered {
			errs = append(errs, ValidationError{QuestionID: q.ID, Reason: ReasonRequiredUnanswered})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ComputeBreakdown scores one submission's answers against the snapshot and
// blends in objective metrics when they are configured. It is pure: the same
// inputs always produce the same breakdown.
func ComputeBreakdown(snapshot domains.FormSnapshot, answers []domains.Answer, metrics *MetricInputs) (domains.ComputedBreakdown, error) {
	if err := Validate(snapshot, answers); err != nil {
		return domains.ComputedBreakdown{}, err
	}

	byQuestion := indexAnswers(answers)
	breakdown := domains.ComputedBreakdown{
		PerQuestion: make([]domains.PerQuestionResult, 0, len(snapshot.Questions)),
	}
	for _, q := range snapshot.Questions {
		row := ScoreQuestion(q, Normalize(q, byQuestion[q.ID]))
		breakdown.PerQuestion = append(breakdown.PerQuestion, row)
		breakdown.TotalAchieved += row.Achieved
		breakdown.TotalWeight += row.Weight
	}

	breakdown.FormPercent, breakdown.FinalScore10 = BlendFormOnly(breakdown.TotalAchieved, breakdown.TotalWeight)
	if metrics != nil {
		system := BlendWithMetrics(breakdown.FormPercent, *metrics)
		breakdown.SystemMetrics = &system
		breakdown.FinalScore10 = system.FinalScore10
	}
	return breakdown, nil
}

// indexAnswers keeps the last answer per question: a draft save replaces the
// answer set wholesale, so later entries win over earlier ones.
func indexAnswers(answers []domains.Answer) map[string]*domains.Answer {
	index := make(map[string]*domains.Answer, len(answers))
	for i := range answers {
		index[answers[i].QuestionID] = &answers[i]
	}
	return index
}
