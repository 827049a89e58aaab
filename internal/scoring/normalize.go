package scoring

import (
	"strconv"
	"strings"

	"evalboard/internal/domains"
)

// Contribution is one raw answer reduced to its canonical numeric form plus a
// display value. Numeric stays nil for unanswered questions, for text answers
// and for choice answers whose option key matched nothing.
type Contribution struct {
	Numeric  *float64
	Answered bool
	Display  string
	Label    *string
	Warning  string
}

const (
	warnUnknownOption = "unknown option key, answer not scored"
	warnRatingClamped = "rating outside configured range, value clamped"
)

// Normalize converts a raw answer into its contribution for the matching
// question. A nil answer means the question was left unanswered. Bad data
// (unknown option keys, out-of-range ratings) degrades to a warning on the
// contribution, never to an error.
func Normalize(q domains.Question, a *domains.Answer) Contribution {
	if a == nil {
		return Contribution{}
	}
	switch q.QType {
	case domains.QTypeBool:
		return normalizeBool(a)
	case domains.QTypeRating:
		return normalizeRating(q, a)
	case domains.QTypeChoice:
		return normalizeChoice(q, a)
	case domains.QTypeText:
		return normalizeText(a)
	default:
		return Contribution{}
	}
}

func normalizeBool(a *domains.Answer) Contribution {
	if a.ValueBool == nil {
		return Contribution{}
	}
	var v float64
	display := "no"
	if *a.ValueBool {
		v = 1
		display = "yes"
	}
	return Contribution{Numeric: &v, Answered: true, Display: display}
}

func normalizeRating(q domains.Question, a *domains.Answer) Contribution {
	raw := a.NumericValue
	if raw == nil {
		raw = a.ValueNumber
	}
	if raw == nil {
		return Contribution{}
	}
	min, max := ratingRange(q)
	v := *raw
	warning := ""
	if v < min {
		v = min
		warning = warnRatingClamped
	}
	if v > max {
		v = max
		warning = warnRatingClamped
	}
	return Contribution{
		Numeric:  &v,
		Answered: true,
		Display:  strconv.FormatFloat(v, 'f', -1, 64),
		Warning:  warning,
	}
}

func normalizeChoice(q domains.Question, a *domains.Answer) Contribution {
	if a.OptionKey == nil || *a.OptionKey == "" {
		return Contribution{}
	}
	key := *a.OptionKey
	for _, opt := range q.Choices {
		if opt.Key == key {
			score := opt.Score
			label := opt.Label
			return Contribution{
				Numeric:  &score,
				Answered: true,
				Display:  label,
				Label:    &label,
			}
		}
	}
	// Unmatched keys fail soft: the question counts as unanswered and the
	// condition is surfaced as a data-quality warning on the row.
	return Contribution{Display: key, Warning: warnUnknownOption}
}

func normalizeText(a *domains.Answer) Contribution {
	if a.ValueText == nil {
		return Contribution{}
	}
	s := strings.TrimSpace(*a.ValueText)
	if s == "" {
		return Contribution{}
	}
	return Contribution{Answered: true, Display: s}
}

func ratingRange(q domains.Question) (float64, float64) {
	if q.Rating == nil {
		return 0, 10
	}
	return q.Rating.Min, q.Rating.Max
}
