package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalboard/internal/domains"
)

func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func ratingQuestion(id string, weight, min, max float64) domains.Question {
	return domains.Question{
		ID:     id,
		QType:  domains.QTypeRating,
		Weight: weight,
		Rating: &domains.RatingMeta{Min: min, Max: max, Step: 1},
	}
}

func choiceQuestion(id string, weight float64, scores ...float64) domains.Question {
	q := domains.Question{ID: id, QType: domains.QTypeChoice, Weight: weight}
	for i, s := range scores {
		q.Choices = append(q.Choices, domains.ChoiceOption{
			Key:   string(rune('a' + i)),
			Label: "option " + string(rune('a'+i)),
			Score: s,
		})
	}
	return q
}

func TestNormalizeBool(t *testing.T) {
	q := domains.Question{ID: "q1", QType: domains.QTypeBool, Weight: 10}

	c := Normalize(q, &domains.Answer{QuestionID: "q1", ValueBool: boolPtr(true)})
	require.True(t, c.Answered)
	require.NotNil(t, c.Numeric)
	assert.Equal(t, 1.0, *c.Numeric)
	assert.Equal(t, "yes", c.Display)

	c = Normalize(q, &domains.Answer{QuestionID: "q1", ValueBool: boolPtr(false)})
	require.NotNil(t, c.Numeric)
	assert.Equal(t, 0.0, *c.Numeric)
	assert.Equal(t, "no", c.Display)

	c = Normalize(q, nil)
	assert.False(t, c.Answered)
	assert.Nil(t, c.Numeric)
}

func TestNormalizeRatingClamped(t *testing.T) {
	q := ratingQuestion("q1", 20, 0, 10)

	cases := []struct {
		name string
		raw  float64
		want float64
		warn bool
	}{
		{"in range", 7, 7, false},
		{"below min", -3, 0, true},
		{"above max", 42, 10, true},
		{"at max", 10, 10, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Normalize(q, &domains.Answer{QuestionID: "q1", ValueNumber: floatPtr(tc.raw)})
			require.True(t, c.Answered)
			require.NotNil(t, c.Numeric)
			assert.Equal(t, tc.want, *c.Numeric)
			assert.Equal(t, tc.warn, c.Warning != "")
		})
	}
}

func TestNormalizeRatingPrefersNumericValue(t *testing.T) {
	q := ratingQuestion("q1", 20, 0, 10)
	c := Normalize(q, &domains.Answer{
		QuestionID:   "q1",
		ValueNumber:  floatPtr(3),
		NumericValue: floatPtr(8),
	})
	require.NotNil(t, c.Numeric)
	assert.Equal(t, 8.0, *c.Numeric)
}

func TestNormalizeChoice(t *testing.T) {
	q := choiceQuestion("q1", 25, 5, 10, 15, 20)

	c := Normalize(q, &domains.Answer{QuestionID: "q1", OptionKey: strPtr("c")})
	require.True(t, c.Answered)
	require.NotNil(t, c.Numeric)
	assert.Equal(t, 15.0, *c.Numeric)
	require.NotNil(t, c.Label)
	assert.Equal(t, "option c", *c.Label)
}

func TestNormalizeChoiceUnknownKeyFailsSoft(t *testing.T) {
	q := choiceQuestion("q1", 25, 5, 10)

	c := Normalize(q, &domains.Answer{QuestionID: "q1", OptionKey: strPtr("zzz")})
	assert.False(t, c.Answered)
	assert.Nil(t, c.Numeric)
	assert.NotEmpty(t, c.Warning)
	assert.Equal(t, "zzz", c.Display)
}

func TestNormalizeText(t *testing.T) {
	q := domains.Question{ID: "q1", QType: domains.QTypeText}

	c := Normalize(q, &domains.Answer{QuestionID: "q1", ValueText: strPtr("  solid quarter  ")})
	assert.True(t, c.Answered)
	assert.Nil(t, c.Numeric)
	assert.Equal(t, "solid quarter", c.Display)

	c = Normalize(q, &domains.Answer{QuestionID: "q1", ValueText: strPtr("   ")})
	assert.False(t, c.Answered, "blank text counts as unanswered")
}
