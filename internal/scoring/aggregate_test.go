package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalboard/internal/domains"
)

func submissionWithAnswers(t *testing.T, snapshot domains.FormSnapshot, answers ...domains.Answer) domains.AnonymizedSubmission {
	t.Helper()
	breakdown, err := ComputeBreakdown(snapshot, answers, nil)
	require.NoError(t, err)
	return domains.AnonymizedSubmission{Answers: answers, Breakdown: breakdown}
}

func TestAggregateBoolCounts(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "q1", QType: domains.QTypeBool, Weight: 10},
	}}
	subs := []domains.AnonymizedSubmission{
		submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", ValueBool: boolPtr(true)}),
		submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", ValueBool: boolPtr(true)}),
		submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", ValueBool: boolPtr(false)}),
	}

	report := Aggregate(snapshot, "u42", 3, subs, DefaultBucketConfig())
	require.Len(t, report.PerQuestionAverage, 1)

	stat := report.PerQuestionAverage[0]
	require.NotNil(t, stat.Bool)
	assert.Equal(t, 2, stat.Bool.Yes)
	assert.Equal(t, 1, stat.Bool.No)
	assert.Equal(t, 3, stat.TotalResponses)
	require.NotNil(t, stat.AverageNumeric)
	assert.Equal(t, 0.667, *stat.AverageNumeric)
}

func TestAggregateEmptyTarget(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "q1", QType: domains.QTypeRating, Weight: 10, Rating: &domains.RatingMeta{Min: 0, Max: 10, Step: 1}},
	}}

	report := Aggregate(snapshot, "u42", 5, nil, DefaultBucketConfig())
	assert.Nil(t, report.AverageScore, "no responses means no average, not zero")
	assert.Equal(t, 0, report.RespondedCount)
	assert.Equal(t, 5, report.PendingCount)
	assert.Equal(t, 5, report.InvitedCount)

	stat := report.PerQuestionAverage[0]
	assert.Nil(t, stat.AverageNumeric)
	assert.Zero(t, stat.TotalResponses)
	require.NotNil(t, stat.Rating)
	assert.Equal(t, domains.BucketPercents{}, stat.Rating.BucketPercent)
}

func TestAggregateRatingBucketsSumToResponses(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "q1", QType: domains.QTypeRating, Weight: 10, Rating: &domains.RatingMeta{Min: 0, Max: 10, Step: 1}},
	}}
	var subs []domains.AnonymizedSubmission
	for _, v := range []float64{1, 2, 4, 5, 7, 9, 10} {
		subs = append(subs, submissionWithAnswers(t, snapshot,
			domains.Answer{QuestionID: "q1", ValueNumber: floatPtr(v)}))
	}

	report := Aggregate(snapshot, "u42", 10, subs, DefaultBucketConfig())
	stat := report.PerQuestionAverage[0]
	require.NotNil(t, stat.Rating)

	assert.Equal(t, stat.TotalResponses, stat.Rating.Buckets.Total())
	assert.Equal(t, 2, stat.Rating.Buckets.Low)
	assert.Equal(t, 2, stat.Rating.Buckets.Mid)
	assert.Equal(t, 3, stat.Rating.Buckets.High)
	assert.Equal(t, 1, stat.Rating.PerRating[7])
}

func TestAggregateChoiceCountsAndOther(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		choiceQuestion("q1", 25, 5, 10, 15, 20),
	}}
	subs := []domains.AnonymizedSubmission{
		submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", OptionKey: strPtr("a")}),
		submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", OptionKey: strPtr("d")}),
		submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", OptionKey: strPtr("d")}),
		submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", OptionKey: strPtr("legacy")}),
	}

	report := Aggregate(snapshot, "u42", 4, subs, DefaultBucketConfig())
	stat := report.PerQuestionAverage[0]
	require.NotNil(t, stat.Choice)

	assert.Equal(t, 3, stat.TotalResponses, "unknown key does not count as a response")
	assert.Equal(t, 1, stat.Choice.Options[0].Count)
	assert.Equal(t, 2, stat.Choice.Options[3].Count)
	assert.Equal(t, []string{"legacy"}, stat.Choice.Other)

	// Scores 5, 20, 20 against the <=5 / >=8 fallback.
	assert.Equal(t, 1, stat.Choice.Buckets.Low)
	assert.Equal(t, 2, stat.Choice.Buckets.High)
	assert.Equal(t, stat.TotalResponses, stat.Choice.Buckets.Total())
}

func TestAggregateTextSamples(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "q1", QType: domains.QTypeText},
	}}
	subs := []domains.AnonymizedSubmission{
		submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", ValueText: strPtr("  ships on time ")}),
		submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", ValueText: strPtr("")}),
	}

	report := Aggregate(snapshot, "u42", 2, subs, DefaultBucketConfig())
	stat := report.PerQuestionAverage[0]
	assert.Equal(t, []string{"ships on time"}, stat.Texts)
	assert.Equal(t, 1, stat.TotalResponses)
	assert.Nil(t, stat.AverageNumeric, "text has no numeric aggregation")
}

func TestAggregateAverageScore(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "q1", QType: domains.QTypeBool, Weight: 10},
	}}
	subs := []domains.AnonymizedSubmission{
		submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", ValueBool: boolPtr(true)}),
		submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", ValueBool: boolPtr(false)}),
	}

	report := Aggregate(snapshot, "u42", 2, subs, DefaultBucketConfig())
	require.NotNil(t, report.AverageScore)
	assert.Equal(t, 5.0, *report.AverageScore)
}

func TestAggregateDoesNotMutateInputs(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "q1", QType: domains.QTypeBool, Weight: 10},
	}}
	sub := submissionWithAnswers(t, snapshot, domains.Answer{QuestionID: "q1", ValueBool: boolPtr(true)})
	subs := []domains.AnonymizedSubmission{sub}

	first := Aggregate(snapshot, "u42", 1, subs, DefaultBucketConfig())
	second := Aggregate(snapshot, "u42", 1, subs, DefaultBucketConfig())
	assert.Equal(t, first, second)
	assert.Equal(t, sub, subs[0])
}
