package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalboard/internal/domains"
)

func TestScoreBoolFullWeight(t *testing.T) {
	q := domains.Question{ID: "q1", QType: domains.QTypeBool, Weight: 10}
	row := ScoreQuestion(q, Normalize(q, &domains.Answer{QuestionID: "q1", ValueBool: boolPtr(true)}))
	assert.Equal(t, 10.0, row.Achieved)
	assert.Equal(t, 100, row.PercentOfWeight)
}

func TestScoreRating(t *testing.T) {
	q := ratingQuestion("q1", 20, 0, 10)
	row := ScoreQuestion(q, Normalize(q, &domains.Answer{QuestionID: "q1", ValueNumber: floatPtr(7)}))
	assert.Equal(t, 14.0, row.Achieved)
	assert.Equal(t, 70, row.PercentOfWeight)
}

func TestScoreChoiceProportionalToMaxScore(t *testing.T) {
	q := choiceQuestion("q1", 25, 5, 10, 15, 20)
	row := ScoreQuestion(q, Normalize(q, &domains.Answer{QuestionID: "q1", OptionKey: strPtr("c")}))
	assert.Equal(t, 18.75, row.Achieved)
	assert.Equal(t, 75, row.PercentOfWeight)
}

func TestScoreUnansweredOptionalIsZero(t *testing.T) {
	for _, q := range []domains.Question{
		{ID: "q1", QType: domains.QTypeBool, Weight: 10},
		ratingQuestion("q2", 20, 0, 10),
		choiceQuestion("q3", 25, 5, 10),
	} {
		row := ScoreQuestion(q, Normalize(q, nil))
		assert.Zero(t, row.Achieved, "qtype %s", q.QType)
		assert.Zero(t, row.PercentOfWeight, "qtype %s", q.QType)
	}
}

func TestScoreTextWeightedFlagsManualGrading(t *testing.T) {
	q := domains.Question{ID: "q1", QType: domains.QTypeText, Weight: 5}
	row := ScoreQuestion(q, Normalize(q, &domains.Answer{QuestionID: "q1", ValueText: strPtr("great work")}))
	assert.Zero(t, row.Achieved)
	assert.True(t, row.PendingManual)

	unweighted := domains.Question{ID: "q2", QType: domains.QTypeText}
	row = ScoreQuestion(unweighted, Normalize(unweighted, nil))
	assert.False(t, row.PendingManual)
}

func TestScoreDegenerateRanges(t *testing.T) {
	// Single-point rating scale: full weight only at max.
	q := ratingQuestion("q1", 10, 5, 5)
	row := ScoreQuestion(q, Normalize(q, &domains.Answer{QuestionID: "q1", ValueNumber: floatPtr(5)}))
	assert.Equal(t, 10.0, row.Achieved)

	// All-zero option scores never divide by zero.
	zero := choiceQuestion("q2", 10, 0, 0)
	row = ScoreQuestion(zero, Normalize(zero, &domains.Answer{QuestionID: "q2", OptionKey: strPtr("a")}))
	assert.Zero(t, row.Achieved)

	// Zero weight yields zero percent, not NaN.
	free := domains.Question{ID: "q3", QType: domains.QTypeBool, Weight: 0}
	row = ScoreQuestion(free, Normalize(free, &domains.Answer{QuestionID: "q3", ValueBool: boolPtr(true)}))
	assert.Zero(t, row.PercentOfWeight)
}

func TestScoreAchievedStaysWithinWeight(t *testing.T) {
	questions := []domains.Question{
		{ID: "b", QType: domains.QTypeBool, Weight: 10},
		ratingQuestion("r", 20, 0, 10),
		choiceQuestion("c", 25, 5, 10, 15, 20),
	}
	answers := []domains.Answer{
		{QuestionID: "b", ValueBool: boolPtr(true)},
		{QuestionID: "r", ValueNumber: floatPtr(99)},
		{QuestionID: "c", OptionKey: strPtr("d")},
	}
	byQ := indexAnswers(answers)
	for _, q := range questions {
		row := ScoreQuestion(q, Normalize(q, byQ[q.ID]))
		assert.GreaterOrEqual(t, row.Achieved, 0.0)
		assert.LessOrEqual(t, row.Achieved, q.Weight)
		assert.GreaterOrEqual(t, row.PercentOfWeight, 0)
		assert.LessOrEqual(t, row.PercentOfWeight, 100)
	}
}

func TestValidateRequiredUnanswered(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "q1", QType: domains.QTypeBool, Weight: 10, Required: true},
		{ID: "q2", QType: domains.QTypeText, Required: true},
	}}

	err := Validate(snapshot, []domains.Answer{
		{QuestionID: "q2", ValueText: strPtr("   ")},
	})
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "q1", verrs[0].QuestionID)
	assert.Equal(t, ReasonRequiredUnanswered, verrs[0].Reason)
	assert.Equal(t, "q2", verrs[1].QuestionID)
}

func TestValidateUnknownQuestion(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "q1", QType: domains.QTypeBool, Weight: 10},
	}}

	err := Validate(snapshot, []domains.Answer{
		{QuestionID: "ghost", ValueBool: boolPtr(true)},
	})
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, ReasonUnknownQuestion, verrs[0].Reason)
}

func TestComputeBreakdownTotals(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "b", QType: domains.QTypeBool, Weight: 10},
		ratingQuestion("r", 20, 0, 10),
		choiceQuestion("c", 25, 5, 10, 15, 20),
		{ID: "t", QType: domains.QTypeText},
	}}
	answers := []domains.Answer{
		{QuestionID: "b", ValueBool: boolPtr(true)},
		{QuestionID: "r", ValueNumber: floatPtr(7)},
		{QuestionID: "c", OptionKey: strPtr("c")},
		{QuestionID: "t", ValueText: strPtr("keeps the team unblocked")},
	}

	breakdown, err := ComputeBreakdown(snapshot, answers, nil)
	require.NoError(t, err)
	require.Len(t, breakdown.PerQuestion, 4)

	assert.Equal(t, 55.0, breakdown.TotalWeight)
	assert.InDelta(t, 42.75, breakdown.TotalAchieved, 1e-9)

	var sumAchieved, sumWeight float64
	for _, row := range breakdown.PerQuestion {
		sumAchieved += row.Achieved
		sumWeight += row.Weight
	}
	assert.Equal(t, breakdown.TotalAchieved, sumAchieved)
	assert.Equal(t, breakdown.TotalWeight, sumWeight)

	assert.InDelta(t, 100*42.75/55, breakdown.FormPercent, 1e-9)
	assert.Nil(t, breakdown.SystemMetrics)
	assert.GreaterOrEqual(t, breakdown.FinalScore10, 0.0)
	assert.LessOrEqual(t, breakdown.FinalScore10, 10.0)
}

func TestComputeBreakdownIdempotent(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "b", QType: domains.QTypeBool, Weight: 10},
		ratingQuestion("r", 20, 0, 10),
	}}
	answers := []domains.Answer{
		{QuestionID: "b", ValueBool: boolPtr(true)},
		{QuestionID: "r", ValueNumber: floatPtr(6)},
	}
	metrics := &MetricInputs{
		Weights:  domains.MetricWeights{Manager: 20, Tasks: 30, Attendance: 10},
		Readings: domains.MetricReadings{Manager: 80, Tasks: 90, Attendance: 100},
	}

	first, err := ComputeBreakdown(snapshot, answers, metrics)
	require.NoError(t, err)
	second, err := ComputeBreakdown(snapshot, answers, metrics)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeBreakdownFailsFastBeforeScoring(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "q1", QType: domains.QTypeBool, Weight: 10, Required: true},
	}}

	breakdown, err := ComputeBreakdown(snapshot, nil, nil)
	require.Error(t, err)
	assert.Empty(t, breakdown.PerQuestion, "no partial breakdown on validation failure")
}

func TestComputeBreakdownZeroWeightForm(t *testing.T) {
	snapshot := domains.FormSnapshot{Questions: []domains.Question{
		{ID: "t1", QType: domains.QTypeText},
		{ID: "t2", QType: domains.QTypeText},
	}}

	breakdown, err := ComputeBreakdown(snapshot, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, breakdown.FormPercent)
	assert.Zero(t, breakdown.FinalScore10)
}
