package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"evalboard/internal/domains"
)

func TestBlendFormOnly(t *testing.T) {
	percent, final := BlendFormOnly(42.75, 55)
	assert.InDelta(t, 77.727, percent, 0.001)
	assert.Equal(t, 7.77, final)

	percent, final = BlendFormOnly(0, 0)
	assert.Zero(t, percent)
	assert.Zero(t, final)
}

func TestBlendWithMetricsFormRemainder(t *testing.T) {
	// 20+30+10 leaves 40 points for the form.
	in := MetricInputs{
		Weights:  domains.MetricWeights{Manager: 20, Tasks: 30, Attendance: 10},
		Readings: domains.MetricReadings{Manager: 80, Tasks: 90, Attendance: 100},
	}
	m := BlendWithMetrics(70, in)

	// (80*20 + 90*30 + 100*10 + 70*40) / 100 = 81.
	assert.InDelta(t, 81, m.WeightedPercent, 1e-9)
	assert.Equal(t, 8.1, m.FinalScore10)
}

func TestBlendWithMetricsSystemConsumesBudget(t *testing.T) {
	// Weights at or above 100 exclude the form and renormalize the rest.
	in := MetricInputs{
		Weights:  domains.MetricWeights{Manager: 60, Tasks: 40, Attendance: 20},
		Readings: domains.MetricReadings{Manager: 50, Tasks: 100, Attendance: 80},
	}
	m := BlendWithMetrics(0, in)

	// (50*60 + 100*40 + 80*20) / 120 = 71.666...
	assert.InDelta(t, 71.667, m.WeightedPercent, 0.001)
	assert.Equal(t, 7.17, m.FinalScore10)
}

func TestBlendWithMetricsZeroWeightsFallsBackToForm(t *testing.T) {
	m := BlendWithMetrics(64, MetricInputs{})
	assert.Equal(t, 64.0, m.WeightedPercent)
	assert.Equal(t, 6.4, m.FinalScore10)
}

func TestBlendClampsOutOfRangeReadings(t *testing.T) {
	in := MetricInputs{
		Weights:  domains.MetricWeights{Manager: 50, Tasks: 50},
		Readings: domains.MetricReadings{Manager: 130, Tasks: -5},
	}
	m := BlendWithMetrics(0, in)
	assert.Equal(t, 100.0, m.ManagerPercent)
	assert.Equal(t, 0.0, m.TasksPercent)
	assert.InDelta(t, 50, m.WeightedPercent, 1e-9)
}

func TestBlendFinalScoreStaysOnScale(t *testing.T) {
	for _, percent := range []float64{0, 12.5, 50, 99.99, 100} {
		in := MetricInputs{
			Weights:  domains.MetricWeights{Manager: 100},
			Readings: domains.MetricReadings{Manager: percent},
		}
		m := BlendWithMetrics(0, in)
		assert.GreaterOrEqual(t, m.FinalScore10, 0.0)
		assert.LessOrEqual(t, m.FinalScore10, 10.0)
	}
}
