package scoring

import (
	"math"

	"evalboard/internal/domains"
)

// MetricInputs pairs the configured weight allocation with the externally
// measured [0,100] percents for one target.
type MetricInputs struct {
	Weights  domains.MetricWeights
	Readings domains.MetricReadings
}

// BlendFormOnly computes the pure-form score: percent of the total weight
// achieved, mapped onto a 0..10 scale. A zero-weight form scores zero.
func BlendFormOnly(totalAchieved, totalWeight float64) (formPercent, finalScore10 float64) {
	if totalWeight <= 0 {
		return 0, 0
	}
	formPercent = 100 * totalAchieved / totalWeight
	return formPercent, round2(formPercent / 10)
}

// BlendWithMetrics folds the three objective components into the form score.
// The form participates as a fourth component weighted by whatever remains of
// the 100-point allocation; when the system weights already consume it, the
// form is excluded and the three components are normalized among themselves.
func BlendWithMetrics(formPercent float64, in MetricInputs) domains.SystemMetrics {
	w := in.Weights
	manager := clampPercent(in.Readings.Manager)
	tasks := clampPercent(in.Readings.Tasks)
	attendance := clampPercent(in.Readings.Attendance)

	systemWeight := w.Sum()
	weighted := formPercent
	if systemWeight > 0 {
		systemSum := manager*w.Manager + tasks*w.Tasks + attendance*w.Attendance
		formWeight := 100 - systemWeight
		if formWeight > 0 {
			weighted = (systemSum + formPercent*formWeight) / (systemWeight + formWeight)
		} else {
			weighted = systemSum / systemWeight
		}
	}

	return domains.SystemMetrics{
		Weights:           w,
		ManagerPercent:    manager,
		TasksPercent:      tasks,
		AttendancePercent: attendance,
		WeightedPercent:   weighted,
		FinalScore10:      round2(weighted / 10),
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
