package domains

// PerQuestionResult is one row of a submission's scoring breakdown.
type PerQuestionResult struct {
	QuestionID      string  `json:"question_id"`
	QuestionText    string  `json:"question_text"`
	QType           QType   `json:"qtype"`
	Weight          float64 `json:"weight"`
	Achieved        float64 `json:"achieved"`
	PercentOfWeight int     `json:"percent_of_weight"`
	Answered        bool    `json:"answered"`
	Display         string  `json:"respondent_answer,omitempty"`
	SelectedLabel   *string `json:"selected_label,omitempty"`
	PendingManual   bool    `json:"pending_manual_grade,omitempty"`
	Warning         string  `json:"warning,omitempty"`
}

// ComputedBreakdown is derived from a submission's answers plus the form
// snapshot. It is never stored as ground truth and is recomputable at any time.
type ComputedBreakdown struct {
	PerQuestion   []PerQuestionResult `json:"per_question"`
	TotalAchieved float64             `json:"total_achieved"`
	TotalWeight   float64             `json:"total_weight"`
	FormPercent   float64             `json:"form_percent"`
	FinalScore10  float64             `json:"final_score_10"`
	SystemMetrics *SystemMetrics      `json:"system_metrics,omitempty"`
}

// MetricWeights are the raw (not yet normalized) weight allocations for the
// three objective system components. Supplied per company, overridable per
// department.
type MetricWeights struct {
	Manager    float64 `json:"manager"`
	Tasks      float64 `json:"tasks"`
	Attendance float64 `json:"attendance"`
}

func (w MetricWeights) Sum() float64 {
	return w.Manager + w.Tasks + w.Attendance
}

// MetricReadings are the externally measured [0,100] percents for one target.
type MetricReadings struct {
	Manager    float64 `json:"manager_percent"`
	Tasks      float64 `json:"tasks_percent"`
	Attendance float64 `json:"attendance_percent"`
}

// SystemMetrics is the blended-score detail attached to a breakdown when
// objective metrics participate in the final score.
type SystemMetrics struct {
	Weights           MetricWeights `json:"weights"`
	ManagerPercent    float64       `json:"manager_percent"`
	TasksPercent      float64       `json:"tasks_percent"`
	AttendancePercent float64       `json:"attendance_percent"`
	WeightedPercent   float64       `json:"weighted_percent"`
	FinalScore10      float64       `json:"final_score_10"`
}
