package domains

// BucketCounts is the low/mid/high classification tally shared by rating and
// choice aggregates.
type BucketCounts struct {
	Low  int `json:"low"`
	Mid  int `json:"mid"`
	High int `json:"high"`
}

func (b BucketCounts) Total() int {
	return b.Low + b.Mid + b.High
}

type BucketPercents struct {
	Low  int `json:"low"`
	Mid  int `json:"mid"`
	High int `json:"high"`
}

type BoolStat struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

type RatingStat struct {
	PerRating     map[int]int    `json:"per_rating"`
	Buckets       BucketCounts   `json:"buckets"`
	BucketPercent BucketPercents `json:"bucket_percent"`
}

type ChoiceOptionCount struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

type ChoiceStat struct {
	Options       []ChoiceOptionCount `json:"options"`
	Other         []string            `json:"other,omitempty"`
	Buckets       BucketCounts        `json:"buckets"`
	BucketPercent BucketPercents      `json:"bucket_percent"`
}

// AggregateQuestionStat is the per-question cross-submission statistic.
// Exactly one of the variant payloads is populated, matching QType.
type AggregateQuestionStat struct {
	QuestionID     string      `json:"question_id"`
	QuestionText   string      `json:"question_text"`
	QType          QType       `json:"qtype"`
	TotalResponses int         `json:"total_responses"`
	AverageNumeric *float64    `json:"average_numeric"`
	Bool           *BoolStat   `json:"bool,omitempty"`
	Rating         *RatingStat `json:"rating,omitempty"`
	Choice         *ChoiceStat `json:"choice,omitempty"`
	Texts          []string    `json:"texts,omitempty"`
}

// AggregateReport is the cross-submission reduction for one target.
// AverageScore is nil (not 0) when nobody has responded yet.
type AggregateReport struct {
	TargetUser         string                  `json:"target_user"`
	InvitedCount       int                     `json:"invited_count"`
	RespondedCount     int                     `json:"responded_count"`
	PendingCount       int                     `json:"pending_count"`
	AverageScore       *float64                `json:"average_score"`
	PerQuestionAverage []AggregateQuestionStat `json:"per_question_average"`
}
