package scoring

import (
	"math"

	"evalboard/internal/domains"
)

// textSampleLimit caps how many free-text answers an aggregate carries; the
// dashboard only ever shows a sample.
const textSampleLimit = 100

// Aggregate folds the submissions for one target into per-question statistics
// and an overall average score. It mutates nothing and is safe to rerun on a
// polling cadence. The input carries no reviewer identity by construction.
func Aggregate(snapshot domains.FormSnapshot, targetUser string, invitedCount int, submissions []domains.AnonymizedSubmission, cfg BucketConfig) domains.AggregateReport {
	report := domains.AggregateReport{
		TargetUser:         targetUser,
		InvitedCount:       invitedCount,
		RespondedCount:     len(submissions),
		PerQuestionAverage: make([]domains.AggregateQuestionStat, 0, len(snapshot.Questions)),
	}
	report.PendingCount = invitedCount - report.RespondedCount
	if report.PendingCount < 0 {
		report.PendingCount = 0
	}

	if len(submissions) > 0 {
		var sum float64
		for _, sub := range submissions {
			sum += sub.Breakdown.FinalScore10
		}
		avg := round2(sum / float64(len(submissions)))
		report.AverageScore = &avg
	}

	indexed := make([]map[string]*domains.Answer, len(submissions))
	for i, sub := range submissions {
		indexed[i] = indexAnswers(sub.Answers)
	}

	for _, q := range snapshot.Questions {
		report.PerQuestionAverage = append(report.PerQuestionAverage, aggregateQuestion(q, indexed, cfg))
	}
	return report
}

func aggregateQuestion(q domains.Question, indexed []map[string]*domains.Answer, cfg BucketConfig) domains.AggregateQuestionStat {
	stat := domains.AggregateQuestionStat{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		QType:        q.QType,
	}

	var numericSum float64
	var numericCount int
	record := func(v float64) {
		numericSum += v
		numericCount++
	}

	switch q.QType {
	case domains.QTypeBool:
		stat.Bool = &domains.BoolStat{}
	case domains.QTypeRating:
		stat.Rating = &domains.RatingStat{PerRating: make(map[int]int)}
	case domains.QTypeChoice:
		stat.Choice = &domains.ChoiceStat{Options: make([]domains.ChoiceOptionCount, len(q.Choices))}
		for i, opt := range q.Choices {
			stat.Choice.Options[i] = domains.ChoiceOptionCount{Key: opt.Key, Label: opt.Label, Score: opt.Score}
		}
	}

	for _, answers := range indexed {
		c := Normalize(q, answers[q.ID])
		if !c.Answered {
			continue
		}
		stat.TotalResponses++

		switch q.QType {
		case domains.QTypeBool:
			record(*c.Numeric)
			if *c.Numeric > 0 {
				stat.Bool.Yes++
			} else {
				stat.Bool.No++
			}
		case domains.QTypeRating:
			record(*c.Numeric)
			min, max := ratingRange(q)
			stat.Rating.PerRating[int(math.Round(*c.Numeric))]++
			addBucket(&stat.Rating.Buckets, cfg.RatingBucket(*c.Numeric, min, max))
		case domains.QTypeChoice:
			record(*c.Numeric)
			key := ""
			if answers[q.ID] != nil && answers[q.ID].OptionKey != nil {
				key = *answers[q.ID].OptionKey
			}
			for i := range stat.Choice.Options {
				if stat.Choice.Options[i].Key == key {
					stat.Choice.Options[i].Count++
					break
				}
			}
			addBucket(&stat.Choice.Buckets, cfg.ChoiceBucket(*c.Numeric))
		case domains.QTypeText:
			if len(stat.Texts) < textSampleLimit {
				stat.Texts = append(stat.Texts, c.Display)
			}
		}
	}

	// Unmatched option keys never score, but the raw keys are still worth
	// surfacing on the dashboard.
	if q.QType == domains.QTypeChoice {
		for _, answers := range indexed {
			a := answers[q.ID]
			if a == nil || a.OptionKey == nil || *a.OptionKey == "" {
				continue
			}
			if _, found := optionByKey(q, *a.OptionKey); !found {
				stat.Choice.Other = append(stat.Choice.Other, *a.OptionKey)
			}
		}
		stat.Choice.BucketPercent = BucketPercents(stat.Choice.Buckets, stat.TotalResponses)
	}
	if q.QType == domains.QTypeRating {
		stat.Rating.BucketPercent = BucketPercents(stat.Rating.Buckets, stat.TotalResponses)
	}

	if numericCount > 0 {
		avg := round3(numericSum / float64(numericCount))
		stat.AverageNumeric = &avg
	}
	return stat
}

func optionByKey(q domains.Question, key string) (domains.ChoiceOption, bool) {
	for _, opt := range q.Choices {
		if opt.Key == key {
			return opt, true
		}
	}
	return domains.ChoiceOption{}, false
}
