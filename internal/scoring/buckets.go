package scoring

import (
	"math"

	"evalboard/internal/domains"
)

type Bucket int

const (
	BucketLow Bucket = iota
	BucketMid
	BucketHigh
)

// BucketConfig carries the classification thresholds instead of hard-coding
// them, so edge values stay testable. Rating buckets are always thirds of the
// configured [min,max] range; the choice thresholds apply to raw option
// scores and are only a fallback for forms without server-provided buckets.
type BucketConfig struct {
	ChoiceLowMax  float64
	ChoiceHighMin float64
}

func DefaultBucketConfig() BucketConfig {
	return BucketConfig{ChoiceLowMax: 5, ChoiceHighMin: 8}
}

// RatingBucket classifies a rating value into thirds of its scale, the top
// third closed at max. A degenerate single-point scale classifies high.
func (c BucketConfig) RatingBucket(value, min, max float64) Bucket {
	span := max - min
	if span <= 0 {
		return BucketHigh
	}
	switch {
	case value < min+span/3:
		return BucketLow
	case value < min+2*span/3:
		return BucketMid
	default:
		return BucketHigh
	}
}

// ChoiceBucket classifies a raw option score with the fallback thresholds.
func (c BucketConfig) ChoiceBucket(score float64) Bucket {
	switch {
	case score <= c.ChoiceLowMax:
		return BucketLow
	case score >= c.ChoiceHighMin:
		return BucketHigh
	default:
		return BucketMid
	}
}

func addBucket(counts *domains.BucketCounts, b Bucket) {
	switch b {
	case BucketLow:
		counts.Low++
	case BucketMid:
		counts.Mid++
	case BucketHigh:
		counts.High++
	}
}

// BucketPercents converts counts to whole percents of the response total.
// An empty population yields zeros, never a division error.
func BucketPercents(counts domains.BucketCounts, totalResponses int) domains.BucketPercents {
	if totalResponses <= 0 {
		return domains.BucketPercents{}
	}
	percent := func(n int) int {
		return int(math.Round(100 * float64(n) / float64(totalResponses)))
	}
	return domains.BucketPercents{
		Low:  percent(counts.Low),
		Mid:  percent(counts.Mid),
		High: percent(counts.High),
	}
}
