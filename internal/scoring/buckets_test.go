package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"evalboard/internal/domains"
)

func TestRatingBucketThirds(t *testing.T) {
	cfg := DefaultBucketConfig()
	cases := []struct {
		value float64
		want  Bucket
	}{
		{0, BucketLow},
		{3.3, BucketLow},
		{3.34, BucketMid},
		{5, BucketMid},
		{6.6, BucketMid},
		{6.67, BucketHigh},
		{10, BucketHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cfg.RatingBucket(tc.value, 0, 10), "value %v", tc.value)
	}
}

func TestRatingBucketShiftedScale(t *testing.T) {
	cfg := DefaultBucketConfig()
	// 1..5 scale: thirds at 2.33 and 3.67.
	assert.Equal(t, BucketLow, cfg.RatingBucket(1, 1, 5))
	assert.Equal(t, BucketMid, cfg.RatingBucket(3, 1, 5))
	assert.Equal(t, BucketHigh, cfg.RatingBucket(5, 1, 5))
}

func TestRatingBucketDegenerateRange(t *testing.T) {
	cfg := DefaultBucketConfig()
	assert.Equal(t, BucketHigh, cfg.RatingBucket(5, 5, 5))
}

func TestChoiceBucketFallbackThresholds(t *testing.T) {
	cfg := DefaultBucketConfig()
	cases := []struct {
		score float64
		want  Bucket
	}{
		{0, BucketLow},
		{5, BucketLow},
		{5.5, BucketMid},
		{7.99, BucketMid},
		{8, BucketHigh},
		{20, BucketHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cfg.ChoiceBucket(tc.score), "score %v", tc.score)
	}
}

func TestChoiceBucketCustomThresholds(t *testing.T) {
	cfg := BucketConfig{ChoiceLowMax: 10, ChoiceHighMin: 15}
	assert.Equal(t, BucketLow, cfg.ChoiceBucket(10))
	assert.Equal(t, BucketMid, cfg.ChoiceBucket(12))
	assert.Equal(t, BucketHigh, cfg.ChoiceBucket(15))
}

func TestBucketPercentsGuardsEmptyPopulation(t *testing.T) {
	percents := BucketPercents(domains.BucketCounts{}, 0)
	assert.Equal(t, domains.BucketPercents{}, percents)
}

func TestBucketPercentsRounds(t *testing.T) {
	counts := domains.BucketCounts{Low: 1, Mid: 1, High: 1}
	percents := BucketPercents(counts, 3)
	assert.Equal(t, 33, percents.Low)
	assert.Equal(t, 33, percents.Mid)
	assert.Equal(t, 33, percents.High)
}
