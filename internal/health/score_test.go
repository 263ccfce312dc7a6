package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreNilInput(t *testing.T) {
	b := Score(nil)
	assert.Zero(t, b.TotalScore)
	assert.Equal(t, RatingNA, b.Rating)
}

func TestScorePerfectSender(t *testing.T) {
	b := Score(&Rates{
		DeliveryRate: 99.0,
		BounceRate:   0.3,
		OpenRate:     15.0,
		UnsubRate:    0.05,
		SpamRate:     0.01,
	})
	assert.Equal(t, 25, b.DeliveryScore)
	assert.Equal(t, 25, b.BounceScore)
	assert.Equal(t, 25, b.OpenScore)
	assert.Equal(t, 10, b.UnsubScore)
	assert.Equal(t, 15, b.SpamScore)
	assert.Equal(t, 100, b.TotalScore)
	assert.Equal(t, RatingExcellent, b.Rating)
}

func TestScoreWorstSender(t *testing.T) {
	b := Score(&Rates{
		DeliveryRate: 50.0,
		BounceRate:   10.0,
		OpenRate:     1.0,
		UnsubRate:    5.0,
		SpamRate:     2.0,
	})
	assert.Equal(t, 5+5+5+2+2, b.TotalScore)
	assert.Equal(t, RatingCritical, b.Rating)
}

func TestScoreDeliveryBandEdges(t *testing.T) {
	tests := []struct {
		rate float64
		want int
	}{
		{98.0, 25}, {97.9, 22}, {96.0, 22}, {95.9, 20},
		{94.0, 20}, {92.0, 15}, {90.0, 10}, {89.9, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, deliveryScore(tt.rate), "delivery %.1f", tt.rate)
	}
}

func TestSpamScoreZeroIsSuspicious(t *testing.T) {
	// A flat zero complaint rate scores the floor, same as a spike.
	assert.Equal(t, 2, spamScore(0))
	assert.Equal(t, 2, spamScore(0.5))
	assert.Equal(t, 15, spamScore(0.015))
}

func TestRatingBands(t *testing.T) {
	tests := []struct {
		total int
		want  Rating
	}{
		{100, RatingExcellent}, {85, RatingExcellent},
		{84, RatingGood}, {70, RatingGood},
		{69, RatingFair}, {55, RatingFair},
		{54, RatingPoor}, {40, RatingPoor},
		{39, RatingCritical}, {0, RatingCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rating(tt.total), "total %d", tt.total)
	}
}
