// Package health scores deliverability metrics. It carries two independent
// models: the 0-100 health score attached to report summaries, and the
// risk score / color classification used by the pulsation monitoring pipeline.
// The two are never reconciled; different report views consume different ones.
package health

// Rating is the qualitative band for a total health score.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
	RatingCritical  Rating = "Critical"
	RatingNA        Rating = "N/A"
)

// Rates holds the percentage inputs for a health score calculation.
type Rates struct {
	DeliveryRate float64
	BounceRate   float64
	OpenRate     float64
	UnsubRate    float64
	SpamRate     float64
}

// Breakdown is the per-metric score breakdown. Max total is 100:
// delivery 25, bounce 25, open 25, unsubscribe 10, spam 15.
type Breakdown struct {
	DeliveryScore int    `json:"delivery_score"`
	BounceScore   int    `json:"bounce_score"`
	OpenScore     int    `json:"open_score"`
	UnsubScore    int    `json:"unsub_score"`
	SpamScore     int    `json:"spam_score"`
	TotalScore    int    `json:"total_score"`
	Rating        Rating `json:"health_rating"`
}

// Score calculates the health score breakdown for the given rates.
// A nil input returns an all-zero breakdown rated "N/A" rather than an error.
func Score(r *Rates) Breakdown {
	if r == nil {
		return Breakdown{Rating: RatingNA}
	}

	b := Breakdown{
		DeliveryScore: deliveryScore(r.DeliveryRate),
		BounceScore:   bounceScore(r.BounceRate),
		OpenScore:     openScore(r.OpenRate),
		UnsubScore:    unsubScore(r.UnsubRate),
		SpamScore:     spamScore(r.SpamRate),
	}
	b.TotalScore = b.DeliveryScore + b.BounceScore + b.OpenScore + b.UnsubScore + b.SpamScore
	b.Rating = rating(b.TotalScore)
	return b
}

// The threshold bands below are ordered comparisons, first match wins.
// They must stay step functions; no interpolation.

func deliveryScore(rate float64) int {
	switch {
	case rate >= 98:
		return 25
	case rate >= 96:
		return 22
	case rate >= 94:
		return 20
	case rate >= 92:
		return 15
	case rate >= 90:
		return 10
	default:
		return 5
	}
}

func bounceScore(rate float64) int {
	switch {
	case rate <= 0.5:
		return 25
	case rate <= 0.9:
		return 20
	case rate <= 1.5:
		return 15
	default:
		return 5
	}
}

func openScore(rate float64) int {
	switch {
	case rate >= 12:
		return 25
	case rate >= 10:
		return 20
	case rate >= 8:
		return 15
	case rate >= 6:
		return 10
	default:
		return 5
	}
}

func unsubScore(rate float64) int {
	switch {
	case rate <= 0.1:
		return 10
	case rate <= 0.39:
		return 7
	case rate <= 0.99:
		return 5
	default:
		return 2
	}
}

// spamScore rewards a small-but-nonzero complaint rate; both a spike and a
// suspicious flat zero fall through to the floor band.
func spamScore(rate float64) int {
	switch {
	case rate >= 0.01 && rate <= 0.02:
		return 15
	case rate >= 0.03 && rate <= 0.04:
		return 10
	case rate >= 0.05 && rate <= 0.09:
		return 5
	default:
		return 2
	}
}

func rating(total int) Rating {
	switch {
	case total >= 85:
		return RatingExcellent
	case total >= 70:
		return RatingGood
	case total >= 55:
		return RatingFair
	case total >= 40:
		return RatingPoor
	default:
		return RatingCritical
	}
}
