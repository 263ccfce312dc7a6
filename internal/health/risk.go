package health

// Classification is the traffic-light bucket assigned by the risk model.
type Classification string

const (
	ClassRed          Classification = "Red (High Spam Complaints)"
	ClassOrange       Classification = "Orange (Low Delivery)"
	ClassYellow       Classification = "Yellow (Monitor)"
	ClassGreen        Classification = "Green (Healthy)"
	ClassUnclassified Classification = "Unclassified"
)

// RiskScore computes the composite risk score used by the pulsation pipeline.
// Higher is worse. All inputs are percentages.
func RiskScore(deliveryRate, spamRate, bounceRate float64) float64 {
	return (100-deliveryRate)*0.4 + (spamRate*100)*0.4 + (bounceRate*100)*0.2
}

// Classify assigns a traffic-light classification from delivery and spam
// rates. Branches are evaluated in priority order; the first match wins.
// The Unclassified fallthrough is unreachable for finite inputs but kept so
// a bad value degrades to a label instead of a wrong color.
func Classify(deliveryRate, spamRate float64) Classification {
	switch {
	case spamRate >= 0.3 || deliveryRate < 70:
		return ClassRed
	case deliveryRate < 80:
		return ClassOrange
	case deliveryRate >= 80 && deliveryRate < 95:
		return ClassYellow
	case deliveryRate >= 95:
		return ClassGreen
	default:
		return ClassUnclassified
	}
}
