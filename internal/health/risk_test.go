package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskScore(t *testing.T) {
	// (100-95)*0.4 + (0.1*100)*0.4 + (1.0*100)*0.2 = 2 + 4 + 20
	assert.InDelta(t, 26.0, RiskScore(95.0, 0.1, 1.0), 1e-9)
	assert.InDelta(t, 0.0, RiskScore(100.0, 0, 0), 1e-9)
}

func TestClassifyPriorityOrder(t *testing.T) {
	tests := []struct {
		name     string
		delivery float64
		spam     float64
		want     Classification
	}{
		{"high spam wins over good delivery", 99.0, 0.3, ClassRed},
		{"low delivery is red", 69.9, 0.0, ClassRed},
		{"mid delivery is orange", 75.0, 0.0, ClassOrange},
		{"boundary 80 is yellow", 80.0, 0.0, ClassYellow},
		{"just under 95 is yellow", 94.99, 0.0, ClassYellow},
		{"95 and up is green", 95.0, 0.0, ClassGreen},
		{"96 is green", 96.0, 0.0, ClassGreen},
		{"spam just under threshold stays green", 97.0, 0.29, ClassGreen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.delivery, tt.spam))
		})
	}
}
