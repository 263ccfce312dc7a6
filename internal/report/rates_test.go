package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name      string
		num, den  float64
		precision int
		want      float64
	}{
		{"simple percentage", 950, 1000, 2, 95.0},
		{"rounds to precision", 115, 950, 2, 12.11},
		{"four digit precision", 3, 950, 4, 0.3158},
		{"zero denominator", 50, 0, 2, 0},
		{"negative denominator", 50, -10, 2, 0},
		{"zero numerator", 0, 1000, 2, 0},
		{"over 100 percent allowed", 1100, 1000, 2, 110.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rate(tt.num, tt.den, tt.precision))
		})
	}
}

func TestRateNeverNonFinite(t *testing.T) {
	got := Rate(math.Inf(1), 100, 2)
	assert.False(t, math.IsNaN(got))
	assert.False(t, math.IsInf(got, 0))
	assert.Zero(t, got)

	got = Rate(math.NaN(), 100, 2)
	assert.Zero(t, got)
}

func TestSanitize(t *testing.T) {
	v := math.NaN()
	sanitize(&v)
	assert.Zero(t, v)

	v = math.Inf(-1)
	sanitize(&v)
	assert.Zero(t, v)

	v = 42.5
	sanitize(&v)
	assert.Equal(t, 42.5, v)

	sanitize(nil) // must not panic
}
