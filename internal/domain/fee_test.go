package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatformFee(t *testing.T) {
	tests := []struct {
		amount int64
		want   int64
	}{
		{10000, 100}, // £100.00 -> £1.00
		{5000, 50},
		{150, 2},  // 1.5 rounds half up
		{149, 1},  // 1.49 rounds down
		{151, 2},  // 1.51 rounds up
		{49, 0},   // below half a penny
		{50, 1},   // exactly half rounds up
		{1, 0},
		{0, 0},
		{999999, 10000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PlatformFee(tt.amount), "amount %d", tt.amount)
	}
}
