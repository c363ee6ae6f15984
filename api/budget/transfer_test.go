package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyTransfer(t *testing.T) {
	tests := []struct {
		name       string
		sourcePlan int64
		targetPlan int64
		amount     int64
		wantSource int64
		wantTarget int64
		wantOK     bool
	}{
		{"normal move", 1000, 200, 300, 700, 500, true},
		{"exact balance drains source", 1000, 0, 1000, 0, 1000, true},
		{"target without prior plan", 500, 0, 100, 400, 100, true},
		{"insufficient balance", 200, 0, 300, 200, 0, false},
		{"zero amount", 1000, 0, 0, 1000, 0, false},
		{"negative amount", 1000, 0, -50, 1000, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSource, gotTarget, ok := applyTransfer(tt.sourcePlan, tt.targetPlan, tt.amount)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSource, gotSource)
			assert.Equal(t, tt.wantTarget, gotTarget)
		})
	}
}

func TestApplyTransferConservesTotal(t *testing.T) {
	cases := []struct{ source, target, amount int64 }{
		{1000, 200, 300},
		{1000, 0, 1000},
		{750, 250, 1},
		{500, 500, 499},
	}
	for _, c := range cases {
		newSource, newTarget, ok := applyTransfer(c.source, c.target, c.amount)
		assert.True(t, ok)
		assert.Equal(t, c.source+c.target, newSource+newTarget,
			"a transfer must move budget, never create or destroy it")
	}
}

func TestApplyTransferRejectionLeavesBalancesUntouched(t *testing.T) {
	newSource, newTarget, ok := applyTransfer(100, 50, 101)
	assert.False(t, ok)
	assert.Equal(t, int64(100), newSource)
	assert.Equal(t, int64(50), newTarget)
}
