package master

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextBudgetCodeID(t *testing.T) {
	tests := []struct {
		name     string
		codeType string
		lastID   string
		want     string
	}{
		{"first code of type", "BUDGET_L1", "", "BUDGET_L1_001"},
		{"increments sequence", "BUDGET_L1", "BUDGET_L1_005", "BUDGET_L1_006"},
		{"type with underscores", "IT_TYPE", "IT_TYPE_011", "IT_TYPE_012"},
		{"lowercase type is uppercased", "budget_l2", "", "BUDGET_L2_001"},
		{"malformed tail restarts", "BUDGET_L1", "BUDGET_L1_xyz", "BUDGET_L1_001"},
		{"rolls into three digits", "BUDGET_L2", "BUDGET_L2_099", "BUDGET_L2_100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextBudgetCodeID(tt.codeType, tt.lastID))
		})
	}
}
