package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextProjectID(t *testing.T) {
	tests := []struct {
		name     string
		deptCode string
		lastID   string
		want     string
	}{
		{"increments highest", "A", "A-007", "A-008"},
		{"first project in dept", "A", "", "A-001"},
		{"rolls into three digits", "B", "B-099", "B-100"},
		{"keeps width past 100", "B", "B-123", "B-124"},
		{"malformed sequence restarts", "C", "C-abc", "C-001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextProjectID(tt.deptCode, tt.lastID))
		})
	}
}
