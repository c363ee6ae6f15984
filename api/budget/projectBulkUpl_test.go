package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDeptCode(t *testing.T) {
	tests := []struct {
		name string
		cc   string
		want string
	}{
		{"dx dev ops team", "DX개발운영팀", "A"},
		{"it ops team", "IT운영팀", "A"},
		{"hr ga pl", "HR/GA PL", "A"},
		{"dx planning team", "DX기획팀", "B"},
		{"security korean", "보안운영파트", "C"},
		{"security english lowercase", "security team", "C"},
		{"unknown team", "총무팀", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveDeptCode(tt.cc))
		})
	}
}

func TestIsMonthColumn(t *testing.T) {
	assert.True(t, isMonthColumn("202501"))
	assert.True(t, isMonthColumn("202612"))
	assert.False(t, isMonthColumn("연도"))
	assert.False(t, isMonthColumn("2025"))
	assert.False(t, isMonthColumn("2025-1"))
	assert.False(t, isMonthColumn("190001"))
	assert.False(t, isMonthColumn("20250x"))
}

func TestParsePlanAmount(t *testing.T) {
	assert.Equal(t, int64(1234567), parsePlanAmount("1,234,567"))
	assert.Equal(t, int64(500), parsePlanAmount(" 500 "))
	assert.Equal(t, int64(0), parsePlanAmount(""))
	assert.Equal(t, int64(0), parsePlanAmount("미정"))
	assert.Equal(t, int64(-1000), parsePlanAmount("-1,000"))
}
