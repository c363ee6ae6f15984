package recon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExtractProjectID(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantID string
		wantOK bool
	}{
		{"bracketed", "[A-001] 월 운영비", "A-001", true},
		{"bare id", "A-001 monthly fee", "A-001", true},
		{"id in the middle", "7월 정산 B-012 유지보수", "B-012", true},
		{"first match wins", "[A-001] then [B-002]", "A-001", true},
		{"lowercase rejected", "a-001 settlement", "", false},
		{"two digit sequence rejected", "A-01 settlement", "", false},
		{"no id at all", "서버 임대료 정산", "", false},
		{"empty text", "", "", false},
		{"unbalanced bracket still matches", "[C-310 백업 라이선스", "C-310", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractProjectID(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestAggregateSumsPerProjectAndMonth(t *testing.T) {
	lines := []MappedLine{
		{ProjID: "A-001", YYYYMM: "202501", Amount: decimal.NewFromInt(1000)},
		{ProjID: "A-001", YYYYMM: "202501", Amount: decimal.NewFromInt(250)},
		{ProjID: "A-001", YYYYMM: "202502", Amount: decimal.NewFromInt(70)},
		{ProjID: "B-002", YYYYMM: "202501", Amount: decimal.NewFromInt(-300)},
	}

	totals := Aggregate(lines)

	assert.Len(t, totals, 3)
	assert.True(t, totals[Key{"A-001", "202501"}].Equal(decimal.NewFromInt(1250)))
	assert.True(t, totals[Key{"A-001", "202502"}].Equal(decimal.NewFromInt(70)))
	assert.True(t, totals[Key{"B-002", "202501"}].Equal(decimal.NewFromInt(-300)))
}

func TestAggregateIsIdempotent(t *testing.T) {
	lines := []MappedLine{
		{ProjID: "A-001", YYYYMM: "202501", Amount: decimal.NewFromInt(500)},
		{ProjID: "A-001", YYYYMM: "202501", Amount: decimal.NewFromInt(500)},
	}

	first := Aggregate(lines)
	second := Aggregate(lines)

	assert.Equal(t, len(first), len(second))
	for k, v := range first {
		assert.True(t, second[k].Equal(v))
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	totals := Aggregate(nil)
	assert.Empty(t, totals)
}
