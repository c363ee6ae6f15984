package sap

import (
	"testing"

	"OpexSaas/internal/config"
	"OpexSaas/internal/workbook"

	"github.com/stretchr/testify/assert"
)

func TestDeriveMonth(t *testing.T) {
	tests := []struct {
		name         string
		postingDate  string
		want         string
		wantFallback bool
	}{
		{"dashed date", "2025-07-03", "202507", false},
		{"dotted date", "2025.07.03", "202507", false},
		{"compact date", "20250703", "202507", false},
		{"empty cell", "", config.FallbackMonth, true},
		{"too short", "2025-7", config.FallbackMonth, true},
		{"dashes only", "-------", config.FallbackMonth, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fallback := deriveMonth(tt.postingDate)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFallback, fallback)
		})
	}
}

func TestDeriveMonthMissingPostingDateColumn(t *testing.T) {
	// A workbook without the posting-date column must fall back to the
	// sentinel month, not derive one from whatever sits in column 0.
	idx := workbook.HeaderIndex([]string{colSlipNo, colAmount})
	row := []string{"1000012345", "1,500,000"}

	got, fellBack := deriveMonth(workbook.Cell(row, idx.Col(colPostingDate)))

	assert.Equal(t, config.FallbackMonth, got)
	assert.True(t, fellBack)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		want         int64
		wantFallback bool
	}{
		{"plain", "15000", 15000, false},
		{"thousands separators", "1,234,567", 1234567, false},
		{"negative", "-42,000", -42000, false},
		{"surrounding spaces", " 300 ", 300, false},
		{"garbage", "N/A", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fallback := parseAmount(tt.raw)
			assert.Equal(t, tt.wantFallback, fallback)
			assert.Equal(t, tt.want, got.IntPart())
		})
	}
}

func TestParseLineItem(t *testing.T) {
	assert.Equal(t, 3, parseLineItem("3"))
	assert.Equal(t, 12, parseLineItem(" 12 "))
	assert.Equal(t, 0, parseLineItem(""))
	assert.Equal(t, 0, parseLineItem("abc"))
}

func TestRawLineKeyDeduplication(t *testing.T) {
	base := rawLineKey{fiscalYear: "2025", slipNo: "1000012345", lineItem: 1}
	tests := []struct {
		name string
		key  rawLineKey
		dup  bool
	}{
		{"same line repeated", rawLineKey{fiscalYear: "2025", slipNo: "1000012345", lineItem: 1}, true},
		{"different line item", rawLineKey{fiscalYear: "2025", slipNo: "1000012345", lineItem: 2}, false},
		{"different slip", rawLineKey{fiscalYear: "2025", slipNo: "1000099999", lineItem: 1}, false},
		{"different fiscal year", rawLineKey{fiscalYear: "2024", slipNo: "1000012345", lineItem: 1}, false},
	}
	seen := map[rawLineKey]struct{}{base: {}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, dup := seen[tt.key]
			assert.Equal(t, tt.dup, dup)
		})
	}
}
