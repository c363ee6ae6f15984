package workbook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExt(t *testing.T) {
	assert.Equal(t, ".xlsx", FileExt("ledger_2025.XLSX"))
	assert.Equal(t, ".xls", FileExt("old_export.xls"))
	assert.Equal(t, "", FileExt("noextension"))
}

func TestHeaderIndex(t *testing.T) {
	idx := HeaderIndex([]string{"전표 번호", " 텍스트 ", "", "금액(현지 통화)", "텍스트"})

	assert.Equal(t, 0, idx["전표 번호"])
	assert.Equal(t, 1, idx["텍스트"], "first occurrence wins and labels are trimmed")
	assert.Equal(t, 3, idx["금액(현지 통화)"])
	_, ok := idx[""]
	assert.False(t, ok, "blank headers are not indexed")
}

func TestHeaderColMissingColumn(t *testing.T) {
	idx := HeaderIndex([]string{"전표 번호", "금액(현지 통화)"})

	assert.Equal(t, 0, idx.Col("전표 번호"))
	assert.Equal(t, -1, idx.Col("전기일"), "absent labels must not alias column 0")

	row := []string{"1000012345", "1,500,000"}
	assert.Equal(t, "", Cell(row, idx.Col("전기일")), "a missing column reads as an empty cell")
}

func TestCell(t *testing.T) {
	row := []string{"A-001", " 1,000 ", ""}

	assert.Equal(t, "A-001", Cell(row, 0))
	assert.Equal(t, "1,000", Cell(row, 1))
	assert.Equal(t, "", Cell(row, 2))
	assert.Equal(t, "", Cell(row, 5), "short rows read as empty")
	assert.Equal(t, "", Cell(row, -1))
}

func TestParseCSV(t *testing.T) {
	src := "전표 번호,텍스트,금액(현지 통화)\n100001,[A-001] 운영비,\"1,500,000\"\n100002,기타,300\n"

	rows, err := Parse(strings.NewReader(src), ".csv")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"100001", "[A-001] 운영비", "1,500,000"}, rows[1])
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse(strings.NewReader("x"), ".pdf")
	assert.Error(t, err)
}
