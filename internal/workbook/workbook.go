package workbook

import (
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows caps how many rows are pulled out of a legacy .xls workbook.
const maxXLSRows = 65536

// FileExt returns the lower-cased extension of an uploaded filename.
func FileExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// Parse reads an uploaded workbook into rows of cells. The first sheet is
// used for spreadsheet formats. Supported extensions: .xlsx, .xls, .csv.
func Parse(file io.ReadSeeker, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		return f.GetRows(sheet)
	case ".xls":
		wb, err := xls.OpenReader(file, "utf-8")
		if err != nil {
			return nil, err
		}
		return wb.ReadAllCells(maxXLSRows), nil
	}
	return nil, errors.New("unsupported file type: " + ext)
}

// Header maps header-row labels to their column positions.
type Header map[string]int

// HeaderIndex maps header-row labels to their column positions. Labels are
// matched after trimming whitespace; the first occurrence wins.
func HeaderIndex(headerRow []string) Header {
	idx := make(Header, len(headerRow))
	for i, h := range headerRow {
		key := strings.TrimSpace(h)
		if key == "" {
			continue
		}
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// Col returns the position of label, or -1 when the header row lacks it.
// Cell treats -1 as out of range, so a workbook missing a column reads the
// same as a workbook with the column left blank.
func (h Header) Col(label string) int {
	if i, ok := h[label]; ok {
		return i
	}
	return -1
}

// Cell returns the trimmed cell at column i, or "" when the row is short.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
