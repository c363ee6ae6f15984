package budget

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"OpexSaas/api/closing"
	"OpexSaas/api/constants"
	"OpexSaas/internal/logger"
	"OpexSaas/internal/workbook"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Column labels of the planning workbook.
const (
	colProjIndex    = "Index"
	colFiscalYearKo = "연도"
	colProjName     = "사업명"
	colPrevIndex    = "전년도 Index"
	colContinuity   = "사업 연속성"
	colPrevStatus   = "전년도 사업상태"
	colGLAcct       = "계정"
	colCCCode       = "CC코드"
	colCCName       = "CC명칭"
	colVendorName   = "협력업체명"
	colProjMemo     = "사업 메모"
)

// deriveDeptCode maps a cost-center name onto the managing department code.
// Unknown names yield "" so the caller can skip the row; dept_code is a
// required column.
func deriveDeptCode(costCenterName string) string {
	name := strings.ToUpper(costCenterName)
	switch {
	case strings.Contains(name, "DX개발운영팀"),
		strings.Contains(name, "IT운영팀"),
		strings.Contains(name, "HR/GA PL"):
		return "A"
	case strings.Contains(name, "DX기획팀"):
		return "B"
	case strings.Contains(name, "보안"), strings.Contains(name, "SECURITY"):
		return "C"
	}
	return ""
}

// isMonthColumn reports whether a header label is a YYYYMM plan column.
func isMonthColumn(label string) bool {
	if len(label) != 6 || !strings.HasPrefix(label, "20") {
		return false
	}
	for _, c := range label {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// parsePlanAmount reads a plan cell, tolerating thousands separators.
// Anything unparseable counts as zero.
func parsePlanAmount(raw string) int64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	return d.IntPart()
}

// BulkProjectMasterHandler loads the yearly planning workbook: one row per
// project with master attributes plus one YYYYMM column per planning month.
// Master fields are upserted on (proj_id, fiscal_year); plan amounts are
// upserted per cell. Rows missing proj_id, fiscal year, name or a derivable
// department code are counted as skipped, never failing the batch. The
// whole file commits as one transaction. A single closing check guards the
// batch: the first month of the file's fiscal year must be OPEN.
func BulkProjectMasterHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
			return
		}
		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "No file uploaded", http.StatusBadRequest)
			return
		}
		defer file.Close()

		ext := workbook.FileExt(fileHeader.Filename)
		if ext != ".xlsx" && ext != ".xls" && ext != ".csv" {
			http.Error(w, constants.ErrExcelOnly, http.StatusBadRequest)
			return
		}
		records, err := workbook.Parse(file, ext)
		if err != nil || len(records) < 2 {
			http.Error(w, constants.ErrEmptyWorkbook, http.StatusBadRequest)
			return
		}

		headerRow := records[0]
		idx := workbook.HeaderIndex(headerRow)
		dataRows := records[1:]

		var monthCols []int
		for i, label := range headerRow {
			if isMonthColumn(strings.TrimSpace(label)) {
				monthCols = append(monthCols, i)
			}
		}

		ctx := r.Context()

		// One closing check for the whole year, not per row: January of the
		// file's fiscal year stands in for the year.
		firstYear := workbook.Cell(dataRows[0], idx.Col(colFiscalYearKo))
		if firstYear != "" {
			locked, err := closing.IsMonthClosed(ctx, pool, firstYear+"01")
			if err != nil {
				http.Error(w, constants.ErrClosingCheck, http.StatusInternalServerError)
				return
			}
			if locked {
				http.Error(w, constants.ErrYearClosed, http.StatusForbidden)
				return
			}
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			http.Error(w, constants.ErrTxStartFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		defer tx.Rollback(ctx)

		total, insertedProj, updatedProj, upsertedMonthly, skipped := 0, 0, 0, 0, 0

		for _, row := range dataRows {
			total++

			projID := workbook.Cell(row, idx.Col(colProjIndex))
			fiscalYear := workbook.Cell(row, idx.Col(colFiscalYearKo))
			projName := workbook.Cell(row, idx.Col(colProjName))
			deptCode := deriveDeptCode(workbook.Cell(row, idx.Col(colCCName)))

			if projID == "" || fiscalYear == "" || projName == "" || deptCode == "" {
				skipped++
				continue
			}

			var exists bool
			err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM tb_project_master WHERE proj_id = $1 AND fiscal_year = $2)`,
				projID, fiscalYear).Scan(&exists)
			if err != nil {
				http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
				return
			}

			if exists {
				_, err = tx.Exec(ctx, `
					UPDATE tb_project_master
					SET proj_name = $1, dept_code = $2, prev_proj_id = $3, continuity_status = $4,
					    status_prev_year = $5, gl_account = $6, cost_center_code = $7,
					    cost_center_name = $8, vendor_name_text = $9, memo = $10, updated_at = now()
					WHERE proj_id = $11 AND fiscal_year = $12`,
					projName, deptCode,
					workbook.Cell(row, idx.Col(colPrevIndex)),
					workbook.Cell(row, idx.Col(colContinuity)),
					workbook.Cell(row, idx.Col(colPrevStatus)),
					workbook.Cell(row, idx.Col(colGLAcct)),
					workbook.Cell(row, idx.Col(colCCCode)),
					workbook.Cell(row, idx.Col(colCCName)),
					workbook.Cell(row, idx.Col(colVendorName)),
					workbook.Cell(row, idx.Col(colProjMemo)),
					projID, fiscalYear)
				if err != nil {
					http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
					return
				}
				updatedProj++
			} else {
				_, err = tx.Exec(ctx, `
					INSERT INTO tb_project_master
					(proj_id, fiscal_year, proj_name, dept_code, prev_proj_id, continuity_status,
					 status_prev_year, gl_account, cost_center_code, cost_center_name,
					 vendor_name_text, memo, proj_status)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'PENDING')`,
					projID, fiscalYear, projName, deptCode,
					workbook.Cell(row, idx.Col(colPrevIndex)),
					workbook.Cell(row, idx.Col(colContinuity)),
					workbook.Cell(row, idx.Col(colPrevStatus)),
					workbook.Cell(row, idx.Col(colGLAcct)),
					workbook.Cell(row, idx.Col(colCCCode)),
					workbook.Cell(row, idx.Col(colCCName)),
					workbook.Cell(row, idx.Col(colVendorName)),
					workbook.Cell(row, idx.Col(colProjMemo)))
				if err != nil {
					http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
					return
				}
				insertedProj++
			}

			for _, col := range monthCols {
				yyyymm := strings.TrimSpace(headerRow[col])
				planAmt := parsePlanAmount(workbook.Cell(row, col))
				if planAmt <= 0 {
					continue
				}
				tag, err := tx.Exec(ctx,
					`UPDATE tb_monthly_data SET plan_amt = $1 WHERE proj_id = $2 AND yyyymm = $3`,
					planAmt, projID, yyyymm)
				if err != nil {
					http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
					return
				}
				if tag.RowsAffected() == 0 {
					_, err = tx.Exec(ctx,
						`INSERT INTO tb_monthly_data (proj_id, yyyymm, plan_amt, actual_amt, est_amt, confirmed_amt)
						 VALUES ($1, $2, $3, 0, 0, 0)`,
						projID, yyyymm, planAmt)
					if err != nil {
						http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
						return
					}
				}
				upsertedMonthly++
			}
		}

		if err := tx.Commit(ctx); err != nil {
			http.Error(w, constants.ErrTxCommitFailed+err.Error(), http.StatusInternalServerError)
			return
		}

		logger.Audit(fmt.Sprintf("[Projects] bulk upload %s: %d rows, %d new, %d updated, %d skipped",
			fileHeader.Filename, total, insertedProj, updatedProj, skipped))
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":          true,
			"message":          fmt.Sprintf("%d rows processed (new projects: %d)", total, insertedProj),
			"total":            total,
			"inserted_proj":    insertedProj,
			"updated_proj":     updatedProj,
			"upserted_monthly": upsertedMonthly,
			"skipped":          skipped,
		})
	})
}
