package sap

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"OpexSaas/api/constants"
	"OpexSaas/internal/config"
	"OpexSaas/internal/logger"
	"OpexSaas/internal/workbook"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Column labels as they appear in the SAP export workbook.
const (
	colSlipNo      = "전표 번호"
	colLineItem    = "개별 항목"
	colFiscalYear  = "회계연도"
	colPostingDate = "전기일"
	colGLAccount   = "G/L 계정"
	colGLDesc      = "G/L 계정과목명"
	colHeaderText  = "텍스트"
	colAmount      = "금액(현지 통화)"
	colCurrency    = "현지 통화"
	colVendorText  = "상계계정 명칭"
	colRefKey      = "참조 키(헤더) 1"
	colCostCenter  = "코스트 센터"
)

// deriveMonth turns a posting-date string ("2025-07-03", "2025.07.03") into
// YYYYMM. Dates missing or too short resolve to the fallback month instead
// of dropping the row; the second return value reports that case.
func deriveMonth(postingDate string) (string, bool) {
	if len(postingDate) < 7 {
		return config.FallbackMonth, true
	}
	cleaned := strings.NewReplacer("-", "", ".", "").Replace(postingDate)
	if len(cleaned) < 6 {
		return config.FallbackMonth, true
	}
	return cleaned[:6], false
}

// parseAmount reads a ledger amount, tolerating thousands separators.
// Unparseable values become zero rather than rejecting the row; the second
// return value reports the fallback.
func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, true
	}
	return d, false
}

// rawLineKey is the natural key of a staged ledger line. Two rows with the
// same key are the same accounting line regardless of which file carried them.
type rawLineKey struct {
	fiscalYear string
	slipNo     string
	lineItem   int
}

// parseLineItem reads the accounting line number, zero on failure.
func parseLineItem(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// UploadSapExcelHandler ingests a SAP ledger export into tb_sap_upload_raw.
// Rows without a slip number or amount cell are skipped outright. Each row
// is deduplicated on the natural key (fiscal_year, slip_no, line_item);
// already-imported lines count as skipped. The whole file commits as one
// transaction: any unhandled failure rolls the entire batch back.
func UploadSapExcelHandler(pool *pgxpool.Pool) http.Handler {
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

		idx := workbook.HeaderIndex(records[0])
		dataRows := records[1:]

		ctx := r.Context()
		tx, err := pool.Begin(ctx)
		if err != nil {
			http.Error(w, constants.ErrTxStartFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		defer tx.Rollback(ctx)

		total, inserted, skipped := 0, 0, 0
		fallbackMonths, fallbackAmounts := 0, 0
		seen := make(map[rawLineKey]struct{})

		for _, row := range dataRows {
			slipNo := workbook.Cell(row, idx.Col(colSlipNo))
			amountRaw := workbook.Cell(row, idx.Col(colAmount))
			if slipNo == "" || amountRaw == "" {
				continue
			}
			total++

			yyyymm, monthFellBack := deriveMonth(workbook.Cell(row, idx.Col(colPostingDate)))
			if monthFellBack {
				fallbackMonths++
			}
			amount, amountFellBack := parseAmount(amountRaw)
			if amountFellBack {
				fallbackAmounts++
			}
			lineItem := parseLineItem(workbook.Cell(row, idx.Col(colLineItem)))
			fiscalYear := workbook.Cell(row, idx.Col(colFiscalYear))

			key := rawLineKey{fiscalYear: fiscalYear, slipNo: slipNo, lineItem: lineItem}
			if _, dup := seen[key]; dup {
				skipped++
				continue
			}
			seen[key] = struct{}{}

			var exists bool
			err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM tb_sap_upload_raw
				  WHERE fiscal_year = $1 AND slip_no = $2 AND line_item = $3)`,
				fiscalYear, slipNo, lineItem).Scan(&exists)
			if err != nil {
				http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
				return
			}
			if exists {
				skipped++
				continue
			}

			currency := workbook.Cell(row, idx.Col(colCurrency))
			if currency == "" {
				currency = "KRW"
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO tb_sap_upload_raw
				 (yyyymm, fiscal_year, slip_no, line_item, gl_account, gl_desc, header_text,
				  amt_val, currency, vendor_text, ref_key, cost_center, mapping_status)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'UNMAPPED')`,
				yyyymm, fiscalYear, slipNo, lineItem,
				workbook.Cell(row, idx.Col(colGLAccount)),
				workbook.Cell(row, idx.Col(colGLDesc)),
				workbook.Cell(row, idx.Col(colHeaderText)),
				amount, currency,
				workbook.Cell(row, idx.Col(colVendorText)),
				workbook.Cell(row, idx.Col(colRefKey)),
				workbook.Cell(row, idx.Col(colCostCenter)))
			if err != nil {
				http.Error(w, "Failed to stage row: "+err.Error(), http.StatusInternalServerError)
				return
			}
			inserted++
		}

		if err := tx.Commit(ctx); err != nil {
			http.Error(w, constants.ErrTxCommitFailed+err.Error(), http.StatusInternalServerError)
			return
		}

		if fallbackMonths > 0 || fallbackAmounts > 0 {
			logger.Warn(fmt.Sprintf("[SAP Upload] %s: %d rows fell back to month %s, %d rows fell back to zero amount",
				fileHeader.Filename, fallbackMonths, config.FallbackMonth, fallbackAmounts))
		}
		logger.Audit(fmt.Sprintf("[SAP Upload] %s: %s", fileHeader.Filename, constants.FmtUploadSummary(total, inserted, skipped)))

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":              true,
			"message":              constants.FmtUploadSummary(total, inserted, skipped),
			"total":                total,
			"inserted":             inserted,
			"skipped":              skipped,
			"fallback_month_rows":  fallbackMonths,
			"fallback_amount_rows": fallbackAmounts,
		})
	})
}
