package sap

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"OpexSaas/api/constants"
	"OpexSaas/internal/jobs"
	"OpexSaas/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunAutoMappingHandler triggers one pass of automatic matching over all
// UNMAPPED staged lines, then refreshes monthly actuals. Safe to re-invoke:
// both steps are idempotent.
func RunAutoMappingHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}

		var body struct {
			BatchSize int `json:"batch_size,omitempty"`
		}
		// Body is optional for this trigger.
		_ = json.NewDecoder(r.Body).Decode(&body)

		mapped, err := jobs.ProcessUnmappedLines(pool, body.BatchSize)
		if err != nil {
			w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   "Auto-mapping failed: " + err.Error(),
			})
			return
		}
		if mapped > 0 {
			if err := jobs.SyncMonthlyActuals(r.Context(), pool); err != nil {
				w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"error":   "Actuals sync failed: " + err.Error(),
				})
				return
			}
		}

		logger.Audit(fmt.Sprintf("[SAP Mapping] operator run mapped %d lines", mapped))
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"mapped":  mapped,
			"message": fmt.Sprintf("%d lines auto-mapped", mapped),
		})
	})
}

// GetUnmappedLinesHandler lists staged lines still awaiting a project,
// ordered by slip number.
func GetUnmappedLinesHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}

		rows, err := pool.Query(r.Context(), `
			SELECT raw_id, yyyymm, fiscal_year, slip_no, line_item,
			       COALESCE(gl_account, ''), COALESCE(gl_desc, ''),
			       COALESCE(header_text, ''), COALESCE(amt_val, 0)::text,
			       COALESCE(currency, ''), COALESCE(vendor_text, ''),
			       COALESCE(cost_center, ''), upload_dt
			FROM tb_sap_upload_raw
			WHERE mapping_status = 'UNMAPPED'
			ORDER BY slip_no`)
		if err != nil {
			http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type Line struct {
			RawID      int64  `json:"raw_id"`
			YYYYMM     string `json:"yyyymm"`
			FiscalYear string `json:"fiscal_year"`
			SlipNo     string `json:"slip_no"`
			LineItem   int    `json:"line_item"`
			GLAccount  string `json:"gl_account"`
			GLDesc     string `json:"gl_desc"`
			HeaderText string `json:"header_text"`
			AmtVal     string `json:"amt_val"`
			Currency   string `json:"currency"`
			VendorText string `json:"vendor_text"`
			CostCenter string `json:"cost_center"`
			UploadDt   string `json:"upload_dt"`
		}

		lines := make([]Line, 0)
		for rows.Next() {
			var ln Line
			var uploadDt time.Time
			if err := rows.Scan(
				&ln.RawID, &ln.YYYYMM, &ln.FiscalYear, &ln.SlipNo, &ln.LineItem,
				&ln.GLAccount, &ln.GLDesc, &ln.HeaderText, &ln.AmtVal,
				&ln.Currency, &ln.VendorText, &ln.CostCenter, &uploadDt,
			); err != nil {
				continue
			}
			ln.UploadDt = uploadDt.Format(constants.DateTimeFormat)
			lines = append(lines, ln)
		}
		if rows.Err() != nil {
			http.Error(w, constants.ErrQueryFailed+rows.Err().Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    lines,
			"count":   len(lines),
		})
	})
}

// ManualMapHandler force-maps the selected staged lines to one project,
// overriding any automatic result, then refreshes monthly actuals.
func ManualMapHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			RawIDs       []int64 `json:"raw_ids"`
			TargetProjID string  `json:"target_proj_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, constants.ErrInvalidJSONShort+": "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(body.RawIDs) == 0 {
			http.Error(w, constants.ErrNoRawSelected, http.StatusBadRequest)
			return
		}
		if body.TargetProjID == "" {
			http.Error(w, constants.ErrTargetProjEmpty, http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM tb_project_master WHERE proj_id = $1)`,
			body.TargetProjID).Scan(&exists); err != nil {
			http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		if !exists {
			http.Error(w, constants.ErrProjectNotFound, http.StatusNotFound)
			return
		}

		tag, err := pool.Exec(ctx,
			`UPDATE tb_sap_upload_raw SET mapped_proj_id = $1, mapping_status = 'MAPPED' WHERE raw_id = ANY($2)`,
			body.TargetProjID, body.RawIDs)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}

		if err := jobs.SyncMonthlyActuals(ctx, pool); err != nil {
			w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   "Actuals sync failed: " + err.Error(),
			})
			return
		}

		logger.Audit(fmt.Sprintf("[SAP Mapping] %d lines manually mapped to %s", tag.RowsAffected(), body.TargetProjID))
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"mapped":  tag.RowsAffected(),
			"message": "Manual mapping applied",
		})
	})
}
