package budget

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"OpexSaas/api/closing"
	"OpexSaas/api/constants"
	"OpexSaas/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GetMonthlyStatusHandler returns every project outer-joined with its
// monthly record for the requested month; projects without a record show
// zero amounts.
func GetMonthlyStatusHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		yyyymm := strings.TrimPrefix(r.URL.Path, "/budget/execution/")
		if !closing.ValidMonth(yyyymm) {
			http.Error(w, constants.ErrInvalidMonth, http.StatusBadRequest)
			return
		}

		rows, err := pool.Query(r.Context(), `
			SELECT p.proj_id, p.proj_name, p.dept_code, COALESCE(p.vendor_name_text, ''),
			       COALESCE(d.plan_amt, 0)::bigint,
			       COALESCE(d.actual_amt, 0)::bigint,
			       COALESCE(d.est_amt, 0)::bigint,
			       COALESCE(d.is_actual_finalized, 'N')
			FROM tb_project_master p
			LEFT JOIN tb_monthly_data d ON d.proj_id = p.proj_id AND d.yyyymm = $1
			ORDER BY p.proj_id`, yyyymm)
		if err != nil {
			http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type MonthlyStatus struct {
			ProjID     string `json:"proj_id"`
			ProjName   string `json:"proj_name"`
			DeptCode   string `json:"dept_code"`
			VendorName string `json:"vendor_name"`
			PlanAmt    int64  `json:"plan_amt"`
			ActualAmt  int64  `json:"actual_amt"`
			EstAmt     int64  `json:"est_amt"`
			Finalized  string `json:"is_actual_finalized"`
		}

		statuses := make([]MonthlyStatus, 0)
		for rows.Next() {
			var s MonthlyStatus
			if err := rows.Scan(&s.ProjID, &s.ProjName, &s.DeptCode, &s.VendorName,
				&s.PlanAmt, &s.ActualAmt, &s.EstAmt, &s.Finalized); err != nil {
				continue
			}
			statuses = append(statuses, s)
		}
		if rows.Err() != nil {
			http.Error(w, constants.ErrQueryFailed+rows.Err().Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"yyyymm":  yyyymm,
			"data":    statuses,
		})
	})
}

// UpdateForecastHandler sets est_amt for one (project, month) cell. The
// month must be OPEN; the monthly row is created with zero plan/actual
// when it does not exist yet.
func UpdateForecastHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			ProjID string `json:"proj_id"`
			YYYYMM string `json:"yyyymm"`
			EstAmt int64  `json:"est_amt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProjID == "" {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		if !closing.ValidMonth(body.YYYYMM) {
			http.Error(w, constants.ErrInvalidMonth, http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		locked, err := closing.IsMonthClosed(ctx, pool, body.YYYYMM)
		if err != nil {
			http.Error(w, constants.ErrClosingCheck, http.StatusInternalServerError)
			return
		}
		if locked {
			http.Error(w, constants.ErrMonthClosed, http.StatusForbidden)
			return
		}

		tag, err := pool.Exec(ctx,
			`UPDATE tb_monthly_data SET est_amt = $1 WHERE proj_id = $2 AND yyyymm = $3`,
			body.EstAmt, body.ProjID, body.YYYYMM)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		if tag.RowsAffected() == 0 {
			_, err = pool.Exec(ctx,
				`INSERT INTO tb_monthly_data (proj_id, yyyymm, plan_amt, actual_amt, est_amt, confirmed_amt)
				 VALUES ($1, $2, 0, 0, $3, 0)`,
				body.ProjID, body.YYYYMM, body.EstAmt)
			if err != nil {
				http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
				return
			}
		}

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
}

// FinalizeMonthHandler bulk-marks every monthly record of one month as
// finally approved. Finalizing a CLOSED month is refused: the closing gate
// applies to this path like to every other monthly-record mutation.
func FinalizeMonthHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			YYYYMM string `json:"yyyymm"`
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		if !closing.ValidMonth(body.YYYYMM) {
			http.Error(w, constants.ErrInvalidMonth, http.StatusBadRequest)
			return
		}
		if body.UserID == "" {
			body.UserID = "admin"
		}

		ctx := r.Context()
		locked, err := closing.IsMonthClosed(ctx, pool, body.YYYYMM)
		if err != nil {
			http.Error(w, constants.ErrClosingCheck, http.StatusInternalServerError)
			return
		}
		if locked {
			http.Error(w, constants.ErrMonthClosed, http.StatusForbidden)
			return
		}

		tag, err := pool.Exec(ctx,
			`UPDATE tb_monthly_data SET is_actual_finalized = 'Y' WHERE yyyymm = $1`,
			body.YYYYMM)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}

		logger.Audit(fmt.Sprintf("[Execution] %s finalized by %s (%d records)", body.YYYYMM, body.UserID, tag.RowsAffected()))
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"message":   body.YYYYMM + " actuals finalized",
			"finalized": tag.RowsAffected(),
		})
	})
}
