package budget

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"OpexSaas/api/closing"
	"OpexSaas/api/constants"
	"OpexSaas/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// applyTransfer computes the post-transfer plan balances. ok is false when
// the amount is not positive or the source plan cannot cover it; the
// balances come back unchanged in that case. On success the sum of the two
// balances is preserved.
func applyTransfer(sourcePlan, targetPlan, amount int64) (newSource, newTarget int64, ok bool) {
	if amount <= 0 || sourcePlan < amount {
		return sourcePlan, targetPlan, false
	}
	return sourcePlan - amount, targetPlan + amount, true
}

// ExecuteTransferHandler moves planned budget from one project to another
// within a single month. Debit, credit and the audit log row commit as one
// transaction; both monthly rows are locked FOR UPDATE so concurrent
// transfers against the same balance serialize instead of double-spending it.
func ExecuteTransferHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			FromProjID     string `json:"from_proj_id"`
			ToProjID       string `json:"to_proj_id"`
			TransferAmount int64  `json:"transfer_amount"`
			TransferYYYYMM string `json:"transfer_yyyymm"`
			Reason         string `json:"reason"`
			TransferredBy  string `json:"transferred_by"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
			body.FromProjID == "" || body.ToProjID == "" {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		if body.FromProjID == body.ToProjID {
			http.Error(w, constants.ErrSameProject, http.StatusBadRequest)
			return
		}
		if body.TransferAmount <= 0 {
			http.Error(w, constants.ErrInvalidAmount, http.StatusBadRequest)
			return
		}
		if !closing.ValidMonth(body.TransferYYYYMM) {
			http.Error(w, constants.ErrInvalidMonth, http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		locked, err := closing.IsMonthClosed(ctx, pool, body.TransferYYYYMM)
		if err != nil {
			http.Error(w, constants.ErrClosingCheck, http.StatusInternalServerError)
			return
		}
		if locked {
			http.Error(w, constants.ErrMonthClosed, http.StatusForbidden)
			return
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			http.Error(w, constants.ErrTxStartFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		defer tx.Rollback(ctx)

		// The balance check only considers planned budget, not actual spend.
		var sourcePlan int64
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(plan_amt, 0)::bigint FROM tb_monthly_data
			 WHERE proj_id = $1 AND yyyymm = $2 FOR UPDATE`,
			body.FromProjID, body.TransferYYYYMM).Scan(&sourcePlan)
		if err == pgx.ErrNoRows {
			http.Error(w, constants.ErrInsufficientBalance, http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		var targetPlan int64
		targetExists := true
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(plan_amt, 0)::bigint FROM tb_monthly_data
			 WHERE proj_id = $1 AND yyyymm = $2 FOR UPDATE`,
			body.ToProjID, body.TransferYYYYMM).Scan(&targetPlan)
		if err == pgx.ErrNoRows {
			targetExists = false
			targetPlan = 0
		} else if err != nil {
			http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
			return
		}

		newSource, newTarget, ok := applyTransfer(sourcePlan, targetPlan, body.TransferAmount)
		if !ok {
			http.Error(w, constants.ErrInsufficientBalance, http.StatusBadRequest)
			return
		}

		_, err = tx.Exec(ctx,
			`UPDATE tb_monthly_data SET plan_amt = $1 WHERE proj_id = $2 AND yyyymm = $3`,
			newSource, body.FromProjID, body.TransferYYYYMM)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}

		if targetExists {
			_, err = tx.Exec(ctx,
				`UPDATE tb_monthly_data SET plan_amt = $1 WHERE proj_id = $2 AND yyyymm = $3`,
				newTarget, body.ToProjID, body.TransferYYYYMM)
		} else {
			_, err = tx.Exec(ctx,
				`INSERT INTO tb_monthly_data (proj_id, yyyymm, plan_amt, actual_amt, est_amt, confirmed_amt)
				 VALUES ($1, $2, $3, 0, 0, 0)`,
				body.ToProjID, body.TransferYYYYMM, newTarget)
		}
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}

		var transferID int64
		var transferredAt time.Time
		err = tx.QueryRow(ctx,
			`INSERT INTO tb_budget_transfer
			 (from_proj_id, to_proj_id, transfer_amount, transfer_yyyymm, reason, status, transferred_by)
			 VALUES ($1, $2, $3, $4, $5, 'APPLIED', $6)
			 RETURNING transfer_id, transferred_at`,
			body.FromProjID, body.ToProjID, body.TransferAmount,
			body.TransferYYYYMM, body.Reason, body.TransferredBy).Scan(&transferID, &transferredAt)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}

		if err := tx.Commit(ctx); err != nil {
			http.Error(w, constants.ErrTxCommitFailed+err.Error(), http.StatusInternalServerError)
			return
		}

		logger.Audit(fmt.Sprintf("[Transfer] %d from %s to %s for %s by %s",
			body.TransferAmount, body.FromProjID, body.ToProjID, body.TransferYYYYMM, body.TransferredBy))
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"transfer_id":     transferID,
				"from_proj_id":    body.FromProjID,
				"to_proj_id":      body.ToProjID,
				"transfer_amount": body.TransferAmount,
				"transfer_yyyymm": body.TransferYYYYMM,
				"reason":          body.Reason,
				"status":          "APPLIED",
				"transferred_by":  body.TransferredBy,
				"transferred_at":  transferredAt.Format(constants.DateTimeFormat),
			},
		})
	})
}

// GetTransferLogHandler lists the append-only transfer history, newest
// first. Entries are immutable once written.
func GetTransferLogHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}

		rows, err := pool.Query(r.Context(), `
			SELECT transfer_id, from_proj_id, to_proj_id, transfer_amount::bigint,
			       transfer_yyyymm, COALESCE(reason, ''), status,
			       COALESCE(transferred_by, ''), transferred_at
			FROM tb_budget_transfer
			ORDER BY transferred_at DESC, transfer_id DESC`)
		if err != nil {
			http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type TransferLog struct {
			TransferID     int64  `json:"transfer_id"`
			FromProjID     string `json:"from_proj_id"`
			ToProjID       string `json:"to_proj_id"`
			TransferAmount int64  `json:"transfer_amount"`
			TransferYYYYMM string `json:"transfer_yyyymm"`
			Reason         string `json:"reason"`
			Status         string `json:"status"`
			TransferredBy  string `json:"transferred_by"`
			TransferredAt  string `json:"transferred_at"`
		}

		logs := make([]TransferLog, 0)
		for rows.Next() {
			var t TransferLog
			var at time.Time
			if err := rows.Scan(&t.TransferID, &t.FromProjID, &t.ToProjID, &t.TransferAmount,
				&t.TransferYYYYMM, &t.Reason, &t.Status, &t.TransferredBy, &at); err != nil {
				continue
			}
			t.TransferredAt = at.Format(constants.DateTimeFormat)
			logs = append(logs, t)
		}
		if rows.Err() != nil {
			http.Error(w, constants.ErrQueryFailed+rows.Err().Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    logs,
			"count":   len(logs),
		})
	})
}
