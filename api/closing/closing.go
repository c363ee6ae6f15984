package closing

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"OpexSaas/api/constants"
	"OpexSaas/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func StartClosingService(pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.Handle("/closing/status/", GetClosingStatusHandler(pool))
	mux.Handle("/closing/update", UpdateClosingStatusHandler(pool))
	log.Println("Closing Service started on :5143")
	err := http.ListenAndServe(":5143", mux)
	if err != nil {
		log.Fatalf("Closing Service failed: %v", err)
	}
}

// closeStateFromRow folds a tb_monthly_close lookup result into a state.
// No row means the month is OPEN; any other error is a real failure and
// must not be mistaken for an open month.
func closeStateFromRow(status string, err error) (state string, found bool, lookupErr error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return StatusOpen, false, nil
	}
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}

// GetClosingStatusHandler reports the closing state of one month.
// A month with no tb_monthly_close row is OPEN.
func GetClosingStatusHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		yyyymm := strings.TrimPrefix(r.URL.Path, "/closing/status/")
		if !ValidMonth(yyyymm) {
			http.Error(w, constants.ErrInvalidMonth, http.StatusBadRequest)
			return
		}

		var status string
		var closedAt time.Time
		err := pool.QueryRow(r.Context(),
			`SELECT close_status, closed_at FROM tb_monthly_close WHERE yyyymm = $1`,
			yyyymm).Scan(&status, &closedAt)

		state, found, err := closeStateFromRow(status, err)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}

		resp := map[string]interface{}{
			"yyyymm":    yyyymm,
			"status":    state,
			"closed_at": nil,
		}
		if found {
			resp["closed_at"] = closedAt.Format(constants.DateTimeFormat)
		}

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(resp)
	})
}

// UpdateClosingStatusHandler closes or reopens a month. Transitions are
// unconditional; no consistency check of the underlying data is made.
// Setting OPEN for a month that has no row is a success no-op.
func UpdateClosingStatusHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			YYYYMM string `json:"yyyymm"`
			Status string `json:"status"`
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.YYYYMM == "" {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		if !ValidMonth(body.YYYYMM) {
			http.Error(w, constants.ErrInvalidMonth, http.StatusBadRequest)
			return
		}
		if body.Status != StatusOpen && body.Status != StatusClosed {
			http.Error(w, constants.ErrInvalidCloseState, http.StatusBadRequest)
			return
		}
		if body.UserID == "" {
			body.UserID = "admin"
		}

		ctx := r.Context()
		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM tb_monthly_close WHERE yyyymm = $1)`,
			body.YYYYMM).Scan(&exists); err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		if !exists && body.Status == StatusOpen {
			// OPEN is the implicit default; nothing to persist.
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"message": body.YYYYMM + " is already OPEN",
			})
			return
		}

		if exists {
			_, err := pool.Exec(ctx,
				`UPDATE tb_monthly_close SET close_status = $1, closed_by = $2, closed_at = now() WHERE yyyymm = $3`,
				body.Status, body.UserID, body.YYYYMM)
			if err != nil {
				http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
				return
			}
		} else {
			_, err := pool.Exec(ctx,
				`INSERT INTO tb_monthly_close (yyyymm, close_status, closed_by, closed_at) VALUES ($1, $2, $3, now())`,
				body.YYYYMM, body.Status, body.UserID)
			if err != nil {
				http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
				return
			}
		}

		logger.Audit("[Closing] " + body.YYYYMM + " set to " + body.Status + " by " + body.UserID)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": body.YYYYMM + " has been set to " + body.Status,
		})
	})
}
