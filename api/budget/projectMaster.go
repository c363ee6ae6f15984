package budget

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"OpexSaas/api/closing"
	"OpexSaas/api/constants"
	"OpexSaas/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// nextProjectID computes the next sequential project identifier for a
// department. Identifiers run <dept>-<seq3>: with A-007 as the highest
// existing id the next is A-008; a department with no projects starts at
// <dept>-001. A malformed trailing sequence restarts numbering at 1.
func nextProjectID(deptCode, lastID string) string {
	num := 1
	if lastID != "" {
		parts := strings.Split(lastID, "-")
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			num = n + 1
		}
	}
	return fmt.Sprintf("%s-%03d", deptCode, num)
}

// ProjectCollectionHandler serves the project master collection: GET lists
// projects newest first, POST registers a single project with a freshly
// sequenced id and its twelve monthly plan rows.
func ProjectCollectionHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listProjects(pool, w, r)
		case http.MethodPost:
			createProject(pool, w, r)
		default:
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
		}
	})
}

func listProjects(pool *pgxpool.Pool, w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	rows, err := pool.Query(r.Context(), `
		SELECT proj_id, proj_name, fiscal_year, dept_code,
		       COALESCE(vendor_id, ''), COALESCE(vendor_name_text, ''),
		       COALESCE(cost_center_code, ''), COALESCE(cost_center_name, ''),
		       COALESCE(gl_account, ''), COALESCE(proj_status, ''),
		       COALESCE(memo, ''), created_at
		FROM tb_project_master
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	type Project struct {
		ProjID         string `json:"proj_id"`
		ProjName       string `json:"proj_name"`
		FiscalYear     string `json:"fiscal_year"`
		DeptCode       string `json:"dept_code"`
		VendorID       string `json:"vendor_id"`
		VendorNameText string `json:"vendor_name_text"`
		CostCenterCode string `json:"cost_center_code"`
		CostCenterName string `json:"cost_center_name"`
		GLAccount      string `json:"gl_account"`
		ProjStatus     string `json:"proj_status"`
		Memo           string `json:"memo"`
		CreatedAt      string `json:"created_at"`
	}

	projects := make([]Project, 0)
	for rows.Next() {
		var p Project
		var createdAt time.Time
		if err := rows.Scan(
			&p.ProjID, &p.ProjName, &p.FiscalYear, &p.DeptCode,
			&p.VendorID, &p.VendorNameText, &p.CostCenterCode, &p.CostCenterName,
			&p.GLAccount, &p.ProjStatus, &p.Memo, &createdAt,
		); err != nil {
			continue
		}
		p.CreatedAt = createdAt.Format(constants.DateTimeFormat)
		projects = append(projects, p)
	}
	if rows.Err() != nil {
		http.Error(w, constants.ErrQueryFailed+rows.Err().Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    projects,
		"count":   len(projects),
	})
}

func createProject(pool *pgxpool.Pool, w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjName       string  `json:"proj_name"`
		DeptCode       string  `json:"dept_code"`
		FiscalYear     string  `json:"fiscal_year"`
		VendorID       string  `json:"vendor_id,omitempty"`
		Memo           string  `json:"memo,omitempty"`
		MonthlyAmounts []int64 `json:"monthly_amounts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
		body.ProjName == "" || body.DeptCode == "" || body.FiscalYear == "" {
		http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := pool.Begin(ctx)
	if err != nil {
		http.Error(w, constants.ErrTxStartFailed+err.Error(), http.StatusInternalServerError)
		return
	}
	defer tx.Rollback(ctx)

	var lastID string
	err = tx.QueryRow(ctx,
		`SELECT proj_id FROM tb_project_master WHERE dept_code = $1 ORDER BY proj_id DESC LIMIT 1`,
		body.DeptCode).Scan(&lastID)
	if err != nil && err != pgx.ErrNoRows {
		http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
		return
	}
	newID := nextProjectID(body.DeptCode, lastID)

	var vendorID interface{}
	if body.VendorID != "" {
		vendorID = body.VendorID
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO tb_project_master (proj_id, proj_name, fiscal_year, dept_code, vendor_id, memo, proj_status)
		 VALUES ($1, $2, $3, $4, $5, $6, 'PENDING')`,
		newID, body.ProjName, body.FiscalYear, body.DeptCode, vendorID, body.Memo)
	if err != nil {
		http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
		return
	}

	for i, amt := range body.MonthlyAmounts {
		if i >= 12 {
			break
		}
		monthStr := fmt.Sprintf("%s%02d", body.FiscalYear, i+1)
		_, err = tx.Exec(ctx,
			`INSERT INTO tb_monthly_data (proj_id, yyyymm, plan_amt, actual_amt, est_amt, confirmed_amt)
			 VALUES ($1, $2, $3, 0, 0, 0)`,
			newID, monthStr, amt)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, constants.ErrTxCommitFailed+err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Audit("[Projects] created " + newID + " (" + body.ProjName + ")")
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"proj_id":     newID,
			"proj_name":   body.ProjName,
			"dept_code":   body.DeptCode,
			"fiscal_year": body.FiscalYear,
		},
	})
}

// DeleteProjectHandler removes a project and its monthly rows. The removal
// is refused while any of the project's monthly rows sits in a CLOSED month.
func DeleteProjectHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		projID := strings.TrimPrefix(r.URL.Path, "/budget/projects/")
		if projID == "" || strings.Contains(projID, "/") {
			http.Error(w, constants.ErrProjectNotFound, http.StatusNotFound)
			return
		}

		ctx := r.Context()
		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM tb_project_master WHERE proj_id = $1)`,
			projID).Scan(&exists); err != nil {
			http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		if !exists {
			http.Error(w, constants.ErrProjectNotFound, http.StatusNotFound)
			return
		}

		var hasClosed bool
		err := pool.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM tb_monthly_data d
				JOIN tb_monthly_close c ON c.yyyymm = d.yyyymm AND c.close_status = $1
				WHERE d.proj_id = $2)`,
			closing.StatusClosed, projID).Scan(&hasClosed)
		if err != nil {
			http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		if hasClosed {
			http.Error(w, constants.ErrMonthClosed, http.StatusForbidden)
			return
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			http.Error(w, constants.ErrTxStartFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, `DELETE FROM tb_monthly_data WHERE proj_id = $1`, projID); err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := tx.Exec(ctx, `DELETE FROM tb_project_master WHERE proj_id = $1`, projID); err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(ctx); err != nil {
			http.Error(w, constants.ErrTxCommitFailed+err.Error(), http.StatusInternalServerError)
			return
		}

		logger.Audit("[Projects] deleted " + projID)
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": projID + " deleted",
		})
	})
}
