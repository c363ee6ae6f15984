package budget

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"OpexSaas/api/constants"
	"OpexSaas/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BudgetVsActualHandler aggregates the year's monthly rows into one line
// per department/project: annual plan, actual, remaining budget and burn
// rate (one decimal place).
func BudgetVsActualHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		year := r.URL.Query().Get("year")
		if year == "" {
			year = time.Now().Format("2006")
		}
		if len(year) != 4 {
			http.Error(w, "year must be a four digit year", http.StatusBadRequest)
			return
		}

		rows, err := pool.Query(r.Context(), `
			SELECT p.dept_code, p.proj_id, p.proj_name,
			       COALESCE(SUM(d.plan_amt), 0)::bigint,
			       COALESCE(SUM(d.actual_amt), 0)::bigint,
			       COALESCE(SUM(d.est_amt), 0)::bigint
			FROM tb_project_master p
			JOIN tb_monthly_data d ON d.proj_id = p.proj_id
			WHERE d.yyyymm LIKE $1
			GROUP BY p.dept_code, p.proj_id, p.proj_name
			ORDER BY p.dept_code, p.proj_id`, year+"%")
		if err != nil {
			http.Error(w, constants.ErrQueryFailed+err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type ReportLine struct {
			DeptCode  string  `json:"dept_code"`
			ProjID    string  `json:"proj_id"`
			ProjName  string  `json:"proj_name"`
			PlanAmt   int64   `json:"plan_amt"`
			ActualAmt int64   `json:"actual_amt"`
			EstAmt    int64   `json:"est_amt"`
			DiffAmt   int64   `json:"diff_amt"`
			BurnRate  float64 `json:"burn_rate"`
		}

		data := make([]ReportLine, 0)
		for rows.Next() {
			var ln ReportLine
			if err := rows.Scan(&ln.DeptCode, &ln.ProjID, &ln.ProjName,
				&ln.PlanAmt, &ln.ActualAmt, &ln.EstAmt); err != nil {
				continue
			}
			ln.DiffAmt = ln.PlanAmt - ln.ActualAmt
			if ln.PlanAmt > 0 {
				ln.BurnRate = math.Round(float64(ln.ActualAmt)/float64(ln.PlanAmt)*1000) / 10
			}
			data = append(data, ln)
		}
		if rows.Err() != nil {
			http.Error(w, constants.ErrQueryFailed+rows.Err().Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"year":    year,
			"data":    data,
		})
	})
}

// AvailableYearsHandler lists the fiscal years the planning screens may
// address: the management floor year through two years out.
func AvailableYearsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		maxYear := time.Now().Year() + config.PlanningHorizonYears
		years := make([]int, 0, maxYear-config.MinManagementYear+1)
		for y := config.MinManagementYear; y <= maxYear; y++ {
			years = append(years, y)
		}
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    years,
		})
	})
}
