package master

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"OpexSaas/api/constants"
)

type CostCenterRequest struct {
	CcCode   string `json:"cc_code"`
	CcName   string `json:"cc_name"`
	IsActive string `json:"is_active"`
}

// CostCenterCollectionHandler lists active cost centers and registers new ones.
func CostCenterCollectionHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		switch r.Method {
		case http.MethodGet:
			rows, err := db.Query(`
				SELECT cc_code, cc_name, is_active
				FROM tb_cost_center_master
				WHERE is_active = 'Y'
				ORDER BY cc_code`)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			defer rows.Close()
			centers := []map[string]interface{}{}
			for rows.Next() {
				var code, name, active string
				if err := rows.Scan(&code, &name, &active); err != nil {
					continue
				}
				centers = append(centers, map[string]interface{}{
					"cc_code":   code,
					"cc_name":   name,
					"is_active": active,
				})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": centers})
		case http.MethodPost:
			var req CostCenterRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrInvalidJSON})
				return
			}
			if strings.TrimSpace(req.CcCode) == "" || strings.TrimSpace(req.CcName) == "" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "cc_code and cc_name are required"})
				return
			}
			var exists bool
			if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM tb_cost_center_master WHERE cc_code = $1)`, req.CcCode).Scan(&exists); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			if exists {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrCostCenterDuplicate})
				return
			}
			if req.IsActive == "" {
				req.IsActive = "Y"
			}
			_, err := db.Exec(`
				INSERT INTO tb_cost_center_master (cc_code, cc_name, is_active, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())`,
				req.CcCode, req.CcName, req.IsActive)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"cc_code":   req.CcCode,
					"cc_name":   req.CcName,
					"is_active": req.IsActive,
				},
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrMethodNotAllowed})
		}
	}
}
