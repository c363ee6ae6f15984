package master

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"OpexSaas/api/constants"

	"github.com/google/uuid"
)

type ServiceRequest struct {
	SvcName       string `json:"svc_name"`
	ContractType  string `json:"contract_type"`
	IsResident    string `json:"is_resident"`
	OperatorNames string `json:"operator_names"`
	IsActive      string `json:"is_active"`
}

// ServiceCollectionHandler lists managed IT services and registers new ones.
func ServiceCollectionHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		switch r.Method {
		case http.MethodGet:
			skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			if limit <= 0 {
				limit = 100
			}
			rows, err := db.Query(`
				SELECT svc_id, svc_name, COALESCE(contract_type, ''),
				       COALESCE(is_resident, 'N'), COALESCE(operator_names, ''),
				       is_active, created_at
				FROM tb_service_master
				ORDER BY created_at DESC
				OFFSET $1 LIMIT $2`, skip, limit)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			defer rows.Close()
			services := []map[string]interface{}{}
			for rows.Next() {
				var id, name, contractType, isResident, operators, active, createdAt string
				if err := rows.Scan(&id, &name, &contractType, &isResident, &operators, &active, &createdAt); err != nil {
					continue
				}
				services = append(services, map[string]interface{}{
					"svc_id":         id,
					"svc_name":       name,
					"contract_type":  contractType,
					"is_resident":    isResident,
					"operator_names": operators,
					"is_active":      active,
					"created_at":     createdAt,
				})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": services})
		case http.MethodPost:
			var req ServiceRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrInvalidJSON})
				return
			}
			if strings.TrimSpace(req.SvcName) == "" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "svc_name is required"})
				return
			}
			if req.IsActive == "" {
				req.IsActive = "Y"
			}
			if req.IsResident == "" {
				req.IsResident = "N"
			}
			svcID := "SVC-" + strings.ToUpper(uuid.New().String()[:4])
			_, err := db.Exec(`
				INSERT INTO tb_service_master (svc_id, svc_name, contract_type, is_resident, operator_names, is_active, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, now())`,
				svcID, req.SvcName, req.ContractType, req.IsResident, req.OperatorNames, req.IsActive)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"svc_id":         svcID,
					"svc_name":       req.SvcName,
					"contract_type":  req.ContractType,
					"is_resident":    req.IsResident,
					"operator_names": req.OperatorNames,
					"is_active":      req.IsActive,
				},
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrMethodNotAllowed})
		}
	}
}
