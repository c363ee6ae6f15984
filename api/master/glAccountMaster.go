package master

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"OpexSaas/api/constants"
)

type GLAccountRequest struct {
	GLAccountCode string `json:"gl_account_code"`
	GLAccountName string `json:"gl_account_name"`
	AccountType   string `json:"account_type"`
	IsActive      string `json:"is_active"`
}

// GLAccountCollectionHandler lists active G/L accounts and registers new ones.
func GLAccountCollectionHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		switch r.Method {
		case http.MethodGet:
			rows, err := db.Query(`
				SELECT gl_account_code, gl_account_name, COALESCE(account_type, ''), is_active
				FROM tb_gl_account_master
				WHERE is_active = 'Y'
				ORDER BY gl_account_code`)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			defer rows.Close()
			accounts := []map[string]interface{}{}
			for rows.Next() {
				var code, name, accountType, active string
				if err := rows.Scan(&code, &name, &accountType, &active); err != nil {
					continue
				}
				accounts = append(accounts, map[string]interface{}{
					"gl_account_code": code,
					"gl_account_name": name,
					"account_type":    accountType,
					"is_active":       active,
				})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": accounts})
		case http.MethodPost:
			var req GLAccountRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrInvalidJSON})
				return
			}
			if strings.TrimSpace(req.GLAccountCode) == "" || strings.TrimSpace(req.GLAccountName) == "" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "gl_account_code and gl_account_name are required"})
				return
			}
			var exists bool
			if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM tb_gl_account_master WHERE gl_account_code = $1)`, req.GLAccountCode).Scan(&exists); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			if exists {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrGLAccountDuplicate})
				return
			}
			if req.IsActive == "" {
				req.IsActive = "Y"
			}
			_, err := db.Exec(`
				INSERT INTO tb_gl_account_master (gl_account_code, gl_account_name, account_type, is_active, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())`,
				req.GLAccountCode, req.GLAccountName, req.AccountType, req.IsActive)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"gl_account_code": req.GLAccountCode,
					"gl_account_name": req.GLAccountName,
					"account_type":    req.AccountType,
					"is_active":       req.IsActive,
				},
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrMethodNotAllowed})
		}
	}
}
