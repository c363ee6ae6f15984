package master

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"OpexSaas/api/constants"
)

type BudgetCodeCreateRequest struct {
	Name         string  `json:"name"`
	CodeType     string  `json:"code_type"`
	ParentCodeID *string `json:"parent_code_id"`
	IsActive     *bool   `json:"is_active"`
}

type BudgetCodeUpdateRequest struct {
	Name         *string `json:"name"`
	IsActive     *bool   `json:"is_active"`
	ParentCodeID *string `json:"parent_code_id"`
}

// nextBudgetCodeID derives the sequential id for a code type from the highest
// existing id, e.g. lastID "BUDGET_L1_005" yields "BUDGET_L1_006". An empty or
// malformed lastID restarts the sequence at 001.
func nextBudgetCodeID(codeType, lastID string) string {
	prefix := strings.ToUpper(codeType)
	next := 1
	if lastID != "" {
		parts := strings.Split(lastID, "_")
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s_%03d", prefix, next)
}

// BudgetCodeCollectionHandler serves the budget classification code tree:
// list (optionally filtered by code_type, ordered by sort_order) and create
// with automatic per-type id sequencing.
func BudgetCodeCollectionHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		switch r.Method {
		case http.MethodGet:
			codeType := r.URL.Query().Get("code_type")
			query := `
				SELECT code_id, code_name, COALESCE(parent_code_id, ''), code_type, sort_order, is_active
				FROM tb_budget_code_master
				WHERE is_active = 'Y'`
			args := []interface{}{}
			if codeType != "" {
				query += ` AND code_type = $1`
				args = append(args, codeType)
			}
			query += ` ORDER BY sort_order`
			rows, err := db.Query(query, args...)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			defer rows.Close()
			codes := []map[string]interface{}{}
			for rows.Next() {
				var id, name, parent, cType, active string
				var sortOrder int
				if err := rows.Scan(&id, &name, &parent, &cType, &sortOrder, &active); err != nil {
					continue
				}
				codes = append(codes, map[string]interface{}{
					"code_id":        id,
					"code_name":      name,
					"parent_code_id": parent,
					"code_type":      cType,
					"sort_order":     sortOrder,
					"is_active":      active,
				})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": codes})
		case http.MethodPost:
			var req BudgetCodeCreateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrInvalidJSON})
				return
			}
			if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.CodeType) == "" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "name and code_type are required"})
				return
			}
			var lastID string
			err := db.QueryRow(`
				SELECT code_id FROM tb_budget_code_master
				WHERE code_type = $1
				ORDER BY code_id DESC LIMIT 1`, req.CodeType).Scan(&lastID)
			if err != nil && err != sql.ErrNoRows {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			codeID := nextBudgetCodeID(req.CodeType, lastID)
			isActive := "Y"
			if req.IsActive != nil && !*req.IsActive {
				isActive = "N"
			}
			var parent interface{}
			if req.ParentCodeID != nil && *req.ParentCodeID != "" {
				parent = *req.ParentCodeID
			}
			_, err = db.Exec(`
				INSERT INTO tb_budget_code_master (code_id, code_name, parent_code_id, code_type, sort_order, is_active, created_at)
				VALUES ($1, $2, $3, $4, 0, $5, now())`,
				codeID, req.Name, parent, req.CodeType, isActive)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"code_id":        codeID,
					"code_name":      req.Name,
					"parent_code_id": req.ParentCodeID,
					"code_type":      req.CodeType,
					"sort_order":     0,
					"is_active":      isActive,
				},
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrMethodNotAllowed})
		}
	}
}

// BudgetCodeItemHandler updates or deletes a single code by id. Deleting a
// BUDGET_L1 code that still has children is rejected so the tree never
// dangles.
func BudgetCodeItemHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		codeID := strings.TrimPrefix(r.URL.Path, "/master/accounts/budget-code/")
		if codeID == "" || strings.Contains(codeID, "/") {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrBudgetCodeNotFound})
			return
		}
		var codeType string
		err := db.QueryRow(`SELECT code_type FROM tb_budget_code_master WHERE code_id = $1`, codeID).Scan(&codeType)
		if err == sql.ErrNoRows {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrBudgetCodeNotFound})
			return
		}
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
			return
		}
		switch r.Method {
		case http.MethodPatch:
			var req BudgetCodeUpdateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrInvalidJSON})
				return
			}
			sets := []string{}
			args := []interface{}{}
			pos := 1
			if req.Name != nil {
				sets = append(sets, fmt.Sprintf("code_name = $%d", pos))
				args = append(args, *req.Name)
				pos++
			}
			if req.IsActive != nil {
				active := "N"
				if *req.IsActive {
					active = "Y"
				}
				sets = append(sets, fmt.Sprintf("is_active = $%d", pos))
				args = append(args, active)
				pos++
			}
			if req.ParentCodeID != nil {
				sets = append(sets, fmt.Sprintf("parent_code_id = $%d", pos))
				if *req.ParentCodeID == "" {
					args = append(args, nil)
				} else {
					args = append(args, *req.ParentCodeID)
				}
				pos++
			}
			if len(sets) > 0 {
				args = append(args, codeID)
				query := fmt.Sprintf(`UPDATE tb_budget_code_master SET %s WHERE code_id = $%d`, strings.Join(sets, ", "), pos)
				if _, err := db.Exec(query, args...); err != nil {
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
					return
				}
			}
			var name, parent, cType, active string
			var sortOrder int
			err := db.QueryRow(`
				SELECT code_name, COALESCE(parent_code_id, ''), code_type, sort_order, is_active
				FROM tb_budget_code_master WHERE code_id = $1`, codeID).
				Scan(&name, &parent, &cType, &sortOrder, &active)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"code_id":        codeID,
					"code_name":      name,
					"parent_code_id": parent,
					"code_type":      cType,
					"sort_order":     sortOrder,
					"is_active":      active,
				},
			})
		case http.MethodDelete:
			if codeType == "BUDGET_L1" {
				var hasChildren bool
				if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM tb_budget_code_master WHERE parent_code_id = $1)`, codeID).Scan(&hasChildren); err != nil {
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
					return
				}
				if hasChildren {
					w.WriteHeader(http.StatusBadRequest)
					json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrBudgetCodeHasChilds})
					return
				}
			}
			if _, err := db.Exec(`DELETE FROM tb_budget_code_master WHERE code_id = $1`, codeID); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrMethodNotAllowed})
		}
	}
}
