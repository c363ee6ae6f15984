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

type VendorRequest struct {
	VendorName  string `json:"vendor_name"`
	BizRegNo    string `json:"biz_reg_no"`
	SapVendorCd string `json:"sap_vendor_cd"`
	VendorAlias string `json:"vendor_alias"`
	IsActive    string `json:"is_active"`
}

// VendorCollectionHandler lists vendors and registers new ones.
// Vendor ids are generated as "V" + first four chars of a uuid, uppercased.
func VendorCollectionHandler(db *sql.DB) http.HandlerFunc {
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
				SELECT vendor_id, vendor_name, biz_reg_no,
				       COALESCE(sap_vendor_cd, ''), COALESCE(vendor_alias, ''),
				       is_active, created_at
				FROM tb_vendor_master
				ORDER BY created_at DESC
				OFFSET $1 LIMIT $2`, skip, limit)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			defer rows.Close()
			vendors := []map[string]interface{}{}
			for rows.Next() {
				var id, name, bizNo, sapCd, alias, active, createdAt string
				if err := rows.Scan(&id, &name, &bizNo, &sapCd, &alias, &active, &createdAt); err != nil {
					continue
				}
				vendors = append(vendors, map[string]interface{}{
					"vendor_id":     id,
					"vendor_name":   name,
					"biz_reg_no":    bizNo,
					"sap_vendor_cd": sapCd,
					"vendor_alias":  alias,
					"is_active":     active,
					"created_at":    createdAt,
				})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": vendors})
		case http.MethodPost:
			var req VendorRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrInvalidJSON})
				return
			}
			if strings.TrimSpace(req.VendorName) == "" || strings.TrimSpace(req.BizRegNo) == "" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "vendor_name and biz_reg_no are required"})
				return
			}
			var exists bool
			if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM tb_vendor_master WHERE biz_reg_no = $1)`, req.BizRegNo).Scan(&exists); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			if exists {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrVendorDuplicateBizNo})
				return
			}
			if req.IsActive == "" {
				req.IsActive = "Y"
			}
			vendorID := "V" + strings.ToUpper(uuid.New().String()[:4])
			_, err := db.Exec(`
				INSERT INTO tb_vendor_master (vendor_id, vendor_name, biz_reg_no, sap_vendor_cd, vendor_alias, is_active, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, now())`,
				vendorID, req.VendorName, req.BizRegNo, req.SapVendorCd, req.VendorAlias, req.IsActive)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrQueryFailed})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"vendor_id":     vendorID,
					"vendor_name":   req.VendorName,
					"biz_reg_no":    req.BizRegNo,
					"sap_vendor_cd": req.SapVendorCd,
					"vendor_alias":  req.VendorAlias,
					"is_active":     req.IsActive,
				},
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": constants.ErrMethodNotAllowed})
		}
	}
}
