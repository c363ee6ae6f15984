package master

import (
	"database/sql"
	"log"
	"net/http"
)

func StartMasterService(db *sql.DB) {
	mux := http.NewServeMux()
	mux.Handle("/master/vendors", VendorCollectionHandler(db))
	mux.Handle("/master/services", ServiceCollectionHandler(db))
	mux.Handle("/master/accounts/gl", GLAccountCollectionHandler(db))
	mux.Handle("/master/accounts/cost-center", CostCenterCollectionHandler(db))
	mux.Handle("/master/accounts/budget-code", BudgetCodeCollectionHandler(db))
	mux.Handle("/master/accounts/budget-code/", BudgetCodeItemHandler(db))
	log.Println("Master Service started on :2143")
	err := http.ListenAndServe(":2143", mux)
	if err != nil {
		log.Fatalf("Master Service failed: %v", err)
	}
}
