package budget

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

func StartBudgetService(pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.Handle("/budget/projects", ProjectCollectionHandler(pool))
	mux.Handle("/budget/projects/", DeleteProjectHandler(pool))
	mux.Handle("/budget/projects/master/bulk", BulkProjectMasterHandler(pool))
	mux.Handle("/budget/projects/transfer", ExecuteTransferHandler(pool))
	mux.Handle("/budget/projects/transfer/log", GetTransferLogHandler(pool))
	mux.Handle("/budget/execution/", GetMonthlyStatusHandler(pool))
	mux.Handle("/budget/execution/update-forecast", UpdateForecastHandler(pool))
	mux.Handle("/budget/execution/finalize-month", FinalizeMonthHandler(pool))
	mux.Handle("/budget/report/budget-vs-actual", BudgetVsActualHandler(pool))
	mux.Handle("/budget/utils/years", AvailableYearsHandler())
	log.Println("Budget Service started on :3143")
	err := http.ListenAndServe(":3143", mux)
	if err != nil {
		log.Fatalf("Budget Service failed: %v", err)
	}
}
