package sap

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

func StartSapService(pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.Handle("/sap/upload", UploadSapExcelHandler(pool))
	mux.Handle("/sap/run-mapping", RunAutoMappingHandler(pool))
	mux.Handle("/sap/unmapped", GetUnmappedLinesHandler(pool))
	mux.Handle("/sap/manual-map", ManualMapHandler(pool))
	log.Println("SAP Service started on :4143")
	err := http.ListenAndServe(":4143", mux)
	if err != nil {
		log.Fatalf("SAP Service failed: %v", err)
	}
}
