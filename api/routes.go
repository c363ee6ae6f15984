package api

import (
	"log"
	"net/http"

	"OpexSaas/internal/logger"

	"github.com/gorilla/mux"
)

// NewRouter builds the gateway router. Every domain prefix is proxied to the
// service that owns it; anything else is logged and answered 404.
func NewRouter() *mux.Router {
	router := mux.NewRouter()

	router.PathPrefix("/master/").Handler(createReverseProxy("http://localhost:2143"))
	router.PathPrefix("/budget/").Handler(createReverseProxy("http://localhost:3143"))
	router.PathPrefix("/sap/").Handler(createReverseProxy("http://localhost:4143"))
	router.PathPrefix("/closing/").Handler(createReverseProxy("http://localhost:5143"))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("API Gateway is healthy"))
	}).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logr := logger.GlobalLogger
		msg := "[Gateway] [Error] " + r.URL.Path + " from " + r.RemoteAddr + " (route not found)"
		if logr != nil {
			logr.LogAudit(msg)
		} else {
			log.Println(msg)
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("404 - Route not found"))
	})

	return router
}
