package router

import (
	"net/http"

	"egais-writeoff/app/controller"
)

type Controllers struct {
	Writeoff   *controller.WriteoffController
	Assortment *controller.AssortmentController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers the routes on mux. metricsHandler may be nil.
func SetupRoutes(mux *http.ServeMux, controllers *Controllers, metricsHandler http.Handler) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Write-off routes
	// Build the file for a day and send it to the chat
	mux.HandleFunc("/admin/writeoff/send", controllers.Writeoff.Send)

	// Reconcile a day without sending anything
	mux.HandleFunc("/admin/writeoff/preview", controllers.Writeoff.Preview)

	// Run history
	mux.HandleFunc("/admin/writeoff/runs", controllers.Writeoff.ListRuns)

	// Files archived in Google Drive
	mux.HandleFunc("/admin/writeoff/archive", controllers.Writeoff.ListArchive)

	// EGAIS assortment routes
	mux.HandleFunc("/admin/egais/assortment/sync", controllers.Assortment.Sync)

	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}
}
