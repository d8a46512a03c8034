package controller

import (
	"fmt"
	"log"
	"net/http"

	"egais-writeoff/service"
)

// AssortmentController handles HTTP requests for the EGAIS assortment
type AssortmentController struct {
	syncService service.AssortmentSyncServiceInterface
}

// NewAssortmentController creates a new AssortmentController
func NewAssortmentController(syncService service.AssortmentSyncServiceInterface) *AssortmentController {
	return &AssortmentController{
		syncService: syncService,
	}
}

// SyncResponse represents the response for an assortment synchronization
type SyncResponse struct {
	Products int `json:"products"`
}

// Sync handles POST /admin/egais/assortment/sync
// Example response:
// {
//   "products": 312
// }
func (c *AssortmentController) Sync(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Sync: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ Sync: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if c.syncService == nil {
		log.Printf("❌ Sync: Kontur.Market is not configured")
		http.Error(w, "Kontur.Market is not configured (set KONTUR_LOGIN, KONTUR_PASSWORD, KONTUR_ASSORTMENT_URL)", http.StatusServiceUnavailable)
		return
	}

	n, err := c.syncService.Sync(r.Context())
	if err != nil {
		log.Printf("❌ Sync: Error synchronizing assortment: %v", err)
		http.Error(w, fmt.Sprintf("Failed to synchronize assortment: %v", err), http.StatusBadGateway)
		return
	}

	log.Printf("✅ Sync: Synchronized %d products", n)
	writeJSON(w, "Sync", SyncResponse{Products: n})
}
