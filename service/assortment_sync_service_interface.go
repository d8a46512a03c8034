package service

import "context"

// AssortmentSyncServiceInterface defines the contract for EGAIS assortment synchronization
type AssortmentSyncServiceInterface interface {
	// Sync copies the Kontur.Market EGAIS catalog into the assortment sheet
	// and returns the number of products written
	Sync(ctx context.Context) (int, error)
}
