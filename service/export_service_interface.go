package service

import (
	"time"

	"egais-writeoff/reconcile"
)

// ExportServiceInterface defines the contract for write-off file exports
type ExportServiceInterface interface {
	// Export writes the goods to a file for the day and returns its path, "" on failure
	Export(goods []reconcile.ReconciledGood, day time.Time) (string, error)
	// Remove deletes a file returned by Export once it is delivered
	Remove(path string) error
}
