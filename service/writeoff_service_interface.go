package service

import (
	"context"
	"time"

	"egais-writeoff/models"
	"egais-writeoff/reconcile"
)

// WriteoffEngine runs the reconciliation for a period
type WriteoffEngine interface {
	Run(ctx context.Context, goodType models.ProductType, start, end time.Time) reconcile.Result
}

// WriteoffServiceInterface defines the contract for write-off delivery operations
type WriteoffServiceInterface interface {
	// SendWriteoff reconciles the sales of the day, exports them and sends the file to the chat
	SendWriteoff(ctx context.Context, chatID int64, goodType models.ProductType, day time.Time) (*models.WriteoffRun, error)
	// Preview reconciles the sales of the day without exporting or notifying
	Preview(ctx context.Context, goodType models.ProductType, day time.Time) reconcile.Result
}
