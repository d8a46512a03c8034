package service

import (
	"context"
	"time"

	"egais-writeoff/models"
)

// MoySkladServiceInterface defines the contract for MoySklad retail sales operations
type MoySkladServiceInterface interface {
	FetchSales(ctx context.Context, organizationID string, start, end time.Time) ([]models.SaleLineItem, error)
}
