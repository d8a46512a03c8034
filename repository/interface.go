package repository

import (
	"context"

	"egais-writeoff/models"
)

// WriteoffRunRepositoryInterface defines the contract for write-off run history operations
type WriteoffRunRepositoryInterface interface {
	Insert(ctx context.Context, run *models.WriteoffRun) error
	// ListRecent returns up to limit runs, newest first
	ListRecent(ctx context.Context, limit int) ([]models.WriteoffRun, error)
}
