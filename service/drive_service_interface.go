package service

import (
	"context"

	"egais-writeoff/models"
)

// DriveServiceInterface defines the contract for Google Drive operations
type DriveServiceInterface interface {
	ArchiveFile(ctx context.Context, folderID, path string) (string, error)
	ListArchive(ctx context.Context, folderID string) ([]models.ArchivedFile, error)
}
