package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"egais-writeoff/models"
	"egais-writeoff/utils"
)

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DriveService handles Google Drive API operations
type DriveService struct {
	client *drive.Service
}

// NewDriveService creates a new DriveService instance
// credentialsPath should be the path to the Service Account JSON file
func NewDriveService(ctx context.Context, credentialsPath string) (*DriveService, error) {
	// option.WithCredentialsFile automatically handles Service Account authentication
	return NewDriveServiceWithOptions(ctx, option.WithCredentialsFile(credentialsPath))
}

// NewDriveServiceWithOptions creates a DriveService with explicit client options
func NewDriveServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*DriveService, error) {
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveService{
		client: driveService,
	}, nil
}

// Ensure DriveService implements DriveServiceInterface
var _ DriveServiceInterface = (*DriveService)(nil)

// ArchiveFile uploads the export file into the folder and returns the Drive file ID
func (ds *DriveService) ArchiveFile(ctx context.Context, folderID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	file := &drive.File{
		Name:     filepath.Base(path),
		MimeType: xlsxMimeType,
	}
	if folderID != "" {
		file.Parents = []string{folderID}
	}

	created, err := ds.client.Files.Create(file).
		Media(f).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", file.Name, err)
	}

	log.Printf("🗄️ Archived %s to Drive (file_id: %s)", file.Name, created.Id)
	return created.Id, nil
}

// ListArchive lists the write-off files in the archive folder, newest first.
// Other spreadsheets in the folder are skipped.
func (ds *DriveService) ListArchive(ctx context.Context, folderID string) ([]models.ArchivedFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false and mimeType='%s'", folderID, xlsxMimeType)

	var allFiles []*drive.File
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Q(query).
			OrderBy("createdTime desc").
			Fields("nextPageToken, files(id, name, createdTime)").
			Context(ctx)

		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		allFiles = append(allFiles, r.Files...)
		pageToken = r.NextPageToken

		if pageToken == "" {
			break
		}
	}

	files := make([]models.ArchivedFile, 0, len(allFiles))
	for _, file := range allFiles {
		day, err := utils.ParseWriteoffFileName(file.Name, time.UTC)
		if err != nil {
			log.Printf("⏭️ ListArchive: skipping %s: %v", file.Name, err)
			continue
		}
		files = append(files, models.ArchivedFile{
			DriveFileID: file.Id,
			FileName:    file.Name,
			Day:         day.Format(utils.DayLayout),
			CreatedTime: file.CreatedTime,
			URL:         fmt.Sprintf("https://drive.google.com/uc?id=%s", file.Id),
		})
	}

	return files, nil
}
