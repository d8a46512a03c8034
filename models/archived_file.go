package models

// ArchivedFile represents an export file stored in the Google Drive archive folder
type ArchivedFile struct {
	DriveFileID string `json:"driveFileId"`
	FileName    string `json:"fileName"`
	Day         string `json:"day"`
	CreatedTime string `json:"createdTime"`
	URL         string `json:"url"`
}

// ArchivedFileListResponse represents the response for listing archived files
type ArchivedFileListResponse struct {
	Files []ArchivedFile `json:"files"`
}
