package service

import (
	"context"

	"egais-writeoff/models"
)

// SheetsServiceInterface defines the contract for Google Sheets operations
type SheetsServiceInterface interface {
	FetchCanonicalTable(ctx context.Context, spreadsheetID, sheetName, cellRange string) ([][]string, error)
	WriteAssortment(ctx context.Context, spreadsheetID, sheetName, cellRange string, products []models.EgaisProduct) error
}
