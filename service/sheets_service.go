package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"egais-writeoff/models"
)

// SheetsService handles Google Sheets API operations
type SheetsService struct {
	client *sheets.Service
}

// NewSheetsService creates a new SheetsService instance
// credentialsPath should be the path to the Service Account JSON file
func NewSheetsService(ctx context.Context, credentialsPath string) (*SheetsService, error) {
	return NewSheetsServiceWithOptions(ctx, option.WithCredentialsFile(credentialsPath))
}

// NewSheetsServiceWithOptions creates a SheetsService with explicit client options
func NewSheetsServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*SheetsService, error) {
	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsService{
		client: sheetsService,
	}, nil
}

// Ensure SheetsService implements SheetsServiceInterface
var _ SheetsServiceInterface = (*SheetsService)(nil)

// a1Range builds an A1 range, quoting the sheet name
func a1Range(sheetName, cellRange string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheetName, "'", "''"), cellRange)
}

// FetchCanonicalTable returns the rows of the range as strings.
// Empty rows inside the range are dropped; short rows are kept as is.
func (s *SheetsService) FetchCanonicalTable(ctx context.Context, spreadsheetID, sheetName, cellRange string) ([][]string, error) {
	resp, err := s.client.Spreadsheets.Values.Get(spreadsheetID, a1Range(sheetName, cellRange)).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a1Range(sheetName, cellRange), err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		if len(raw) == 0 {
			continue
		}
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}

	log.Printf("📄 Read %d rows from sheet %q", len(rows), sheetName)
	return rows, nil
}

// WriteAssortment replaces the content of the range with one (code, name) row per product
func (s *SheetsService) WriteAssortment(ctx context.Context, spreadsheetID, sheetName, cellRange string, products []models.EgaisProduct) error {
	rng := a1Range(sheetName, cellRange)

	if _, err := s.client.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", rng, err)
	}
	if len(products) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(products))
	for _, p := range products {
		values = append(values, p.Row())
	}

	_, err := s.client.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", rng, err)
	}

	log.Printf("✅ Wrote %d products to sheet %q", len(products), sheetName)
	return nil
}
