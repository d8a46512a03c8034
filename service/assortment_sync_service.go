package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"egais-writeoff/metrics"
	"egais-writeoff/models"
)

// AssortmentSyncService handles synchronization between Kontur.Market and Google Sheets
// Implements AssortmentSyncServiceInterface
type AssortmentSyncService struct {
	kontur        KonturServiceInterface
	sheets        SheetsServiceInterface
	spreadsheetID string
	sheetName     string
	cellRange     string
	metrics       *metrics.Registry
}

// NewAssortmentSyncService creates a new AssortmentSyncService
func NewAssortmentSyncService(
	kontur KonturServiceInterface,
	sheets SheetsServiceInterface,
	spreadsheetID, sheetName, cellRange string,
	m *metrics.Registry,
) *AssortmentSyncService {
	return &AssortmentSyncService{
		kontur:        kontur,
		sheets:        sheets,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		cellRange:     cellRange,
		metrics:       m,
	}
}

// Ensure AssortmentSyncService implements AssortmentSyncServiceInterface
var _ AssortmentSyncServiceInterface = (*AssortmentSyncService)(nil)

// Sync logs in, fetches the catalog, deduplicates it by EGAIS code and rewrites the sheet
func (s *AssortmentSyncService) Sync(ctx context.Context) (int, error) {
	log.Printf("🔄 Starting EGAIS assortment synchronization into sheet %q", s.sheetName)

	if err := s.kontur.Login(ctx); err != nil {
		return 0, fmt.Errorf("failed to log in to Kontur.Market: %w", err)
	}

	products, err := s.kontur.FetchAssortment(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch EGAIS assortment: %w", err)
	}

	products = dedupeProducts(products)
	if err := s.sheets.WriteAssortment(ctx, s.spreadsheetID, s.sheetName, s.cellRange, products); err != nil {
		return 0, fmt.Errorf("failed to write EGAIS assortment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AssortmentSynced.Set(float64(len(products)))
	}

	log.Printf("✅ Assortment synchronization completed: %d products", len(products))
	return len(products), nil
}

// dedupeProducts keeps the first product per EGAIS code, sorted by name
func dedupeProducts(products []models.EgaisProduct) []models.EgaisProduct {
	seen := make(map[string]bool, len(products))
	out := make([]models.EgaisProduct, 0, len(products))
	for _, p := range products {
		if seen[p.AlcoCode] {
			log.Printf("⏭️  Skipping duplicate EGAIS code %s (%s)", p.AlcoCode, p.FullName)
			continue
		}
		seen[p.AlcoCode] = true
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}
