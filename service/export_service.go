package service

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"egais-writeoff/reconcile"
	"egais-writeoff/utils"
)

// WriteoffSheetName is the worksheet the EGAIS write-off upload expects
const WriteoffSheetName = "Списания ЕГАИС"

// ErrNothingToExport is returned when Export is called without goods
var ErrNothingToExport = errors.New("nothing to export")

// ExportService writes reconciled goods into xlsx files.
// The sheet has no header row: commercial name, EGAIS name, quantity, price.
// Every export gets its own directory under dir, so runs for the same day never share a file.
type ExportService struct {
	dir string
}

// NewExportService creates a new ExportService writing into dir
func NewExportService(dir string) *ExportService {
	return &ExportService{dir: dir}
}

// Ensure ExportService implements ExportServiceInterface
var _ ExportServiceInterface = (*ExportService)(nil)

// Export writes Списание_ЕГАИС_<day>.xlsx into a fresh run directory and returns its path
func (s *ExportService) Export(goods []reconcile.ReconciledGood, day time.Time) (string, error) {
	if len(goods) == 0 {
		return "", ErrNothingToExport
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("⚠️ failed to close workbook: %v", err)
		}
	}()

	index, err := f.NewSheet(WriteoffSheetName)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to delete default sheet: %w", err)
	}

	for i, g := range goods {
		row := i + 1
		values := []interface{}{
			g.CommercialName,
			g.CanonicalName(),
			g.Quantity,
			g.Price.InexactFloat64(),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return "", fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellValue(WriteoffSheetName, cell, v); err != nil {
				return "", fmt.Errorf("failed to set %s: %w", cell, err)
			}
		}
	}

	if err := f.SetColWidth(WriteoffSheetName, "A", "B", 45); err != nil {
		return "", fmt.Errorf("failed to set column width: %w", err)
	}

	runDir, err := os.MkdirTemp(s.dir, "run-")
	if err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}
	path := filepath.Join(runDir, utils.WriteoffFileName(day))
	if err := f.SaveAs(path); err != nil {
		_ = os.RemoveAll(runDir)
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}

	log.Printf("📊 Exported %d goods to %s", len(goods), path)
	return path, nil
}

// Remove deletes an exported file together with its run directory
func (s *ExportService) Remove(path string) error {
	runDir := filepath.Dir(path)
	if filepath.Dir(runDir) != filepath.Clean(s.dir) {
		return os.Remove(path)
	}
	return os.RemoveAll(runDir)
}
