// Package reconcile turns MoySklad retail sales into EGAIS write-off records:
// it aggregates line items per product, drops excluded products and matches
// commercial names against the EGAIS mapping table. It performs no I/O itself.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"egais-writeoff/models"
)

// SalesSource returns every retail sale line item of an organization in a period
type SalesSource interface {
	FetchSales(ctx context.Context, organizationID string, start, end time.Time) ([]models.SaleLineItem, error)
}

// CanonicalTableSource returns the raw rows of the EGAIS mapping table
type CanonicalTableSource interface {
	FetchCanonicalTable(ctx context.Context, spreadsheetID, sheetName, cellRange string) ([][]string, error)
}

// ExclusionSource returns the words excluding a product from the write-off
type ExclusionSource interface {
	FetchExclusionWords(ctx context.Context) (ExclusionSet, error)
}

// TableRef locates the EGAIS mapping table
type TableRef struct {
	SpreadsheetID string
	SheetName     string
	Range         string
}

// Engine runs the reconciliation pipeline against injected, already authenticated collaborators
type Engine struct {
	sales          SalesSource
	table          CanonicalTableSource
	exclusions     ExclusionSource // optional
	organizationID string
	tableRef       TableRef
}

// NewEngine creates a new Engine. exclusions may be nil to skip the exclusion step.
func NewEngine(sales SalesSource, table CanonicalTableSource, exclusions ExclusionSource, organizationID string, tableRef TableRef) *Engine {
	return &Engine{
		sales:          sales,
		table:          table,
		exclusions:     exclusions,
		organizationID: organizationID,
		tableRef:       tableRef,
	}
}

// Run reconciles the sales of [start, end] for the product type.
// It never returns an error: a failing or empty collaborator yields an Empty or
// Failed result whose Goods list is empty.
func (e *Engine) Run(ctx context.Context, goodType models.ProductType, start, end time.Time) Result {
	if e.sales == nil || e.table == nil {
		return Failed(ErrMissingSource)
	}

	var (
		items []models.SaleLineItem
		rows  [][]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = e.sales.FetchSales(gctx, e.organizationID, start, end)
		if err != nil {
			return fmt.Errorf("fetch sales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rows, err = e.table.FetchCanonicalTable(gctx, e.tableRef.SpreadsheetID, e.tableRef.SheetName, e.tableRef.Range)
		if err != nil {
			return fmt.Errorf("fetch egais table: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Failed(err)
	}

	if len(items) == 0 {
		return Empty(ErrEmptySales)
	}
	table := EntriesFromRows(rows)
	if len(table) == 0 {
		return Empty(ErrEmptyTable)
	}

	goods := Aggregate(goodType, items)
	if e.exclusions != nil {
		words, err := e.exclusions.FetchExclusionWords(ctx)
		if err != nil {
			return Failed(fmt.Errorf("fetch exclusion words: %w", err))
		}
		goods = FilterExcluded(goods, words)
	}
	if len(goods) == 0 {
		return Empty(ErrNothingQualified)
	}

	return Ok(Reconcile(goods, table))
}
