package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egais-writeoff/models"
)

type fakeSales struct {
	items []models.SaleLineItem
	err   error
	orgID string
}

func (f *fakeSales) FetchSales(ctx context.Context, organizationID string, start, end time.Time) ([]models.SaleLineItem, error) {
	f.orgID = organizationID
	return f.items, f.err
}

type fakeTable struct {
	rows [][]string
	err  error
	ref  TableRef
}

func (f *fakeTable) FetchCanonicalTable(ctx context.Context, spreadsheetID, sheetName, cellRange string) ([][]string, error) {
	f.ref = TableRef{SpreadsheetID: spreadsheetID, SheetName: sheetName, Range: cellRange}
	return f.rows, f.err
}

type fakeExclusions struct {
	words ExclusionSet
	err   error
}

func (f *fakeExclusions) FetchExclusionWords(ctx context.Context) (ExclusionSet, error) {
	return f.words, f.err
}

var (
	periodStart = time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 1, 4, 23, 59, 59, 0, time.UTC)
	tableRef    = TableRef{SpreadsheetID: "sheet-id", SheetName: "Соответсвия ЕГАИС", Range: "B2:C"}
)

func TestEngine_Run(t *testing.T) {
	sales := &fakeSales{items: []models.SaleLineItem{
		alcoholItem("X Beer (IPA, ABV 5%)", 3, 250),
		alcoholItem("X Beer (IPA, ABV 5%)", 2, 250),
		alcoholItem("Пакет", 1, 5),
		alcoholItem("Y Stout (Imperial)", 1, 400),
	}}
	table := &fakeTable{rows: [][]string{{"x beer", "Пиво X Beer светлое"}, {"short"}}}
	exclusions := &fakeExclusions{words: NewExclusionSet("пакет")}

	engine := NewEngine(sales, table, exclusions, "org-1", tableRef)
	result := engine.Run(context.Background(), models.ProductTypeAlcohol, periodStart, periodEnd)

	require.True(t, result.OK(), "reason: %v", result.Reason())
	assert.Equal(t, "org-1", sales.orgID)
	assert.Equal(t, tableRef, table.ref)

	goods := result.Goods()
	require.Len(t, goods, 2)
	assert.Equal(t, "X Beer", goods[0].CommercialName)
	assert.Equal(t, int64(5), goods[0].Quantity)
	assert.Equal(t, "Пиво X Beer светлое", goods[0].CanonicalName())
	assert.Equal(t, "Y Stout", goods[1].CommercialName)
	assert.False(t, goods[1].Canonical.IsMatched())
	assert.Equal(t, 1, result.Unmatched())
}

func TestEngine_Run_WithoutExclusions(t *testing.T) {
	sales := &fakeSales{items: []models.SaleLineItem{alcoholItem("Пакет", 1, 5)}}
	table := &fakeTable{rows: [][]string{{"a", "b"}}}

	result := NewEngine(sales, table, nil, "org", tableRef).Run(context.Background(), models.ProductTypeAlcohol, periodStart, periodEnd)

	require.True(t, result.OK())
	assert.Len(t, result.Goods(), 1)
}

func TestEngine_Run_FailsSoft(t *testing.T) {
	table := [][]string{{"a", "b"}}
	items := []models.SaleLineItem{alcoholItem("a", 1, 1)}
	boom := errors.New("boom")

	cases := []struct {
		name       string
		sales      *fakeSales
		table      *fakeTable
		exclusions ExclusionSource
		status     Status
		reason     error
	}{
		{"sales error", &fakeSales{err: boom}, &fakeTable{rows: table}, nil, StatusFailed, boom},
		{"table error", &fakeSales{items: items}, &fakeTable{err: boom}, nil, StatusFailed, boom},
		{"no sales", &fakeSales{}, &fakeTable{rows: table}, nil, StatusEmpty, ErrEmptySales},
		{"empty table", &fakeSales{items: items}, &fakeTable{rows: [][]string{{"only one"}}}, nil, StatusEmpty, ErrEmptyTable},
		{"nothing qualified", &fakeSales{items: []models.SaleLineItem{{ProductName: "Чипсы", Quantity: decimal.NewFromInt(1)}}}, &fakeTable{rows: table}, nil, StatusEmpty, ErrNothingQualified},
		{"all excluded", &fakeSales{items: items}, &fakeTable{rows: table}, &fakeExclusions{words: NewExclusionSet("a")}, StatusEmpty, ErrNothingQualified},
		{"exclusion error", &fakeSales{items: items}, &fakeTable{rows: table}, &fakeExclusions{err: boom}, StatusFailed, boom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := NewEngine(tc.sales, tc.table, tc.exclusions, "org", tableRef).Run(context.Background(), models.ProductTypeAlcohol, periodStart, periodEnd)
			assert.Equal(t, tc.status, result.Status())
			assert.ErrorIs(t, result.Reason(), tc.reason)
			assert.NotNil(t, result.Goods())
			assert.Empty(t, result.Goods())
		})
	}
}

func TestEngine_Run_MissingSource(t *testing.T) {
	result := NewEngine(nil, nil, nil, "", TableRef{}).Run(context.Background(), models.ProductTypeAlcohol, periodStart, periodEnd)
	assert.Equal(t, StatusFailed, result.Status())
	assert.ErrorIs(t, result.Reason(), ErrMissingSource)
}

func TestResult_OkWithoutGoodsIsEmpty(t *testing.T) {
	r := Ok(nil)
	assert.Equal(t, StatusEmpty, r.Status())
	assert.False(t, r.OK())

	var zero Result
	assert.Equal(t, StatusEmpty, zero.Status())
	assert.Empty(t, zero.Goods())
}

func TestNewGood_NormalizesOnce(t *testing.T) {
	g := NewGood("  Y Stout   (Imperial)", decimal.NewFromInt(2), decimal.NewFromInt(1))
	assert.Equal(t, "Y Stout", g.CommercialName)
	g.Add(decimal.NewFromInt(-5))
	assert.Equal(t, int64(2), g.Quantity)
}
