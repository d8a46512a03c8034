package reconcile

import (
	"github.com/shopspring/decimal"
)

// Good is a product aggregated over a period.
// CommercialName is always normalized: use NewGood to construct it.
// Quantity is the exact sold amount rounded to a whole number.
type Good struct {
	CommercialName string
	Quantity       int64
	Price          decimal.Decimal

	sold decimal.Decimal
}

// NewGood creates a Good, normalizing the raw commercial name
func NewGood(rawName string, quantity decimal.Decimal, price decimal.Decimal) Good {
	g := Good{
		CommercialName: Normalize(rawName),
		Price:          price,
	}
	g.Add(quantity)
	return g
}

// Add accumulates sold quantity. Non-positive quantities are ignored so the total never decreases.
// Fractional amounts (goods sold by weight) are summed before rounding.
func (g *Good) Add(quantity decimal.Decimal) {
	if !quantity.IsPositive() {
		return
	}
	g.sold = g.sold.Add(quantity)
	g.Quantity = g.sold.Round(0).IntPart()
}

// Sold returns the exact accumulated quantity
func (g Good) Sold() decimal.Decimal {
	return g.sold
}

// CanonicalMatch is the outcome of looking a good up in the EGAIS mapping table:
// either Unmatched or Matched with the canonical EGAIS name.
type CanonicalMatch struct {
	name    string
	matched bool
}

// Unmatched returns the match for a good that has no EGAIS name
func Unmatched() CanonicalMatch {
	return CanonicalMatch{}
}

// Matched returns the match for a good mapped to the given EGAIS name
func Matched(canonicalName string) CanonicalMatch {
	return CanonicalMatch{name: canonicalName, matched: true}
}

// Name returns the EGAIS name and whether the good was matched
func (m CanonicalMatch) Name() (string, bool) {
	return m.name, m.matched
}

func (m CanonicalMatch) IsMatched() bool {
	return m.matched
}

// ReconciledGood is a Good enriched with its EGAIS match
type ReconciledGood struct {
	Good
	Canonical CanonicalMatch
}

// CanonicalName returns the EGAIS name or an empty string when unmatched
func (g ReconciledGood) CanonicalName() string {
	name, _ := g.Canonical.Name()
	return name
}
