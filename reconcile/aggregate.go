package reconcile

import (
	"sort"

	"egais-writeoff/models"
)

// Aggregate merges the line items of the given product type into goods keyed by
// normalized commercial name. Quantities are summed, the price is taken from the
// first occurrence. The result is sorted by commercial name.
func Aggregate(goodType models.ProductType, items []models.SaleLineItem) []Good {
	byName := make(map[string]*Good)
	for _, item := range items {
		if !Includes(goodType, DecodeAttributes(item.Attributes)) {
			continue
		}
		g := NewGood(item.ProductName, item.Quantity, item.UnitPrice)
		if existing, ok := byName[g.CommercialName]; ok {
			existing.Add(item.Quantity)
			continue
		}
		byName[g.CommercialName] = &g
	}

	goods := make([]Good, 0, len(byName))
	for _, g := range byName {
		goods = append(goods, *g)
	}
	sort.Slice(goods, func(i, j int) bool {
		return goods[i].CommercialName < goods[j].CommercialName
	})
	return goods
}
