package models

import (
	"fmt"
	"strings"
)

// ProductType selects which attribute predicate is used when sales are aggregated
type ProductType string

const (
	ProductTypeAlcohol    ProductType = "alcohol"
	ProductTypeNonAlcohol ProductType = "non_alcohol"
	ProductTypeSnack      ProductType = "snack"
)

// ParseProductType parses a product type name, defaulting to alcohol for an empty value
func ParseProductType(s string) (ProductType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "alcohol", "alco":
		return ProductTypeAlcohol, nil
	case "non_alcohol", "nonalcohol", "non-alcohol":
		return ProductTypeNonAlcohol, nil
	case "snack", "snacks":
		return ProductTypeSnack, nil
	}
	return "", fmt.Errorf("unknown product type: %q", s)
}

func (t ProductType) String() string {
	return string(t)
}
