package models

import "github.com/shopspring/decimal"

// SaleLineItem represents a single retail demand position from MoySklad.
// Attributes keep the upstream order: the alcohol selection depends on it.
type SaleLineItem struct {
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Attributes  []Attribute     `json:"attributes"`
}

// Attribute represents an additional field of a MoySklad product.
// Value is the decoded JSON value: bool, float64, string or map[string]interface{}
// (custom entity references carry their display name under "name").
type Attribute struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}
