package models

// EgaisProduct represents a product from the EGAIS catalog as returned by Kontur.Market
type EgaisProduct struct {
	// AlcoCode is the 19-digit EGAIS product code, left-padded with zeros
	AlcoCode string `json:"egaisCode"`
	FullName string `json:"fullName"`
}

// Row returns the sheet row for the product: code, name
func (p EgaisProduct) Row() []interface{} {
	return []interface{}{p.AlcoCode, p.FullName}
}
