package reconcile

import "errors"

var (
	// ErrEmptySales means the sales source returned no line items for the period
	ErrEmptySales = errors.New("no sales for the period")
	// ErrEmptyTable means the EGAIS mapping table has no usable rows
	ErrEmptyTable = errors.New("egais mapping table is empty")
	// ErrNothingQualified means no line item passed the product type selection and exclusions
	ErrNothingQualified = errors.New("no goods qualified for the product type")
	// ErrMissingSource means the engine was built without a required collaborator
	ErrMissingSource = errors.New("reconciliation source is not configured")
)
