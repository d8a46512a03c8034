package reconcile

// Status is the outcome of a reconciliation run
type Status string

const (
	StatusOK     Status = "ok"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// Result is either Ok with reconciled goods, Empty (no upstream data) or Failed.
// Goods is empty for every status other than Ok, so callers that only look at
// the goods list keep treating an empty list as failure.
type Result struct {
	status Status
	goods  []ReconciledGood
	reason error
}

// Ok returns a successful result
func Ok(goods []ReconciledGood) Result {
	if len(goods) == 0 {
		return Empty(ErrNothingQualified)
	}
	return Result{status: StatusOK, goods: goods}
}

// Empty returns a result for a run without upstream data
func Empty(reason error) Result {
	return Result{status: StatusEmpty, reason: reason}
}

// Failed returns a result for a run where a collaborator failed
func Failed(reason error) Result {
	return Result{status: StatusFailed, reason: reason}
}

func (r Result) Status() Status {
	if r.status == "" {
		return StatusEmpty
	}
	return r.status
}

func (r Result) OK() bool {
	return r.status == StatusOK
}

// Goods returns the reconciled goods, an empty slice unless the result is Ok
func (r Result) Goods() []ReconciledGood {
	if r.status != StatusOK {
		return []ReconciledGood{}
	}
	return r.goods
}

// Reason returns why the result is not Ok, nil otherwise
func (r Result) Reason() error {
	return r.reason
}

// Unmatched returns the number of goods without an EGAIS name
func (r Result) Unmatched() int {
	n := 0
	for _, g := range r.Goods() {
		if !g.Canonical.IsMatched() {
			n++
		}
	}
	return n
}
