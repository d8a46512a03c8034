package reconcile

import "strings"

// ReconciliationEntry is a row of the EGAIS mapping table
type ReconciliationEntry struct {
	CommercialName string
	CanonicalName  string
}

// EntriesFromRows converts raw sheet rows into entries.
// Rows with fewer than two populated cells are dropped; extra cells are ignored.
func EntriesFromRows(rows [][]string) []ReconciliationEntry {
	entries := make([]ReconciliationEntry, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		commercial := strings.TrimSpace(row[0])
		canonical := strings.TrimSpace(row[1])
		if commercial == "" || canonical == "" {
			continue
		}
		entries = append(entries, ReconciliationEntry{CommercialName: commercial, CanonicalName: canonical})
	}
	return entries
}

// Reconcile annotates each good with its EGAIS name, matching commercial names
// case-insensitively. The output has the same length and order as goods;
// goods without a match are Unmatched.
func Reconcile(goods []Good, table []ReconciliationEntry) []ReconciledGood {
	lookup := make(map[string]string, len(table))
	for _, entry := range table {
		if entry.CommercialName == "" || entry.CanonicalName == "" {
			continue
		}
		key := strings.ToLower(entry.CommercialName)
		// first row wins
		if _, exists := lookup[key]; !exists {
			lookup[key] = entry.CanonicalName
		}
	}

	reconciled := make([]ReconciledGood, len(goods))
	for i, g := range goods {
		reconciled[i] = ReconciledGood{Good: g, Canonical: Unmatched()}
		if name, ok := lookup[strings.ToLower(g.CommercialName)]; ok {
			reconciled[i].Canonical = Matched(name)
		}
	}
	return reconciled
}
