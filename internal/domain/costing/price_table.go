package costing

import "strings"

// PriceRecord is one row of the priced ingredient store: a unique name,
// the unit the price applies to, and the price per single unit.
type PriceRecord struct {
	Name         string
	Unit         string
	PricePerUnit float64
}

// PriceTable is an in-memory snapshot of the full price store, loaded
// once per breakdown request. Lookups are case-insensitive exact name
// matches; there is no fuzzy matching.
type PriceTable struct {
	records map[string]PriceRecord
}

// NewPriceTable builds a lookup table from price store rows. When two
// rows differ only in casing the later one wins, matching the store's
// case-insensitive uniqueness constraint.
func NewPriceTable(records []PriceRecord) PriceTable {
	m := make(map[string]PriceRecord, len(records))
	for _, rec := range records {
		m[strings.ToLower(rec.Name)] = rec
	}
	return PriceTable{records: m}
}

// Lookup finds the price record for an ingredient name.
func (t PriceTable) Lookup(name string) (PriceRecord, bool) {
	rec, ok := t.records[strings.ToLower(strings.TrimSpace(name))]
	return rec, ok
}

// Len returns the number of records in the table.
func (t PriceTable) Len() int {
	return len(t.records)
}
