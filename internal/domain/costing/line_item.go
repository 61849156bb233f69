package costing

// FailureReason is the closed set of reasons a recipe ingredient can
// miss deterministic pricing. These are routine data conditions, not
// errors: failed items are collected and handed to AI estimation.
type FailureReason string

const (
	ReasonMissingName  FailureReason = "missing_name"
	ReasonParseError   FailureReason = "parse_error"
	ReasonNotFound     FailureReason = "not_found"
	ReasonUnitMismatch FailureReason = "unit_mismatch"
	ReasonInvalidCost  FailureReason = "invalid_cost"
)

// LineItem is the pricing outcome for one recipe ingredient. An item is
// either Priced (Cost, ResolvedUnit and ResolvedQuantity are set) or
// failed (Reason and Message are set), never both.
type LineItem struct {
	Name             string
	QuantityString   string
	Priced           bool
	Cost             float64
	ResolvedUnit     string
	ResolvedQuantity float64
	Reason           FailureReason
	Message          string
}

// Result aggregates the deterministic pricing pass over a full
// ingredient list.
type Result struct {
	Items    []LineItem
	Subtotal float64
}

// PricedItems returns the successfully priced line items.
func (r Result) PricedItems() []LineItem {
	items := make([]LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Priced {
			items = append(items, item)
		}
	}
	return items
}

// FailedItems returns the line items that missed deterministic pricing.
func (r Result) FailedItems() []LineItem {
	items := make([]LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		if !item.Priced {
			items = append(items, item)
		}
	}
	return items
}
