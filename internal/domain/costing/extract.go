package costing

import (
	"regexp"
	"strconv"
	"strings"
)

// totalLine matches the "Totaal Geschat: €X.XX" line the estimation
// prompt instructs the model to emit. Both Dutch and English wordings
// are accepted, the currency marker is optional, and the amount may use
// a comma or dot decimal separator.
var totalLine = regexp.MustCompile(`(?i)(?:\*\*)?(?:totaal|total)\s+(?:geschat|estimated)(?:\*\*)?:?(?:\*\*)?\s*(?:€|eur|euro)?\s*(\d+[.,]?\d*)`)

// ExtractEstimatedTotal scans AI-authored breakdown text for the
// literal total line and returns the amount. The second return is false
// when no total could be found: a best-effort textual contract, since
// the model writes prose rather than structured output.
func ExtractEstimatedTotal(text string) (float64, bool) {
	match := totalLine.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	total, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return total, true
}

// ParseEstimateAmount parses the bare numeric reply of a partial cost
// estimate ("3.45" or "3,45"). Anything non-numeric reports false,
// which callers must treat as "unknown", never as zero.
func ParseEstimateAmount(reply string) (float64, bool) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(reply, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
