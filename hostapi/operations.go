package hostapi

import (
	"strings"
)

// operators maps filter operation prefixes to their SQL-like rendering. Longer prefixes come
// first so __gte_ wins over __gt_.
var operators = []struct {
	prefix string
	symbol string
}{
	{"__gte_", ">="},
	{"__lte_", "<="},
	{"__eq_", "="},
	{"__ne_", "!="},
	{"__gt_", ">"},
	{"__lt_", "<"},
}

func resolveOperation(expr string) (string, bool) {
	if rest, ok := strings.CutPrefix(expr, "__in_"); ok {
		if rest == "" {
			return "", false
		}
		items := strings.Split(rest, ",")
		for i := range items {
			items[i] = strings.TrimSpace(items[i])
		}
		return "in (" + strings.Join(items, ", ") + ")", true
	}
	for _, op := range operators {
		if rest, ok := strings.CutPrefix(expr, op.prefix); ok && rest != "" {
			return op.symbol + " " + rest, true
		}
	}
	return "", false
}
