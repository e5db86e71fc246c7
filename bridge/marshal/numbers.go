package marshal

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// normalizeNumbers replaces json.Number values with int64 when the literal is a whole number
// that fits, and float64 otherwise. Whole-number floats therefore decode as int64, which is
// the one place the round trip canonicalises instead of preserving the Go type. Integer
// literals outside the int64 range decode as float64 only when the conversion is exact.
func normalizeNumbers(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		return normalizeNumber(val.String())
	case map[string]any:
		for k, item := range val {
			n, err := normalizeNumbers(item)
			if err != nil {
				return nil, err
			}
			val[k] = n
		}
		return val, nil
	case []any:
		for i, item := range val {
			n, err := normalizeNumbers(item)
			if err != nil {
				return nil, err
			}
			val[i] = n
		}
		return val, nil
	default:
		return v, nil
	}
}

func normalizeNumber(lit string) (any, error) {
	if strings.ContainsAny(lit, ".eE") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: number %s out of range", ErrMalformedPayload, lit)
		}
		return f, nil
	}

	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return n, nil
	}

	exact, ok := new(big.Int).SetString(lit, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid number %s", ErrMalformedPayload, lit)
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: number %s out of range", ErrMalformedPayload, lit)
	}
	back, _ := big.NewFloat(f).Int(nil)
	if back.Cmp(exact) != 0 {
		return nil, fmt.Errorf("%w: integer %s does not fit int64 or float64 exactly", ErrMalformedPayload, lit)
	}
	return f, nil
}
