// Package price extracts numeric amounts from catalog price labels.
//
// Catalog prices are display strings like "45 kr / kg" or "12 kr / bunt".
// The storefront needs the numeric part exactly once, at the point a product
// enters the cart or the catalog, and carries it alongside the label from
// then on.
package price

// Parse returns the value of the first contiguous run of decimal digits in
// input, or 0 when input contains no digits. Fractional prices do not occur
// in the catalog format, so the run is read as an integer.
func Parse(input string) float64 {
	start := -1
	for i := 0; i < len(input); i++ {
		if input[i] >= '0' && input[i] <= '9' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			return digitsToFloat(input[start:i])
		}
	}
	if start != -1 {
		return digitsToFloat(input[start:])
	}
	return 0
}

// FromAny accepts the loosely typed price values found in catalog JSON:
// numbers pass through unchanged, strings go through Parse, anything else
// is worth 0.
func FromAny(v interface{}) float64 {
	switch p := v.(type) {
	case float64:
		return p
	case float32:
		return float64(p)
	case int:
		return float64(p)
	case int64:
		return float64(p)
	case string:
		return Parse(p)
	default:
		return 0
	}
}

func digitsToFloat(digits string) float64 {
	var n float64
	for i := 0; i < len(digits); i++ {
		n = n*10 + float64(digits[i]-'0')
	}
	return n
}
