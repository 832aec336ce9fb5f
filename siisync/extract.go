package siisync

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// textNodeKey is mxj's reserved child key for the text content of an element
// that also carries attributes.
const textNodeKey = "#text"

// ExtractValue normalizes one parsed markup node to a trimmed string.
// Two node shapes are trusted: a bare string, and a map whose text lives
// under the reserved child key. Everything else (including numbers already
// coerced by a caller) yields nil on purpose.
func ExtractValue(node interface{}) *string {
	switch v := node.(type) {
	case string:
		s := strings.TrimSpace(v)
		return &s
	case map[string]interface{}:
		if inner, ok := v[textNodeKey].(string); ok {
			s := strings.TrimSpace(inner)
			return &s
		}
		return nil
	default:
		return nil
	}
}

// ExtractNumber parses the node's text as a decimal. Non-numeric text yields
// nil, never an error.
func ExtractNumber(node interface{}) *decimal.Decimal {
	s := ExtractValue(node)
	if s == nil || *s == "" {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil
	}
	return &d
}

// ExtractInt parses the node's text as an integer.
func ExtractInt(node interface{}) *int64 {
	s := ExtractValue(node)
	if s == nil || *s == "" {
		return nil
	}
	n, err := strconv.ParseInt(*s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
