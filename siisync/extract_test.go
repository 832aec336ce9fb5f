package siisync

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestExtractValue_BareStringAndWrappedNodeNormalizeTheSame(t *testing.T) {
	bare := ExtractValue("33")
	wrapped := ExtractValue(map[string]interface{}{"#text": "  33  "})

	if bare == nil || wrapped == nil {
		t.Fatal("expected values for both node shapes")
	}
	if *bare != "33" || *wrapped != "33" {
		t.Fatalf("expected \"33\" for both shapes, got %q and %q", *bare, *wrapped)
	}
}

func TestExtractValue_AbsentNode(t *testing.T) {
	if got := ExtractValue(nil); got != nil {
		t.Fatalf("expected nil for absent node, got %q", *got)
	}
}

func TestExtractValue_UntrustedShapes(t *testing.T) {
	// Only bare strings and #text wrappers are trusted; a number already
	// coerced by a caller is not.
	if got := ExtractValue(float64(33)); got != nil {
		t.Fatalf("expected nil for coerced float, got %q", *got)
	}
	if got := ExtractValue(map[string]interface{}{"-attr": "x"}); got != nil {
		t.Fatalf("expected nil for wrapper without text child, got %q", *got)
	}
	if got := ExtractValue([]interface{}{"33"}); got != nil {
		t.Fatalf("expected nil for list node, got %q", *got)
	}
}

func TestExtractNumber(t *testing.T) {
	got := ExtractNumber(map[string]interface{}{"#text": " 1190.50 "})
	if got == nil {
		t.Fatal("expected a decimal")
	}
	if !got.Equal(decimal.RequireFromString("1190.50")) {
		t.Fatalf("expected 1190.50, got %s", got)
	}

	if got := ExtractNumber("not-a-number"); got != nil {
		t.Fatalf("expected nil for non-numeric text, got %s", got)
	}
	if got := ExtractNumber(nil); got != nil {
		t.Fatalf("expected nil for absent node, got %s", got)
	}
	if got := ExtractNumber(""); got != nil {
		t.Fatalf("expected nil for empty text, got %s", got)
	}
}

func TestExtractInt(t *testing.T) {
	got := ExtractInt("1234")
	if got == nil || *got != 1234 {
		t.Fatalf("expected 1234, got %v", got)
	}

	if got := ExtractInt("12.5"); got != nil {
		t.Fatalf("expected nil for non-integer text, got %d", *got)
	}
	if got := ExtractInt(nil); got != nil {
		t.Fatalf("expected nil for absent node, got %d", *got)
	}
}
