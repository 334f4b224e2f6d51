package domain

import "testing"

func TestApplyWithDefault(t *testing.T) {
	if got := ApplyWithDefault[float64](nil, 0); got != 0 {
		t.Fatalf("nil should yield default, got %g", got)
	}
	v := 12.5
	if got := ApplyWithDefault(&v, 0); got != 12.5 {
		t.Fatalf("set pointer should win, got %g", got)
	}
	zero := 0.0
	if got := ApplyWithDefault(&zero, 99); got != 0 {
		t.Fatalf("explicit zero must not fall back to default, got %g", got)
	}
}

func TestApplyOrKeep(t *testing.T) {
	if got := ApplyOrKeep[string](nil, "current"); got != "current" {
		t.Fatalf("nil should keep current, got %q", got)
	}
	v := "new"
	if got := ApplyOrKeep(&v, "current"); got != "new" {
		t.Fatalf("set pointer should win, got %q", got)
	}
	empty := ""
	if got := ApplyOrKeep(&empty, "current"); got != "" {
		t.Fatalf("explicit empty must overwrite, got %q", got)
	}
}

func TestOrderTotal(t *testing.T) {
	lines := []OrderLine{
		{Quantity: 3, UnitPrice: 2.5},
		{Quantity: 1, UnitPrice: 10},
	}
	if got := OrderTotal(lines); got != 17.5 {
		t.Fatalf("expected 17.5, got %g", got)
	}
	if got := OrderTotal(nil); got != 0 {
		t.Fatalf("expected 0 for empty list, got %g", got)
	}
}
