package ir

import "testing"

func TestNegateInvolution(t *testing.T) {
	for op := range conditionalNegation {
		if !IsConditional(op) {
			t.Fatalf("%s: expected conditional", op)
		}
		n, ok := Negate(op)
		if !ok {
			t.Fatalf("%s: expected negation", op)
		}
		back, ok := Negate(n)
		if !ok || back != op {
			t.Fatalf("Negate(Negate(%s)) = %s, want %s", op, back, op)
		}
		if !IsConditional(n) {
			t.Fatalf("negation %s of %s must itself be conditional", n, op)
		}
	}
}

func TestNegateUnknownOpcode(t *testing.T) {
	if IsConditional("ADDR") {
		t.Fatal("ADDR should not be conditional")
	}
	if _, ok := Negate("ADDR"); ok {
		t.Fatal("Negate(ADDR) should report not-ok")
	}
}

func TestKnownPairsNegateEachOther(t *testing.T) {
	cases := map[string]string{
		"IFR":  "INR",
		"LTR":  "GETR",
		"IFTR": "INTR",
	}
	for a, b := range cases {
		got, ok := Negate(a)
		if !ok || got != b {
			t.Fatalf("Negate(%s) = %s, want %s", a, got, b)
		}
		got, ok = Negate(b)
		if !ok || got != a {
			t.Fatalf("Negate(%s) = %s, want %s", b, got, a)
		}
	}
}
