package token

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		tok, err := Generate()
		if err != nil {
			t.Fatal(err)
		}
		if !ValidFormat(tok) {
			t.Fatalf("generated token has invalid format: %q", tok)
		}
		if strings.ContainsAny(tok[len("PANTRY-"):], "01OIL") {
			t.Fatalf("ambiguous character in %q", tok)
		}
		seen[tok] = struct{}{}
	}
	if len(seen) < 100 {
		t.Fatalf("duplicate tokens in %d draws", len(seen))
	}
}

func TestValidFormat(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{token: "PANTRY-A7X9K2B", want: true},
		{token: "PANTRY-A7X9K2", want: false},
		{token: "PANTRY-A7X9K2BB", want: false},
		{token: "PANTRY-A7X9K0B", want: false},
		{token: "pantry-A7X9K2B", want: false},
		{token: "", want: false},
	}
	for _, tc := range cases {
		if got := ValidFormat(tc.token); got != tc.want {
			t.Fatalf("ValidFormat(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}

func TestHash(t *testing.T) {
	h := Hash("PANTRY-A7X9K2B")
	if len(h) != 64 {
		t.Fatalf("hash length %d", len(h))
	}
	if h != Hash("PANTRY-A7X9K2B") {
		t.Fatal("hash not stable")
	}
	if h == Hash("PANTRY-A7X9K2C") {
		t.Fatal("hash collision on different tokens")
	}
}

func TestDurationForPlan(t *testing.T) {
	cases := map[string]int{"trial": 7, "coffee": 15, "snack": 30, "supporter": 60}
	for plan, want := range cases {
		got, err := DurationForPlan(plan)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("plan %s: got %d want %d", plan, got, want)
		}
	}
	if _, err := DurationForPlan("gold"); err == nil {
		t.Fatal("expected error for unknown plan")
	}
}
