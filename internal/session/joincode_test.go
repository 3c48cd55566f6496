package session

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestNewJoinCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := newJoinCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		testutil.AssertEqual(t, "length", len(code), codeLength)
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Errorf("code %q contains %q outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}

	// Not a uniqueness guarantee, but 100 identical draws would mean the
	// generator is broken.
	if len(seen) < 2 {
		t.Error("expected varied codes")
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp string
	}{
		"lowercase":  {in: "abc234", exp: "ABC234"},
		"mixed case": {in: "aBc234", exp: "ABC234"},
		"whitespace": {in: "  ABC234 ", exp: "ABC234"},
		"empty":      {in: "", exp: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "normalized", normalizeCode(tt.in), tt.exp)
		})
	}
}
