package reconcile

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"beer descriptor", "4Пивовара - Black Jesus White Pepper (Porter - American. OG 17, ABV 6.7%, IBU 69)", "4Пивовара - Black Jesus White Pepper"},
		{"no descriptor", "Aircraft - Шоколадный Стаут", "Aircraft - Шоколадный Стаут"},
		{"repeated spaces", "  План Б   -  Parhelion  ", "План Б - Parhelion"},
		{"first descriptor only", "X Beer (IPA) (0.5)", "X Beer"},
		{"bracket without space", "Cider(Apple)", "Cider(Apple)"},
		{"only descriptor", " (ABV 5%)", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	samples := []string{
		"a  (b", "a \t  b", "  x  (y)  (z)", "Пиво  светлое   (ABV 4%)", "  a  b  ",
	}
	for _, s := range samples {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}

	idempotent := func(s string) bool {
		once := Normalize(s)
		return Normalize(once) == once
	}
	if err := quick.Check(idempotent, nil); err != nil {
		t.Fatalf("normalize is not idempotent: %v", err)
	}
}
