package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{name: "identical", a: "dune", b: "dune", expected: 0},
		{name: "kitten to sitting", a: "kitten", b: "sitting", expected: 3},
		{name: "one deletion", a: "dune", b: "dun", expected: 1},
		{name: "empty left", a: "", b: "abc", expected: 3},
		{name: "empty right", a: "abc", b: "", expected: 3},
		{name: "case sensitive", a: "Dune", b: "dune", expected: 1},
		{name: "multibyte runes count once", a: "café", b: "cafe", expected: 1},
		{name: "invalid bytes differ", a: "\xff", b: "\xfe", expected: 1},
		{name: "invalid utf8 against valid counts bytes", a: "caf\xe9", b: "café", expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distance(tt.a, tt.b))
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{name: "kitten sitting", a: "kitten", b: "sitting", expected: 4.0 / 7.0},
		{name: "dun vs dune", a: "dun", b: "dune", expected: 0.75},
		{name: "both empty", a: "", b: "", expected: 1.0},
		{name: "one empty", a: "", b: "dune", expected: 0.0},
		{name: "identical", a: "the great gatsby", b: "the great gatsby", expected: 1.0},
		{name: "completely different", a: "abc", b: "xyz", expected: 0.0},
		{name: "distinct invalid bytes", a: "\xff", b: "\xfe", expected: 0.0},
		{name: "same invalid bytes", a: "ab\xff", b: "ab\xff", expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestPropertySimilaritySymmetric(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.String().Draw(t, "a")
		b := rapid.String().Draw(t, "b")

		if Similarity(a, b) != Similarity(b, a) {
			t.Fatalf("similarity(%q, %q) != similarity(%q, %q)", a, b, b, a)
		}
	})
}

func TestPropertySimilarityReflexive(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.String().Draw(t, "a")

		if got := Similarity(a, a); got != 1.0 {
			t.Fatalf("similarity(%q, %q) = %f, want 1.0", a, a, got)
		}
	})
}

func TestPropertySimilarityBounded(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.String().Draw(t, "a")
		b := rapid.String().Draw(t, "b")

		got := Similarity(a, b)
		if got < 0 || got > 1 {
			t.Fatalf("similarity(%q, %q) = %f, out of [0,1]", a, b, got)
		}
	})
}
