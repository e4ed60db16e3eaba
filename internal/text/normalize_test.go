// internal/text/normalize_test.go
package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "DIIVAN", "diivan"},
		{"strips diacritics", "öökapp", "ookapp"},
		{"estonian vowels", "söögilaud ja töölaud", "soogilaud ja toolaud"},
		{"collapses punctuation", "laud,  valge!! 120x60cm", "laud valge 120x60cm"},
		{"trims", "  tere  ", "tere"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeKeepLetters(t *testing.T) {
	// Non-Latin letters survive, punctuation does not.
	assert.Equal(t, "kuidas tagastan toote", NormalizeKeepLetters("Kuidas tagastan toote?"))
	assert.Equal(t, "ookapp 50cm", NormalizeKeepLetters("Öökapp, 50cm"))
}

func TestCanonicalToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"laua", "laud"},
		{"lauda", "laud"},
		{"kirjutuslaud", "laud"},
		{"ookapi", "ookapp"},
		{"tvkapp", "tvkapp"},
		{"vitriin", "vitriinkapp"},
		{"raamaturiiul", "riiul"},
		{"kummutid", "kummut"},
		{"diivanit", "diivan"},
		{"kontoritooli", "tool"},
		{"kontoris", "kontor"},
		{"tugitool", "tool"},
		{"lampi", "valgusti"},
		{"vaipa", "vaip"},
		{"peeglit", "peegel"},
		{"muu", "muu"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CanonicalToken(tt.token), tt.token)
	}
}

func TestQueryTokens(t *testing.T) {
	// Stop words and short tokens drop out, furniture stems canonicalize,
	// duplicates collapse.
	tokens := QueryTokens("Otsin väikest öökappi, mis oleks kuni 50cm lai, öökapp palun")
	assert.Contains(t, tokens, "ookapp")
	assert.NotContains(t, tokens, "otsin")
	assert.NotContains(t, tokens, "kuni")
	assert.NotContains(t, tokens, "palun")

	count := 0
	for _, tok := range tokens {
		if tok == "ookapp" {
			count++
		}
	}
	assert.Equal(t, 1, count, "tokens must be deduplicated")
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("valge ookapp tammest", []string{"tvkapp", "ookapp"}))
	assert.False(t, ContainsAny("valge riiul", []string{"tvkapp", "ookapp"}))
	assert.False(t, ContainsAny("valge riiul", nil))
}
