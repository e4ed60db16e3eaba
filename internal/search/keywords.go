package search

import (
	"strings"

	"sisustusbot/internal/text"
)

type keywordRule struct {
	triggers []string
	mapped   []string
}

var keywordRules = []keywordRule{
	{[]string{"ookapp", "oo kapp", "nightstand"}, []string{"öökapp"}},
	{[]string{"tvkapp", "tv kapp"}, []string{"tv-kapp"}},
	{[]string{"vitriinkapp"}, []string{"vitriinkapp"}},
	{[]string{"kummut"}, []string{"kummut"}},
	{[]string{"riiul", "raamaturiiul", "seinariiul"}, []string{"riiul"}},
	{[]string{"diivan", "nurgadiivan", "mooduldiivan"}, []string{"diivan"}},
	{[]string{"tugitool"}, []string{"tugitool"}},
	{[]string{"tool", "soogitool", "baaritool"}, []string{"tool"}},
	{[]string{"kontor", "kontoritool", "office chair", "chair"}, []string{"kontoritool", "tool"}},
	{[]string{"laud", "soogilaud", "diivanilaud", "abilaud", "kirjutuslaud", "konsoollaud", "aialaud"}, []string{"laud"}},
	{[]string{"voodi", "madrats"}, []string{"voodi"}},
	{[]string{"valgust", "lamp"}, []string{"valgusti"}},
	{[]string{"vaip"}, []string{"vaip"}},
	{[]string{"peegel"}, []string{"peegel"}},
	{[]string{"terrass", "aed", "ouemoobel", "aiamoobel"}, []string{"aiamööbel"}},
	{[]string{"nordic", "skandinaav"}, []string{"nordic"}},
}

// ExtractSearchKeywords maps interior vocabulary in a free-text message to
// storefront search terms. Generic "kapp" stays generic: it is only added
// when no specific cabinet sub-type was mentioned, so a nightstand query
// does not fan out into every cabinet category.
func ExtractSearchKeywords(message string) []string {
	normalized := text.Normalize(message)
	seen := make(map[string]struct{})
	var keywords []string

	add := func(value string) {
		if _, dup := seen[value]; dup {
			return
		}
		seen[value] = struct{}{}
		keywords = append(keywords, value)
	}

	for _, rule := range keywordRules {
		if text.ContainsAny(normalized, rule.triggers) {
			for _, mapped := range rule.mapped {
				add(mapped)
			}
		}
	}

	if strings.Contains(normalized, "kapp") &&
		!strings.Contains(normalized, "ookapp") &&
		!strings.Contains(normalized, "tvkapp") {
		add("kapp")
	}

	return keywords
}
