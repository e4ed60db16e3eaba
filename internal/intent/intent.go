// Package intent classifies chat messages and extracts shopping constraints
// with deterministic rules. The AI classifier, when available, can override
// the rule-based result for everything except acknowledgments and explicit
// budget mentions.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"sisustusbot/internal/models"
)

// Constraints is the structured shopping profile extracted from a message.
type Constraints struct {
	Query        string   `json:"query"`
	BudgetMax    float64  `json:"budgetMax,omitempty"`
	Goal         string   `json:"goal,omitempty"` // "style" | "function" | "outdoor"
	ProductTypes []string `json:"productTypes"`
	Tags         []string `json:"tags"`
}

var (
	// "\b" is ASCII-only and "€" is not a word rune, so the boundary has to
	// sit inside the spelled-out currency alternatives, never after "€".
	budgetWithKeywordRe  = regexp.MustCompile(`(?i)(?:eel\s*arve|eelarve|budget|hinnapiir|hinnaga|hind)\s*(?:on|=|:|kuni|alla|under|max|<=?)?\s*(\d{1,6}(?:[.,]\d{1,2})?)\s*(?:€|(?:eur|euro|eurot)\b|\b)`)
	budgetWithCurrencyRe = regexp.MustCompile(`(?i)(?:kuni|alla|under|max|<=?)\s*(\d{1,6}(?:[.,]\d{1,2})?)\s*(?:€|(?:eur|euro|eurot)\b)`)
	dimensionUnitRe      = regexp.MustCompile(`(?i)\b(?:cm|m|meetri|meetrit|meeter)\b`)
	greetingOnlyRe       = regexp.MustCompile(`(?i)^\s*(tere|tervist|tsau|hei|hello|hey)\s*[!,.?]*\s*$`)
	acknowledgmentRe     = regexp.MustCompile(`(?i)^\s*(okei|ok|okay|selge|sain aru|mhm|jaa?h?|ei|t[aä]nan|ait[aä]h|super|lahe|vahva|kena|tore|h[aä][aä]sti|n[aä]gemist|head aega|davai|n[oõ]us|j[aä]rjest)\s*[!,.?]*\s*$`)

	shippingRe  = regexp.MustCompile(`tarne|shipping|kohale|kohaletoimet|kuller|pakiautomaat|omniva|smartpost|itella|tarneaeg|laos|j[aä]reltellit`)
	returnsRe   = regexp.MustCompile(`tagast|refund|return|raha tagasi|taganemis|pretensioon|reklamatsioon|defekt|katki|kahjust`)
	faqRe       = regexp.MustCompile(`kontakt|telefon|email|e-post|klienditugi|support|garantii|privaatsus|isikuandmed|andmekaitse|tingimused|m[uü][uü]gitingimused`)
	orderHelpRe = regexp.MustCompile(`tellimus|order|tracking|makse|makstud|maksmine|kassa|arve|status|saadetis`)

	productRecoRe = regexp.MustCompile(`soovita|soovitus|otsi|otsin|soovin|vajan|milline|diivan|tugitool|tool|laud|s[öo][öo]gilaud|diivanilaud|voodi|riiul|kapp|kummut|valgust|lamp|vaip|peegel|aiam[öo][öo]bel|terrass|nordic|skandinaav|sisustus|mööbel|moobel|eelarve|kuni\s*\d|under\s*\d|<=?\s*\d`)

	productFallbackRe = regexp.MustCompile(`toode|tooted|toote|mööbel|moobel|sisustus`)
)

// ExtractBudgetMax pulls a euro budget cap out of free text. Budget keywords
// win over bare "kuni N €" phrases, and a currency match adjacent to a length
// unit is rejected so "kuni 2 meetri laiune" never becomes a 2€ budget.
func ExtractBudgetMax(text string) float64 {
	if m := budgetWithKeywordRe.FindStringSubmatch(text); m != nil {
		if parsed := parseAmount(m[1]); parsed > 0 {
			return parsed
		}
	}

	if loc := budgetWithCurrencyRe.FindStringSubmatchIndex(text); loc != nil {
		end := loc[1] + 10
		if end > len(text) {
			end = len(text)
		}
		tail := text[loc[0]:end]
		if dimensionUnitRe.MatchString(tail) {
			return 0
		}
		if parsed := parseAmount(text[loc[2]:loc[3]]); parsed > 0 {
			return parsed
		}
	}

	return 0
}

func parseAmount(raw string) float64 {
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || value <= 0 {
		return 0
	}
	return value
}

// Detect classifies a message with the rule cascade: acknowledgments first,
// then budget mentions, then service topics in priority order, then product
// interest, with greeting and smalltalk as the tail.
func Detect(input string) models.Intent {
	text := strings.ToLower(input)

	if acknowledgmentRe.MatchString(input) {
		return models.IntentSmalltalk
	}
	if ExtractBudgetMax(text) > 0 {
		return models.IntentProductReco
	}

	switch {
	case orderHelpRe.MatchString(text):
		return models.IntentOrderHelp
	case shippingRe.MatchString(text):
		return models.IntentShipping
	case returnsRe.MatchString(text):
		return models.IntentReturns
	case faqRe.MatchString(text):
		return models.IntentFAQ
	case productRecoRe.MatchString(text):
		return models.IntentProductReco
	}

	if productFallbackRe.MatchString(text) {
		return models.IntentProductReco
	}
	if greetingOnlyRe.MatchString(input) {
		return models.IntentGreeting
	}

	return models.IntentSmalltalk
}

// IsAcknowledgment reports whether the message is a bare acknowledgment that
// must never be escalated to another intent.
func IsAcknowledgment(input string) bool {
	return acknowledgmentRe.MatchString(input)
}

// HasExplicitBudget reports whether the message carries a parseable budget.
func HasExplicitBudget(input string) bool {
	return ExtractBudgetMax(strings.ToLower(input)) > 0
}

type typeRule struct {
	pattern *regexp.Regexp
	label   string
}

var productTypeRules = []typeRule{
	{regexp.MustCompile(`öö\s*kapp|oo\s*kapp|ookapp|nightstand`), "öökapp"},
	{regexp.MustCompile(`tv\s*kapp|tvkapp`), "tv-kapp"},
	{regexp.MustCompile(`vitriinkapp`), "vitriinkapp"},
	{regexp.MustCompile(`kummut`), "kummut"},
	{regexp.MustCompile(`riiul|raamaturiiul|seinariiul`), "riiul"},
	{regexp.MustCompile(`diivan|nurgadiivan|mooduldiivan`), "diivan"},
	{regexp.MustCompile(`tugitool|tool|söögitool|soogitool|baaritool`), "tool"},
	{regexp.MustCompile(`laud|söögilaud|soogilaud|diivanilaud|abilaud|kirjutuslaud`), "laud"},
	{regexp.MustCompile(`voodi|madrats`), "voodi"},
	{regexp.MustCompile(`valgust|lamp|laevalgusti|lauavalgusti|põrandavalgusti|porandavalgusti`), "valgusti"},
	{regexp.MustCompile(`vaip`), "vaip"},
	{regexp.MustCompile(`peegel`), "peegel"},
	{regexp.MustCompile(`terrass|aed|õuemööbel|ouemoobel|aiamööbel|aiamoobel`), "aiamööbel"},
}

var (
	specificKappRe = regexp.MustCompile(`öö\s*kapp|oo\s*kapp|ookapp|nightstand|tv\s*kapp|tvkapp|vitriinkapp|kummut`)
	genericKappRe  = regexp.MustCompile(`kapp`)

	outdoorGoalRe  = regexp.MustCompile(`välis|outdoor|terrass|aed|rõdu|rodu`)
	styleGoalRe    = regexp.MustCompile(`stiil|disain|värv|varv|nordic|skandinaav`)
	functionGoalRe = regexp.MustCompile(`praktiline|mahut|funktsioon|hoiusta|ladusta`)
)

// ParseConstraints extracts budget, goal and product type hints from a
// message. A generic "kapp" is only kept when no specific cabinet type was
// mentioned.
func ParseConstraints(input string) Constraints {
	text := strings.ToLower(input)

	goal := ""
	switch {
	case outdoorGoalRe.MatchString(text):
		goal = "outdoor"
	case styleGoalRe.MatchString(text):
		goal = "style"
	case functionGoalRe.MatchString(text):
		goal = "function"
	}

	seen := make(map[string]bool)
	productTypes := []string{}
	for _, rule := range productTypeRules {
		if rule.pattern.MatchString(text) && !seen[rule.label] {
			seen[rule.label] = true
			productTypes = append(productTypes, rule.label)
		}
	}
	if genericKappRe.MatchString(text) && !specificKappRe.MatchString(text) && !seen["kapp"] {
		productTypes = append(productTypes, "kapp")
	}

	tags := []string{}
	if goal != "" {
		tags = append(tags, "goal_"+goal)
	}

	return Constraints{
		Query:        input,
		BudgetMax:    ExtractBudgetMax(text),
		Goal:         goal,
		ProductTypes: productTypes,
		Tags:         tags,
	}
}
