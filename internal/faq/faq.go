package faq

import (
	"fmt"
	"regexp"
	"strings"

	"sisustusbot/internal/models"
	"sisustusbot/internal/text"
)

// Answer is a scored FAQ response with the policy page most relevant to the
// question.
type Answer struct {
	Answer          string `json:"answer"`
	Links           Links  `json:"links"`
	RecommendedLink string `json:"recommendedLink"`
	Matched         bool   `json:"-"`
}

var (
	shippingLinkRe = regexp.MustCompile(`tarne|shipping|kohaletoimet|kuller|pakiautomaat|laos|jareltellit`)
	returnsLinkRe  = regexp.MustCompile(`tagast|refund|return|taganemis|raha tagasi|defekt`)
	warrantyLinkRe = regexp.MustCompile(`garantii|warranty|pretensioon|reklamatsioon`)
	paymentLinkRe  = regexp.MustCompile(`makse|maksmine|kaart|pangalink|ulekanne|montonio`)
	privacyLinkRe  = regexp.MustCompile(`privaatsus|isikuandmed|gdpr|andmekaitse`)
	contactLinkRe  = regexp.MustCompile(`kontakt|telefon|email|e post|klienditugi|support`)
	termsLinkRe    = regexp.MustCompile(`tingimus|muugitingimus|tehing|leping`)
)

func recommendedLink(normalized string) string {
	switch {
	case shippingLinkRe.MatchString(normalized):
		return Commerce.Links.Shipping
	case returnsLinkRe.MatchString(normalized):
		return Commerce.Links.Returns
	case warrantyLinkRe.MatchString(normalized):
		return Commerce.Links.Warranty
	case paymentLinkRe.MatchString(normalized):
		return Commerce.Links.PaymentMethods
	case privacyLinkRe.MatchString(normalized):
		return Commerce.Links.Privacy
	case contactLinkRe.MatchString(normalized):
		return Commerce.Links.Contact
	case termsLinkRe.MatchString(normalized):
		return Commerce.Links.SalesTerms
	}
	return Commerce.Links.Contact
}

// AnswerQuestion scores the question against the FAQ entries. A keyword
// substring is worth 4 points when the keyword is 8+ characters, otherwise 3,
// plus 1 per standalone token overlap. Entries below 3 points yield the
// apologetic contact fallback.
func AnswerQuestion(question string) Answer {
	normalized := text.NormalizeKeepLetters(question)
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		if len([]rune(tok)) > 2 {
			tokens[tok] = true
		}
	}

	bestScore := -1
	bestAnswer := ""
	for _, entry := range Entries {
		score := 0
		for _, kwRaw := range entry.Keywords {
			kw := text.NormalizeKeepLetters(kwRaw)
			if kw == "" {
				continue
			}
			if strings.Contains(normalized, kw) {
				if len([]rune(kw)) >= 8 {
					score += 4
				} else {
					score += 3
				}
			}
			for _, part := range strings.Fields(kw) {
				if len([]rune(part)) > 2 && tokens[part] {
					score++
				}
			}
		}
		if score > bestScore {
			bestScore = score
			bestAnswer = entry.Answer
		}
	}

	link := recommendedLink(normalized)
	if bestScore >= 3 {
		return Answer{Answer: bestAnswer, Links: Commerce.Links, RecommendedLink: link, Matched: true}
	}

	return Answer{
		Answer: fmt.Sprintf("Kahjuks ei leidnud sellele kohe täpset vastust. Võta ühendust: %s või %s. Vaata ka: %s",
			Commerce.SupportEmail, Commerce.SupportPhone, link),
		Links:           Commerce.Links,
		RecommendedLink: link,
		Matched:         false,
	}
}

// ComputeCommerceActions derives cart nudges from the subtotal: the gap to
// free shipping and the next discount tier hint.
func ComputeCommerceActions(subtotal float64) models.CommerceActions {
	actions := models.CommerceActions{}

	if Commerce.FreeShippingThreshold > 0 {
		gap := Commerce.FreeShippingThreshold - subtotal
		if gap < 0 {
			gap = 0
		}
		actions.FreeShippingGap = &gap
	}

	for _, tier := range Commerce.DiscountThresholds {
		if subtotal < tier.Subtotal {
			actions.ApplyDiscountHint = fmt.Sprintf("Lisa %.2f€ eest ja saa %.0f%% allahindlust.", tier.Subtotal-subtotal, tier.DiscountPct)
			break
		}
	}

	return actions
}
