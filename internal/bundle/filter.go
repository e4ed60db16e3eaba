package bundle

import (
	"sisustusbot/internal/models"
	"sisustusbot/internal/text"
)

const (
	roomPoolCap        = 80
	perElementFocusCap = 12
	minLayeredPool     = 5
)

type cardCollector struct {
	seen  map[string]struct{}
	cards []models.ProductCard
}

func newCardCollector() *cardCollector {
	return &cardCollector{seen: make(map[string]struct{})}
}

func (c *cardCollector) add(card models.ProductCard) bool {
	if len(c.cards) >= roomPoolCap {
		return false
	}
	if _, dup := c.seen[card.ID]; dup {
		return true
	}
	c.seen[card.ID] = struct{}{}
	c.cards = append(c.cards, card)
	return true
}

// matchesSpec reports a slug or keyword hit against one element spec.
func matchesSpec(card *models.ProductCard, spec ElementSpec) bool {
	return cardHasSlug(card, spec.Slugs) || cardHasKeyword(card, spec.Keywords)
}

// anchorSpec resolves the user's anchor label to an element spec, falling
// back to a keyword-only spec built from the label itself.
func anchorSpec(answers models.BundleAnswers) (ElementSpec, bool) {
	if answers.AnchorProduct == "" || text.Normalize(answers.AnchorProduct) == "bot vali ise" {
		return ElementSpec{}, false
	}
	if spec, ok := ResolveElementSpec(answers.Room, answers.AnchorProduct); ok {
		return spec, true
	}
	return ElementSpec{Keywords: []string{answers.AnchorProduct}}, true
}

func selectedElementSpecs(answers models.BundleAnswers) []ElementSpec {
	specs := make([]ElementSpec, 0, len(answers.SelectedElements))
	for _, element := range answers.SelectedElements {
		if spec, ok := ResolveElementSpec(answers.Room, element); ok {
			specs = append(specs, spec)
		}
	}
	return specs
}

// protectedSlugSet is every slug that must survive room-level exclusion:
// explicitly allowed, selected-element and anchor slugs.
func protectedSlugSet(answers models.BundleAnswers, elements []ElementSpec, anchor ElementSpec) map[string]struct{} {
	protected := make(map[string]struct{})
	if menu, ok := roomMenus[answers.Room]; ok {
		for _, slug := range menu.AllowedSlugs {
			protected[slug] = struct{}{}
		}
	}
	for _, spec := range elements {
		for _, slug := range spec.Slugs {
			protected[slug] = struct{}{}
		}
	}
	for _, slug := range anchor.Slugs {
		protected[slug] = struct{}{}
	}
	return protected
}

func isExcluded(card *models.ProductCard, excluded []string, protected map[string]struct{}) bool {
	if !cardHasSlug(card, excluded) {
		return false
	}
	for _, slug := range card.CategorySlugs {
		if _, ok := protected[slug]; ok {
			return false
		}
	}
	return true
}

// FilterRoomCandidates builds the room/element scoped candidate pool the
// assembler works from. Layers are concatenated strongest-signal first:
// anchor matches, per-element focused matches (capped so one element cannot
// dominate), element matches across all selections, room allowed-category
// matches, then the legacy room keyword fallback. Room exclusions drop
// clearly wrong slugs unless a protected slug also applies. A too-small
// result falls back to an unfiltered catalog slice so the flow never runs
// out of material.
func FilterRoomCandidates(cards []models.ProductCard, answers models.BundleAnswers) []models.ProductCard {
	anchor, hasAnchor := anchorSpec(answers)
	elements := selectedElementSpecs(answers)
	protected := protectedSlugSet(answers, elements, anchor)

	var excluded []string
	if menu, ok := roomMenus[answers.Room]; ok {
		excluded = menu.ExcludedSlugs
	}

	eligible := make([]models.ProductCard, 0, len(cards))
	for i := range cards {
		if isExcluded(&cards[i], excluded, protected) {
			continue
		}
		eligible = append(eligible, cards[i])
	}

	collector := newCardCollector()

	if hasAnchor {
		for i := range eligible {
			if matchesSpec(&eligible[i], anchor) {
				collector.add(eligible[i])
			}
		}
	}

	for _, spec := range elements {
		focused := 0
		for i := range eligible {
			if focused >= perElementFocusCap {
				break
			}
			if matchesSpec(&eligible[i], spec) {
				collector.add(eligible[i])
				focused++
			}
		}
	}

	for _, spec := range elements {
		for i := range eligible {
			if matchesSpec(&eligible[i], spec) {
				collector.add(eligible[i])
			}
		}
	}

	if menu, ok := roomMenus[answers.Room]; ok {
		for i := range eligible {
			if cardHasSlug(&eligible[i], menu.AllowedSlugs) {
				collector.add(eligible[i])
			}
		}
	}

	if keywords, ok := roomKeywords[answers.Room]; ok {
		for i := range eligible {
			if cardHasKeyword(&eligible[i], keywords) {
				collector.add(eligible[i])
			}
		}
	}

	if len(collector.cards) < minLayeredPool {
		fallback := cards
		if len(fallback) > roomPoolCap {
			fallback = fallback[:roomPoolCap]
		}
		out := make([]models.ProductCard, len(fallback))
		copy(out, fallback)
		return out
	}
	return collector.cards
}

// ElementFocusedPool narrows a pool to products matching one element spec.
func ElementFocusedPool(cards []models.ProductCard, spec ElementSpec) []models.ProductCard {
	var out []models.ProductCard
	for i := range cards {
		if matchesSpec(&cards[i], spec) {
			out = append(out, cards[i])
		}
	}
	return out
}
