package bundle

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"sisustusbot/internal/ai"
	"sisustusbot/internal/catalog"
	"sisustusbot/internal/common/errors"
	"sisustusbot/internal/common/logger"
	"sisustusbot/internal/models"
	"sisustusbot/internal/text"
)

const (
	maxBundles        = 3
	aiCatalogCap      = 60
	whyAnchor         = "Komplekti põhitoode"
	whySecondary      = "Täiendab põhitoodet"
	whyAccessory      = "Viimistleb ruumi"
	whyAnchorPromoted = "Komplekti põhitoode (bot valis automaatselt)"
)

// Assembler builds complete furniture bundles from the cached catalog.
type Assembler struct {
	catalog *catalog.Service
	assist  *ai.Assist
	log     logger.Logger
}

// NewAssembler wires the assembler to its collaborators.
func NewAssembler(c *catalog.Service, assist *ai.Assist, log logger.Logger) *Assembler {
	return &Assembler{catalog: c, assist: assist, log: log}
}

// GenerateBundles produces 1-3 bundles for the questionnaire answers. When
// the user selected explicit room elements, the strict selection-driven
// bundle always comes first; AI-planned bundles are appended only when
// their product set differs, and the role-slot fallback fills in when the
// AI path yields nothing.
func (a *Assembler) GenerateBundles(ctx context.Context, answers models.BundleAnswers) ([]models.Bundle, error) {
	if strings.TrimSpace(answers.Room) == "" {
		return nil, errors.NewInvalidInputError("room is required")
	}

	snapshot := a.catalog.FetchProductCatalog(ctx)
	if len(snapshot) == 0 {
		return nil, errors.NewBundleGenerationFailedError("product catalog is empty or unavailable")
	}
	catalogCards := make([]models.ProductCard, 0, len(snapshot))
	for _, product := range snapshot {
		catalogCards = append(catalogCards, product.ToCard())
	}

	pool := FilterRoomCandidates(catalogCards, answers)

	var bundles []models.Bundle
	var strictSignature string
	if len(answers.SelectedElements) > 0 {
		if strict := a.assembleStrict(answers, pool, catalogCards); strict != nil {
			strictSignature = strict.Signature()
			bundles = append(bundles, *strict)
		}
	}

	aiBundles := a.aiPlannedBundles(ctx, answers, pool)
	if len(aiBundles) > 0 {
		for _, b := range aiBundles {
			if strictSignature != "" && b.Signature() == strictSignature {
				continue
			}
			bundles = append(bundles, b)
		}
	} else {
		for _, b := range a.assembleRoleSlots(answers, pool) {
			if strictSignature != "" && b.Signature() == strictSignature {
				continue
			}
			bundles = append(bundles, b)
		}
	}

	if len(bundles) > maxBundles {
		bundles = bundles[:maxBundles]
	}
	if len(bundles) == 0 {
		return nil, errors.NewBundleGenerationFailedError("no bundle could be assembled from the catalog")
	}

	budgetMax := ResolveBudget(answers)
	for i := range bundles {
		a.finalizeBundle(&bundles[i], answers, pool, budgetMax)
	}
	return bundles, nil
}

// finalizeBundle attaches ranked alternatives, recomputes the total from
// displayed prices and records a budget-overage trade-off.
func (a *Assembler) finalizeBundle(b *models.Bundle, answers models.BundleAnswers, pool []models.ProductCard, budgetMax float64) {
	for i := range b.Items {
		b.Items[i].Alternatives = RankAlternatives(&b.Items[i], b, pool, answers)
	}
	b.RecomputeTotal()
	if b.TotalPrice > budgetMax {
		overage := fmt.Sprintf("Koguhind ületab eelarve %.0f€ võrra", b.TotalPrice-budgetMax)
		for _, existing := range b.Tradeoffs {
			if existing == overage {
				return
			}
		}
		b.Tradeoffs = append(b.Tradeoffs, overage)
	}
}

// elementMatchScore rates one candidate against an element spec for the
// strict assembly path.
func elementMatchScore(card *models.ProductCard, spec ElementSpec, answers models.BundleAnswers) float64 {
	score := 0.0
	if cardHasSlug(card, spec.Slugs) {
		score += 28
	}
	if cardHasKeyword(card, spec.Keywords) {
		score += 10
	}

	titleNorm := text.Normalize(card.Title)
	if strings.Contains(titleNorm, "defekt") || strings.Contains(titleNorm, "kahjustus") {
		score -= 4
	}

	// Bedrooms need real beds: sofa-bed styled products leak in through
	// shared "voodi" vocabulary and must lose to proper bed frames.
	if answers.Room == "Magamistuba" && spec.Key == "voodi" {
		if strings.Contains(titleNorm, "diivanvoodi") || strings.Contains(titleNorm, "diivan") || strings.Contains(titleNorm, "sofa bed") {
			score -= 30
		} else if strings.Contains(titleNorm, "voodi") {
			score += 8
		}
	}
	return score
}

func pickTopForElement(pool []models.ProductCard, spec ElementSpec, answers models.BundleAnswers, used map[string]struct{}) *models.ProductCard {
	bestScore := 0.0
	var best *models.ProductCard
	for i := range pool {
		if _, taken := used[pool[i].ID]; taken {
			continue
		}
		score := elementMatchScore(&pool[i], spec, answers)
		if score > bestScore {
			bestScore = score
			best = &pool[i]
		}
	}
	return best
}

// assembleStrict builds the selection-driven bundle: one product per
// selected element, anchor role assigned from the stated anchor label.
// Unresolved elements become trade-offs, never a failure.
func (a *Assembler) assembleStrict(answers models.BundleAnswers, pool, catalogCards []models.ProductCard) *models.Bundle {
	used := make(map[string]struct{})
	var items []models.BundleItem
	var tradeoffs []string

	for _, element := range answers.SelectedElements {
		spec, ok := ResolveElementSpec(answers.Room, element)
		if !ok {
			tradeoffs = append(tradeoffs, fmt.Sprintf("Elemendile \"%s\" ei leidunud sobivat toodet", element))
			continue
		}

		picked := pickTopForElement(pool, spec, answers, used)
		if picked == nil {
			picked = pickTopForElement(ElementFocusedPool(catalogCards, spec), spec, answers, used)
		}
		if picked == nil {
			tradeoffs = append(tradeoffs, fmt.Sprintf("Elemendile \"%s\" ei leidunud sobivat toodet", element))
			continue
		}

		used[picked.ID] = struct{}{}
		role := models.RoleSecondary
		why := whySecondary
		if accessoryKeys[spec.Key] {
			role = models.RoleAccessory
			why = whyAccessory
		}
		items = append(items, models.BundleItem{
			ProductCard:  *picked,
			RoleInBundle: role,
			WhyChosen:    why,
			ElementKey:   spec.Key,
		})
	}

	if len(items) == 0 {
		return nil
	}

	assignAnchor(items, answers)

	budgetMax := ResolveBudget(answers)
	bundle := &models.Bundle{
		Title:        "Sinu valitud komplekt",
		StyleSummary: styleSummary(answers),
		Items:        items,
		KeyReasons:   keyReasons(answers, budgetMax),
		Tradeoffs:    tradeoffs,
	}
	bundle.RecomputeTotal()
	return bundle
}

// assignAnchor promotes the item matching the stated anchor label, by
// element-key equality first and substring match second. Without a match
// the first placed item becomes the anchor and is flagged as an automatic
// choice.
func assignAnchor(items []models.BundleItem, answers models.BundleAnswers) {
	anchorKey := ""
	if spec, ok := ResolveElementSpec(answers.Room, answers.AnchorProduct); ok {
		anchorKey = spec.Key
	}
	normalizedAnchor := text.Normalize(answers.AnchorProduct)

	anchorIdx := -1
	if anchorKey != "" {
		for i := range items {
			if items[i].ElementKey == anchorKey {
				anchorIdx = i
				break
			}
		}
	}
	if anchorIdx < 0 && normalizedAnchor != "" && normalizedAnchor != "bot vali ise" {
		for i := range items {
			key := items[i].ElementKey
			if strings.Contains(normalizedAnchor, key) || strings.Contains(key, normalizedAnchor) {
				anchorIdx = i
				break
			}
		}
	}

	if anchorIdx >= 0 {
		items[anchorIdx].RoleInBundle = models.RoleAnchor
		items[anchorIdx].WhyChosen = whyAnchor
		return
	}
	items[0].RoleInBundle = models.RoleAnchor
	items[0].WhyChosen = whyAnchorPromoted
}

// assembleRoleSlots is the role-slot fallback: rank each slot's keyword
// candidates by the preference scorer and build up to three variants from
// the i-th unused pick per slot.
func (a *Assembler) assembleRoleSlots(answers models.BundleAnswers, pool []models.ProductCard) []models.Bundle {
	slots, ok := roomRoles[answers.Room]
	if !ok {
		slots = genericRoles
	}

	slotRanked := make([][]models.ProductCard, len(slots))
	for slotIdx, slot := range slots {
		var candidates []models.ProductCard
		if len(slot.Keywords) == 0 {
			candidates = pool
		} else {
			for i := range pool {
				if cardHasKeyword(&pool[i], slot.Keywords) {
					candidates = append(candidates, pool[i])
				}
			}
			if len(candidates) == 0 {
				candidates = pool
			}
		}

		ranked := make([]models.ProductCard, len(candidates))
		copy(ranked, candidates)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ScoreProduct(&ranked[i], answers) > ScoreProduct(&ranked[j], answers)
		})
		if len(ranked) > 10 {
			ranked = ranked[:10]
		}
		slotRanked[slotIdx] = ranked
	}

	budgetMax := ResolveBudget(answers)
	var bundles []models.Bundle
	for variant := 0; variant < maxBundles; variant++ {
		used := make(map[string]struct{})
		var items []models.BundleItem

		for slotIdx, slot := range slots {
			candidates := slotRanked[slotIdx]

			var picked *models.ProductCard
			for idx := variant; idx < len(candidates); idx++ {
				if _, taken := used[candidates[idx].ID]; !taken {
					picked = &candidates[idx]
					break
				}
			}
			if picked == nil && slot.Required {
				for i := range pool {
					if _, taken := used[pool[i].ID]; !taken {
						picked = &pool[i]
						break
					}
				}
			}
			if picked == nil {
				continue
			}

			used[picked.ID] = struct{}{}
			why := whySecondary
			switch slot.Role {
			case models.RoleAnchor:
				why = whyAnchor
			case models.RoleAccessory:
				why = whyAccessory
			}
			items = append(items, models.BundleItem{
				ProductCard:  *picked,
				RoleInBundle: slot.Role,
				WhyChosen:    why,
				ElementKey:   InferElementKey(picked),
			})
		}

		if len(items) == 0 {
			continue
		}

		bundle := models.Bundle{
			Title:        fmt.Sprintf("Komplekt %d", variant+1),
			StyleSummary: styleSummary(answers),
			Items:        items,
			KeyReasons:   keyReasons(answers, budgetMax),
		}
		bundle.RecomputeTotal()
		bundles = append(bundles, bundle)
	}
	return bundles
}

// aiPlannedBundles lets the assist plan bundles over the filtered pool and
// maps its id picks back onto real cards. Nil when the assist is disabled,
// fails, or references nothing usable.
func (a *Assembler) aiPlannedBundles(ctx context.Context, answers models.BundleAnswers, pool []models.ProductCard) []models.Bundle {
	items := pool
	if len(items) > aiCatalogCap {
		items = items[:aiCatalogCap]
	}
	catalogItems := make([]ai.CatalogItem, 0, len(items))
	byID := make(map[string]models.ProductCard, len(items))
	for _, card := range items {
		byID[card.ID] = card
		catalogItems = append(catalogItems, ai.CatalogItem{
			ID:          card.ID,
			Title:       card.Title,
			Price:       card.Price,
			Categories:  card.CategoryNames,
			Description: card.Description,
		})
	}

	plans := a.assist.GenerateBundles(ctx, catalogItems, answers)
	if len(plans) == 0 {
		return nil
	}

	validRoles := map[string]bool{
		models.RoleAnchor:    true,
		models.RoleSecondary: true,
		models.RoleAccessory: true,
	}

	var bundles []models.Bundle
	for _, plan := range plans {
		used := make(map[string]struct{})
		var bundleItems []models.BundleItem
		for _, pick := range plan.Items {
			card, ok := byID[pick.ID]
			if !ok {
				continue
			}
			if _, dup := used[card.ID]; dup {
				continue
			}
			used[card.ID] = struct{}{}

			role := pick.RoleInBundle
			if !validRoles[role] {
				role = models.RoleSecondary
			}
			why := pick.WhyChosen
			if why == "" {
				why = whySecondary
			}
			bundleItems = append(bundleItems, models.BundleItem{
				ProductCard:  card,
				RoleInBundle: role,
				WhyChosen:    why,
				ElementKey:   InferElementKey(&card),
			})
		}
		if len(bundleItems) == 0 {
			continue
		}

		bundle := models.Bundle{
			Title:        plan.Title,
			StyleSummary: plan.StyleSummary,
			Items:        bundleItems,
			KeyReasons:   plan.KeyReasons,
			Tradeoffs:    plan.Tradeoffs,
		}
		if bundle.Title == "" {
			bundle.Title = fmt.Sprintf("Komplekt %d", len(bundles)+1)
		}
		if bundle.StyleSummary == "" {
			bundle.StyleSummary = styleSummary(answers)
		}
		bundle.RecomputeTotal()
		bundles = append(bundles, bundle)
	}
	return bundles
}

func styleSummary(answers models.BundleAnswers) string {
	return fmt.Sprintf("%s stiil, %s toonid", answers.Style, strings.ToLower(answers.ColorTone))
}

func keyReasons(answers models.BundleAnswers, budgetMax float64) []string {
	third := fmt.Sprintf("%s stiil", answers.Style)
	if answers.HasChildren || answers.HasPets {
		third = "Vastupidavad materjalid"
	}
	return []string{
		fmt.Sprintf("Sobib %s", strings.ToLower(answers.Room)),
		fmt.Sprintf("Eelarve kuni %.0f€", budgetMax),
		third,
	}
}
