package bundle

import (
	"math"
	"sort"

	"sisustusbot/internal/models"
)

const maxAlternatives = 4

func slugOverlap(cardSlugs, specSlugs []string) int {
	overlap := 0
	for _, slug := range cardSlugs {
		for _, want := range specSlugs {
			if slug == want {
				overlap++
				break
			}
		}
	}
	return overlap
}

// RankAlternatives scores the pool as replacements for one bundle item and
// returns the top four, excluding products already used in the bundle.
// Accessory slots only accept accessory-type candidates and vice versa,
// unless the candidate's inferred element key matches the item's exactly.
func RankAlternatives(item *models.BundleItem, bundle *models.Bundle, pool []models.ProductCard, answers models.BundleAnswers) []models.ProductCard {
	used := make(map[string]struct{}, len(bundle.Items))
	for _, placed := range bundle.Items {
		used[placed.ID] = struct{}{}
	}

	itemKey := item.ElementKey
	if itemKey == "" {
		itemKey = InferElementKey(&item.ProductCard)
	}
	itemSpec := elementSpecs[itemKey]
	itemPrice := models.ParsePrice(item.Price)
	itemIsAccessory := item.RoleInBundle == models.RoleAccessory

	type ranked struct {
		card  models.ProductCard
		score float64
	}
	var candidates []ranked

	for i := range pool {
		candidate := &pool[i]
		if _, taken := used[candidate.ID]; taken {
			continue
		}

		candidateKey := InferElementKey(candidate)
		sameKey := itemKey != "" && candidateKey == itemKey

		if itemIsAccessory {
			if !accessoryKeys[candidateKey] && !sameKey {
				continue
			}
		} else if accessoryKeys[candidateKey] && !sameKey {
			continue
		}

		score := ScoreProduct(candidate, answers)

		overlap := slugOverlap(candidate.CategorySlugs, itemSpec.Slugs)
		keywordHit := len(itemSpec.Keywords) > 0 && cardHasKeyword(candidate, itemSpec.Keywords)

		if sameKey {
			score += 42
		}
		score += float64(15 * overlap)
		if keywordHit {
			score += 12
		}
		if !sameKey && overlap == 0 && !keywordHit {
			score -= 38
		}
		if item.RoleInBundle == models.RoleAnchor {
			score += 8
		}

		candidatePrice := models.ParsePrice(candidate.Price)
		if itemPrice > 0 && candidatePrice > 0 {
			relDelta := math.Abs(candidatePrice-itemPrice) / itemPrice
			if bonus := 10 - relDelta*25; bonus > 0 {
				score += bonus
			}
		}

		candidates = append(candidates, ranked{card: *candidate, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := make([]models.ProductCard, 0, maxAlternatives)
	for _, r := range candidates {
		if len(out) >= maxAlternatives {
			break
		}
		out = append(out, r.card)
	}
	return out
}
