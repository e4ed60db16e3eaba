package bundle

import (
	"strings"

	"sisustusbot/internal/models"
)

// ScoreProduct rates how well one product fits the questionnaire answers.
// Only relative ordering matters. The material-preference bonus and the
// pet/child conflict penalty can both fire for the same product; a preferred
// material that conflicts with the flags nets out negative on purpose.
func ScoreProduct(card *models.ProductCard, answers models.BundleAnswers) float64 {
	allText := strings.ToLower(strings.Join(append([]string{card.Title}, card.CategoryNames...), " "))
	score := 0.0

	for _, kw := range styleKeywords[answers.Style] {
		if strings.Contains(allText, kw) {
			score += 3
			break
		}
	}

	for _, kw := range colorToneKeywords[answers.ColorTone] {
		if strings.Contains(allText, kw) {
			score += 2
			break
		}
	}

	material := answers.MaterialPreference
	if material != "" && material != noMaterialPreference {
		if strings.Contains(allText, strings.ToLower(material)) {
			score += 2
		}
		for conflictMaterial, flags := range materialConflicts {
			if !strings.Contains(allText, conflictMaterial) {
				continue
			}
			for _, flag := range flags {
				if (flag == "hasPets" && answers.HasPets) || (flag == "hasChildren" && answers.HasChildren) {
					score -= 3
				}
			}
		}
	}

	if answers.HasPets || answers.HasChildren {
		if strings.Contains(allText, "kunstnahk") || strings.Contains(allText, "mikrofiiber") || strings.Contains(allText, "washable") {
			score += 2
		}
	}

	budgetMax := ResolveBudget(answers)
	price := models.ParsePrice(card.Price)
	if price > 0 && price <= budgetMax {
		score += 1
	}
	if price > budgetMax*1.15 {
		score -= 2
	}

	return score
}
