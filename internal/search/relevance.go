package search

import (
	"math"
	"sort"
	"strings"

	"sisustusbot/internal/models"
	"sisustusbot/internal/text"
)

// Relevance is the verdict for one candidate card. Score is only meaningful
// relative to other candidates of the same query.
type Relevance struct {
	Relevant bool
	Score    float64
}

func searchableText(card *models.ProductCard) string {
	parts := []string{card.Title, card.Handle}
	parts = append(parts, card.CategoryNames...)
	parts = append(parts, card.CategorySlugs...)
	parts = append(parts, card.Description)
	return text.Normalize(strings.Join(parts, " "))
}

// ScoreCardRelevance decides whether one candidate fits the query
// semantics. Hard rejects carry distinct negative scores so ranked output
// stays stable when everything is rejected.
func ScoreCardRelevance(card *models.ProductCard, semantics QuerySemantics, queryTokens []string) Relevance {
	searchable := searchableText(card)
	profile := ParseDimensionProfile(card.Title + " " + card.Handle)

	hasRequiredAlias := text.ContainsAny(searchable, semantics.RequiredAliases)
	if len(semantics.RequiredAliases) > 0 && !hasRequiredAlias {
		return Relevance{Relevant: false, Score: -100}
	}
	if text.ContainsAny(searchable, semantics.ExcludedAliases) && !hasRequiredAlias {
		return Relevance{Relevant: false, Score: -80}
	}

	score := 0.0
	for _, token := range queryTokens {
		if strings.Contains(searchable, token) {
			if len(token) >= 6 {
				score += 4
			} else {
				score += 3
			}
		}
	}

	if semantics.RequiredType != TypeNone {
		score += 18
	}

	if semantics.HasDimensionRequest {
		var comparable []float64
		switch semantics.DimensionAxis {
		case AxisWidth:
			comparable = profile.WidthCandidates
		case AxisLength:
			comparable = profile.LengthCandidates
		}
		if len(comparable) == 0 {
			if semantics.DimensionAxis == AxisAny && profile.HasDimensions {
				comparable = []float64{profile.MaxDimension}
			} else {
				comparable = profile.All
			}
		}
		if len(comparable) == 0 {
			return Relevance{Relevant: false, Score: -90}
		}

		if semantics.DimensionMaxCm > 0 {
			closeness := math.Inf(1)
			fits := false
			for _, dim := range comparable {
				if dim <= semantics.DimensionMaxCm+0.5 {
					fits = true
				}
				if delta := math.Abs(semantics.DimensionMaxCm - dim); delta < closeness {
					closeness = delta
				}
			}
			if !fits {
				return Relevance{Relevant: false, Score: -70}
			}
			switch {
			case closeness <= 5:
				score += 8
			case closeness <= 20:
				score += 6
			default:
				score += 4
			}
		}

		if semantics.DimensionMinCm > 0 {
			highest := comparable[0]
			fits := false
			for _, dim := range comparable {
				if dim >= semantics.DimensionMinCm-0.5 {
					fits = true
				}
				if dim > highest {
					highest = dim
				}
			}
			if !fits {
				return Relevance{Relevant: false, Score: -70}
			}
			if highest-semantics.DimensionMinCm <= 20 {
				score += 5
			} else {
				score += 3
			}
		}
	}

	if semantics.SmallPreferred && profile.HasDimensions {
		smallThreshold := 120.0
		if semantics.RequiredType == TypeNightstand {
			smallThreshold = 70
		}
		if profile.MaxDimension > smallThreshold {
			return Relevance{Relevant: false, Score: -50}
		}
		score += 6
	}

	if score < 4 {
		return Relevance{Relevant: false, Score: score}
	}
	return Relevance{Relevant: true, Score: score}
}

// RankCandidates filters a candidate pool down to the cards relevant to the
// query and orders them by descending relevance score. Ties keep the pool's
// original order, so the ranking is a pure function of its inputs.
func RankCandidates(cards []models.ProductCard, query string) []models.ProductCard {
	semantics := DetectQuerySemantics(query)
	queryTokens := text.QueryTokens(query)

	type ranked struct {
		card  models.ProductCard
		score float64
	}
	accepted := make([]ranked, 0, len(cards))
	for i := range cards {
		verdict := ScoreCardRelevance(&cards[i], semantics, queryTokens)
		if verdict.Relevant {
			accepted = append(accepted, ranked{card: cards[i], score: verdict.Score})
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].score > accepted[j].score
	})

	out := make([]models.ProductCard, 0, len(accepted))
	for _, r := range accepted {
		out = append(out, r.card)
	}
	return out
}
