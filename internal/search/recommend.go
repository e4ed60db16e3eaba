package search

import (
	"context"
	"strings"

	"sisustusbot/internal/ai"
	"sisustusbot/internal/catalog"
	"sisustusbot/internal/common/logger"
	"sisustusbot/internal/models"
	"sisustusbot/internal/text"
)

const (
	searchPoolCap    = 60
	catalogSliceCap  = 180
	candidatePoolCap = 120
	defaultPickNote  = "Sobib sinu otsingule."
)

// RecommendInput carries the parsed constraints for one recommendation
// request.
type RecommendInput struct {
	Query        string
	BudgetMax    float64
	ProductTypes []string
	Tags         []string
	Limit        int
}

// Recommender turns parsed constraints into a short relevance-ranked
// product list, using the AI assist for query planning and final picks and
// falling back to deterministic ranking when the assist is unavailable.
type Recommender struct {
	catalog *catalog.Service
	assist  *ai.Assist
	log     logger.Logger
}

// NewRecommender wires the recommender to its collaborators.
func NewRecommender(c *catalog.Service, assist *ai.Assist, log logger.Logger) *Recommender {
	return &Recommender{catalog: c, assist: assist, log: log}
}

// DedupeCardsByTitle drops later cards whose normalized title was already
// seen, keeping first occurrences.
func DedupeCardsByTitle(cards []models.ProductCard) []models.ProductCard {
	seen := make(map[string]struct{}, len(cards))
	out := make([]models.ProductCard, 0, len(cards))
	for _, card := range cards {
		key := text.Normalize(catalog.StripHTML(card.Title))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, card)
	}
	return out
}

func dedupeQueries(queries []string, limit int) []string {
	seen := make(map[string]struct{}, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// catalogSummary renders the candidate pool as the plain-text listing the
// pick prompt consumes.
func catalogSummary(pool []models.ProductCard) string {
	var b strings.Builder
	for i, card := range pool {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("- " + card.Title + " (handle: " + card.Handle + ")")
		b.WriteString("\n  Hind: " + card.Price)
		if len(card.CategoryNames) > 0 {
			names := card.CategoryNames
			if len(names) > 5 {
				names = names[:5]
			}
			b.WriteString("\n  Kategooriad: " + strings.Join(names, ", "))
		}
	}
	return b.String()
}

// gatherCandidates runs the planned queries sequentially against the
// storefront search, short-circuiting once the pool is large enough, and
// widens to a raw catalog slice when search returned too little.
func (r *Recommender) gatherCandidates(ctx context.Context, input RecommendInput, queries []string) []models.ProductCard {
	searchLimit := input.Limit * 3
	if searchLimit < 12 {
		searchLimit = 12
	}

	seen := make(map[string]struct{})
	var candidates []models.ProductCard

	for _, query := range queries {
		results := r.catalog.SearchProducts(ctx, catalog.SearchInput{
			Query:     query,
			Tags:      input.Tags,
			Types:     input.ProductTypes,
			BudgetMax: input.BudgetMax,
			Limit:     searchLimit,
		})
		for _, card := range results {
			if _, dup := seen[card.ID]; dup {
				continue
			}
			seen[card.ID] = struct{}{}
			candidates = append(candidates, card)
			if len(candidates) >= searchPoolCap {
				break
			}
		}
		if len(candidates) >= searchPoolCap {
			break
		}
	}

	if len(candidates) < 12 {
		snapshot := r.catalog.FetchProductCatalog(ctx)
		if len(snapshot) > catalogSliceCap {
			snapshot = snapshot[:catalogSliceCap]
		}
		for _, product := range snapshot {
			card := product.ToCard()
			if input.BudgetMax > 0 && models.ParsePrice(card.Price) > input.BudgetMax {
				continue
			}
			if _, dup := seen[card.ID]; dup {
				continue
			}
			seen[card.ID] = struct{}{}
			candidates = append(candidates, card)
			if len(candidates) >= catalogSliceCap {
				break
			}
		}
	}

	return candidates
}

// RecommendProducts is the main product recommendation pipeline: plan
// search queries, gather and dedupe a candidate pool, relevance-rank it,
// then let the assist pick the final cards. When the assist yields nothing
// the top ranked candidates are returned instead, so the flow always
// degrades to a deterministic answer.
func (r *Recommender) RecommendProducts(ctx context.Context, input RecommendInput) []models.ProductCard {
	if input.Limit <= 0 {
		input.Limit = 4
	}

	fallbackQueries := make([]string, 0, len(input.ProductTypes)+4)
	fallbackQueries = append(fallbackQueries, input.ProductTypes...)
	fallbackQueries = append(fallbackQueries, ExtractSearchKeywords(input.Query)...)
	fallbackQueries = append(fallbackQueries, input.Query)

	planned := r.assist.PlanSearchQueries(ctx, input.Query, fallbackQueries)
	queries := dedupeQueries(planned, 10)

	pool := DedupeCardsByTitle(r.gatherCandidates(ctx, input, queries))
	if len(pool) > candidatePoolCap {
		pool = pool[:candidatePoolCap]
	}
	if len(pool) == 0 {
		r.log.Info("recommendation pool empty", map[string]interface{}{"query": input.Query})
		return nil
	}

	ranked := RankCandidates(pool, input.Query)
	pickPool := ranked
	if len(pickPool) == 0 {
		// Every candidate was rejected; let the assist see the raw pool
		// rather than returning nothing outright.
		pickPool = pool
	}

	selected := r.applyAssistPicks(ctx, input, pickPool)
	if len(selected) == 0 {
		selected = fallbackSelection(ranked, input.Limit)
	}

	if input.BudgetMax > 0 {
		filtered := selected[:0]
		for _, card := range selected {
			if models.ParsePrice(card.Price) <= input.BudgetMax {
				filtered = append(filtered, card)
			}
		}
		selected = filtered
	}

	if len(selected) > input.Limit {
		selected = selected[:input.Limit]
	}
	return selected
}

func (r *Recommender) applyAssistPicks(ctx context.Context, input RecommendInput, pool []models.ProductCard) []models.ProductCard {
	picks := r.assist.PickProducts(ctx, input.Query, catalogSummary(pool), input.Limit)
	if len(picks) == 0 {
		return nil
	}

	byHandle := make(map[string]models.ProductCard, len(pool))
	for _, card := range pool {
		byHandle[card.Handle] = card
	}

	var selected []models.ProductCard
	for _, pick := range picks {
		card, ok := byHandle[pick.Handle]
		if !ok {
			continue
		}
		card.Reason = pick.Reason
		if card.Reason == "" {
			card.Reason = defaultPickNote
		}
		selected = append(selected, card)
	}
	return selected
}

func fallbackSelection(ranked []models.ProductCard, limit int) []models.ProductCard {
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]models.ProductCard, 0, len(ranked))
	for _, card := range ranked {
		card.Reason = defaultPickNote
		out = append(out, card)
	}
	return out
}
