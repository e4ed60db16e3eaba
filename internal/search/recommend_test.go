package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sisustusbot/internal/ai"
	"sisustusbot/internal/catalog"
	"sisustusbot/internal/common/cache"
	"sisustusbot/internal/common/config"
	"sisustusbot/internal/common/logger"
	"sisustusbot/internal/common/observability"
	"sisustusbot/internal/models"
)

type stubAssistClient struct {
	reply string
}

func (s *stubAssistClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.reply, nil
}

func (s *stubAssistClient) Enabled() bool { return s.reply != "" }

func assistWith(t *testing.T, reply string) *ai.Assist {
	t.Helper()
	return ai.NewAssist(&stubAssistClient{reply: reply}, logger.NewTestLogger(t), observability.New("search-test"), "", "info@example.ee", "+372 0000000")
}

func testProduct(id int, name, slug, price string) map[string]interface{} {
	return map[string]interface{}{
		"id":   id,
		"name": name,
		"slug": slug,
		"prices": map[string]interface{}{
			"price":               price,
			"regular_price":       price,
			"currency_minor_unit": 2,
			"currency_symbol":     "€",
		},
		"categories": []map[string]interface{}{{"id": 1, "name": "KAPID", "slug": "kapid"}},
	}
}

func newTestRecommender(t *testing.T, assist *ai.Assist, products []map[string]interface{}) *Recommender {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "categories") {
			json.NewEncoder(w).Encode([]interface{}{})
			return
		}
		search := r.URL.Query().Get("search")
		var matched []map[string]interface{}
		for _, p := range products {
			if search == "" || strings.Contains(strings.ToLower(p["name"].(string)), strings.ToLower(search)) {
				matched = append(matched, p)
			}
		}
		if r.URL.Query().Get("page") != "" && r.URL.Query().Get("page") != "1" {
			matched = nil
		}
		json.NewEncoder(w).Encode(matched)
	}))
	t.Cleanup(server.Close)

	client := catalog.NewClient(config.StoreConfig{BaseURL: server.URL, Timeout: 5000})
	svc := catalog.NewService(client, cache.NewMemory(), logger.NewTestLogger(t), observability.New("search-test"), config.CatalogConfig{
		MaxProducts: 320, PageSize: 100, CatalogTTL: 300, CategoryTreeTTL: 600, SearchTTL: 60,
	})
	return NewRecommender(svc, assist, logger.NewTestLogger(t))
}

func TestRecommendProducts_AssistPicks(t *testing.T) {
	reply := `[{"handle":"ookapp-luna","reason":"Kompaktne ja mahub voodi kõrvale."}]`
	rec := newTestRecommender(t, assistWith(t, reply), []map[string]interface{}{
		testProduct(1, "Öökapp LUNA 45x35", "ookapp-luna", "12900"),
		testProduct(2, "Öökapp MOON 40x40", "ookapp-moon", "15900"),
	})

	cards := rec.RecommendProducts(context.Background(), RecommendInput{Query: "öökapp", Limit: 4})

	require.Len(t, cards, 1)
	assert.Equal(t, "ookapp-luna", cards[0].Handle)
	assert.Equal(t, "Kompaktne ja mahub voodi kõrvale.", cards[0].Reason)
}

func TestRecommendProducts_FallbackWithoutAssist(t *testing.T) {
	rec := newTestRecommender(t, assistWith(t, ""), []map[string]interface{}{
		testProduct(1, "Öökapp LUNA 45x35", "ookapp-luna", "12900"),
		testProduct(2, "Riiul KALLE 120x40", "riiul-kalle", "9900"),
	})

	cards := rec.RecommendProducts(context.Background(), RecommendInput{Query: "öökapp", Limit: 4})

	require.Len(t, cards, 1)
	assert.Equal(t, "ookapp-luna", cards[0].Handle)
	assert.Equal(t, defaultPickNote, cards[0].Reason)
}

func TestRecommendProducts_BudgetFilter(t *testing.T) {
	reply := `[{"handle":"ookapp-luna","reason":"Sobib"},{"handle":"ookapp-moon","reason":"Sobib"}]`
	rec := newTestRecommender(t, assistWith(t, reply), []map[string]interface{}{
		testProduct(1, "Öökapp LUNA 45x35", "ookapp-luna", "12900"),
		testProduct(2, "Öökapp MOON 40x40", "ookapp-moon", "25900"),
	})

	cards := rec.RecommendProducts(context.Background(), RecommendInput{Query: "öökapp", BudgetMax: 150, Limit: 4})

	require.Len(t, cards, 1)
	assert.Equal(t, "ookapp-luna", cards[0].Handle)
}

func TestRecommendProducts_EmptyPool(t *testing.T) {
	rec := newTestRecommender(t, assistWith(t, ""), nil)

	cards := rec.RecommendProducts(context.Background(), RecommendInput{Query: "öökapp", Limit: 4})
	assert.Empty(t, cards)
}

func TestDedupeCardsByTitle(t *testing.T) {
	cards := []models.ProductCard{
		{ID: "1", Title: "Öökapp LUNA"},
		{ID: "2", Title: "öökapp luna"},
		{ID: "3", Title: "Öökapp MOON"},
	}
	deduped := DedupeCardsByTitle(cards)
	require.Len(t, deduped, 2)
	assert.Equal(t, "1", deduped[0].ID)
	assert.Equal(t, "3", deduped[1].ID)
}

func TestCatalogSummary(t *testing.T) {
	summary := catalogSummary([]models.ProductCard{
		{Title: "Öökapp LUNA", Handle: "ookapp-luna", Price: "129.00€", CategoryNames: []string{"KAPID", "Öökapid"}},
	})
	assert.Contains(t, summary, "- Öökapp LUNA (handle: ookapp-luna)")
	assert.Contains(t, summary, "Hind: 129.00€")
	assert.Contains(t, summary, "Kategooriad: KAPID, Öökapid")
}
