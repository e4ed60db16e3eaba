package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sisustusbot/internal/ai"
	"sisustusbot/internal/catalog"
	"sisustusbot/internal/clarify"
	"sisustusbot/internal/common/cache"
	"sisustusbot/internal/common/config"
	"sisustusbot/internal/common/logger"
	"sisustusbot/internal/common/observability"
	"sisustusbot/internal/models"
	"sisustusbot/internal/search"
)

type disabledAssist struct{}

func (disabledAssist) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", nil
}

func (disabledAssist) Enabled() bool { return false }

// misclassifyingAssist answers every intent classification with a fixed
// intent and everything else with a canned line.
type misclassifyingAssist struct {
	intent string
}

func (a misclassifyingAssist) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.Contains(userPrompt, "VIIMANE SÕNUM") {
		return fmt.Sprintf(`{"intent":%q,"confidence":0.95}`, a.intent), nil
	}
	return "Tore kuulda!", nil
}

func (a misclassifyingAssist) Enabled() bool { return true }

func storeCategories() []catalog.CategoryNode {
	return []catalog.CategoryNode{
		{ID: 1, Name: "KAPID", Slug: "kapid", Parent: 0, Count: 40},
		{ID: 2, Name: "Öökapid", Slug: "ookapid", Parent: 1, Count: 12},
		{ID: 3, Name: "TV-kapid", Slug: "tv-kapid", Parent: 1, Count: 9},
		{ID: 5, Name: "Kummutid", Slug: "kummutid", Parent: 1, Count: 15},
	}
}

func storeProducts() []map[string]interface{} {
	product := func(id int, name, slug, price, catName, catSlug string) map[string]interface{} {
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
			"categories": []map[string]interface{}{{"id": 1, "name": catName, "slug": catSlug}},
		}
	}
	return []map[string]interface{}{
		product(1, "Öökapp LUNA 45x35", "ookapp-luna", "12900", "Öökapid", "ookapid"),
		product(2, "Kummut VIIK 90x45", "kummut-viik", "24900", "Kummutid", "kummutid"),
	}
}

func newTestService(t *testing.T) *Service {
	return newTestServiceWithAssist(t, disabledAssist{})
}

func newTestServiceWithAssist(t *testing.T, client ai.Client) *Service {
	t.Helper()
	categories := storeCategories()
	products := storeProducts()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "categories") {
			if r.URL.Query().Get("page") == "1" {
				json.NewEncoder(w).Encode(categories)
				return
			}
			json.NewEncoder(w).Encode([]catalog.CategoryNode{})
			return
		}
		if include := r.URL.Query().Get("include"); include != "" {
			var matched []map[string]interface{}
			for _, p := range products {
				if strconv.Itoa(p["id"].(int)) == include {
					matched = append(matched, p)
				}
			}
			json.NewEncoder(w).Encode(matched)
			return
		}
		if r.URL.Query().Get("page") != "" && r.URL.Query().Get("page") != "1" {
			json.NewEncoder(w).Encode([]map[string]interface{}{})
			return
		}
		q := strings.ToLower(r.URL.Query().Get("search"))
		var matched []map[string]interface{}
		for _, p := range products {
			if q == "" || strings.Contains(strings.ToLower(p["name"].(string)), q) {
				matched = append(matched, p)
			}
		}
		json.NewEncoder(w).Encode(matched)
	}))
	t.Cleanup(server.Close)

	log := logger.NewTestLogger(t)
	obs := observability.New("chat-test")
	storeClient := catalog.NewClient(config.StoreConfig{BaseURL: server.URL, Timeout: 5000})
	svc := catalog.NewService(storeClient, cache.NewMemory(), log, obs, config.CatalogConfig{
		MaxProducts: 320, PageSize: 100, CatalogTTL: 300, CategoryTreeTTL: 600, SearchTTL: 60,
	})
	assist := ai.NewAssist(client, log, obs, "", "info@example.ee", "+372 0000000")
	recommender := search.NewRecommender(svc, assist, log)
	clarifier := clarify.NewPlanner(svc)

	return NewService(assist, svc, recommender, clarifier, nil, log, obs)
}

func TestRun_Greeting(t *testing.T) {
	s := newTestService(t)

	resp := s.Run(context.Background(), Input{Message: "Tere!"})

	assert.Equal(t, greetingReply, resp.Message)
	assert.Equal(t, Chips, resp.Suggestions)
	assert.Empty(t, resp.Cards)
	assert.NotEmpty(t, resp.CartID)
}

func TestRun_ShippingQuestionAnsweredFromFAQ(t *testing.T) {
	s := newTestService(t)

	resp := s.Run(context.Background(), Input{Message: "Kui kiire on tarne?"})

	assert.Contains(t, resp.Message, "tarneaeg")
	assert.Contains(t, resp.Message, "Vaata ka:")
	assert.Empty(t, resp.Cards)
}

func TestRun_EscalationShortCircuits(t *testing.T) {
	s := newTestService(t)

	resp := s.Run(context.Background(), Input{Message: "Mul on makse probleem ja olen väga pahane!"})

	assert.Contains(t, resp.Message, "klienditoele")
	assert.Equal(t, []string{"Jäta oma e-mail", "Kirjelda tellimuse number", "Soovin kõnet"}, resp.Suggestions)
	assert.Empty(t, resp.Cards)
}

func TestRun_GenericCategoryAsksClarification(t *testing.T) {
	s := newTestService(t)

	resp := s.Run(context.Background(), Input{Message: "otsin kappi"})

	assert.Contains(t, resp.Message, "täpsusta palun kategooria (KAPID)")
	assert.Contains(t, resp.Message, " või ")
	require.Len(t, resp.Suggestions, 3)
	assert.Contains(t, resp.Suggestions, "Öökapid")
	assert.Empty(t, resp.Cards)
}

func TestRun_ClarificationReplyTriggersRecommendation(t *testing.T) {
	s := newTestService(t)

	history := []models.ChatTurn{
		{Role: "user", Text: "otsin kappi"},
		{Role: "assistant", Text: "Et leiaksin täpsema vaste, täpsusta palun kategooria (KAPID): kummutid, öökapid või tv-kapid."},
	}
	resp := s.Run(context.Background(), Input{Message: "öökapid palun", History: history})

	assert.Equal(t, recommendationsIntro, resp.Message)
	require.NotEmpty(t, resp.Cards)
	assert.Equal(t, "ookapp-luna", resp.Cards[0].Handle)
}

func TestRun_NoMatchesFallsBackToRetryPrompt(t *testing.T) {
	s := newTestService(t)

	resp := s.Run(context.Background(), Input{Message: "otsin basseini"})

	assert.Equal(t, noResultsReply, resp.Message)
	assert.Empty(t, resp.Cards)
}

func TestRun_KeepsCallerCartID(t *testing.T) {
	s := newTestService(t)

	resp := s.Run(context.Background(), Input{Message: "Tere!", CartID: "cart-123"})
	assert.Equal(t, "cart-123", resp.CartID)
}

func TestRun_AcknowledgmentIgnoresClassifier(t *testing.T) {
	s := newTestServiceWithAssist(t, misclassifyingAssist{intent: "product_reco"})

	resp := s.Run(context.Background(), Input{Message: "Aitäh!"})

	assert.Equal(t, "Tore kuulda!", resp.Message)
	assert.Empty(t, resp.Cards)
	assert.Equal(t, Chips, resp.Suggestions)
}

func TestRun_ExplicitBudgetIgnoresClassifier(t *testing.T) {
	s := newTestServiceWithAssist(t, misclassifyingAssist{intent: "smalltalk"})

	resp := s.Run(context.Background(), Input{Message: "Otsin vaipa kuni 500€"})

	// The budget keeps the turn in the recommendation flow even though the
	// classifier voted smalltalk. The store carries no rugs, so the flow
	// lands on the retry prompt instead of the smalltalk reply.
	assert.Equal(t, noResultsReply, resp.Message)
	assert.Empty(t, resp.Cards)
}

func TestFormatNaturalList(t *testing.T) {
	assert.Equal(t, "", formatNaturalList(nil))
	assert.Equal(t, "öökapid", formatNaturalList([]string{"öökapid"}))
	assert.Equal(t, "kummutid, öökapid või tv-kapid", formatNaturalList([]string{"kummutid", "öökapid", "tv-kapid"}))
}

func TestAddToCart_BuildsStorefrontRedirect(t *testing.T) {
	s := newTestService(t)

	result, err := s.AddToCart(context.Background(), "cart-1", "1", 2)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "cart-1", result.CartID)
	require.NotNil(t, result.Cart)
	assert.Contains(t, result.Cart.CheckoutURL, "add-to-cart=1")
}

func TestAddToCart_RejectsUnknownProduct(t *testing.T) {
	s := newTestService(t)

	_, err := s.AddToCart(context.Background(), "", "999999", 1)
	assert.Error(t, err)
}
