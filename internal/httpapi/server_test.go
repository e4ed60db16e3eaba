package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sisustusbot/internal/ai"
	"sisustusbot/internal/bundle"
	"sisustusbot/internal/catalog"
	"sisustusbot/internal/chat"
	"sisustusbot/internal/clarify"
	"sisustusbot/internal/common/cache"
	"sisustusbot/internal/common/config"
	"sisustusbot/internal/common/logger"
	"sisustusbot/internal/common/observability"
	"sisustusbot/internal/models"
	"sisustusbot/internal/search"
)

type offlineAssist struct{}

func (offlineAssist) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", nil
}

func (offlineAssist) Enabled() bool { return false }

func apiProduct(id int, name, slug, price, catName, catSlug string) map[string]interface{} {
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

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := []map[string]interface{}{
		apiProduct(1, "Voodi NORDIC 160x200", "voodi-nordic", "39900", "Voodid", "voodid"),
		apiProduct(2, "Öökapp LUNA 45x35", "ookapp-luna", "8900", "Öökapid", "ookapid"),
		apiProduct(3, "Peegel OVAL", "peegel-oval", "5900", "Peeglid", "peeglid"),
		apiProduct(4, "Vaip SOFT 160x230", "vaip-soft", "7900", "Vaibad", "vaibad"),
		apiProduct(5, "Kummut VIIK 90x45", "kummut-viik", "24900", "Kummutid", "kummutid"),
		apiProduct(6, "Valgusti GLOW", "valgusti-glow", "4900", "Valgustid", "valgustid"),
	}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "categories") {
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
		if slug := r.URL.Query().Get("slug"); slug != "" {
			var matched []map[string]interface{}
			for _, p := range products {
				if p["slug"].(string) == slug {
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
	t.Cleanup(upstream.Close)

	log := logger.NewTestLogger(t)
	obs := observability.New("httpapi-test")
	client := catalog.NewClient(config.StoreConfig{BaseURL: upstream.URL, Timeout: 5000})
	catalogSvc := catalog.NewService(client, cache.NewMemory(), log, obs, config.CatalogConfig{
		MaxProducts: 320, PageSize: 100, CatalogTTL: 300, CategoryTreeTTL: 600, SearchTTL: 60,
	})
	assist := ai.NewAssist(offlineAssist{}, log, obs, "", "info@example.ee", "+372 0000000")
	recommender := search.NewRecommender(catalogSvc, assist, log)
	clarifier := clarify.NewPlanner(catalogSvc)
	chatSvc := chat.NewService(assist, catalogSvc, recommender, clarifier, nil, log, obs)
	assembler := bundle.NewAssembler(catalogSvc, assist, log)

	server := NewServer(chatSvc, assembler, recommender, catalogSvc, obs, assist.Enabled(), log)
	return server.Router(config.ServerConfig{})
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "healthy", payload["status"])
	assert.Equal(t, false, payload["assistEnabled"])
}

func TestChat_RequiresMessage(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/chat", `{"cartId":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "message")
}

func TestChat_GreetingTurn(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/chat", `{"message":"Tere!"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "IDA Sisustuspood")
	assert.Equal(t, chat.Chips, resp.Suggestions)
	assert.NotEmpty(t, resp.CartID)
}

func TestAddToCart_RequiresVariantID(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/chat/add-to-cart", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddToCart_Success(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/chat/add-to-cart", `{"variantId":"2","quantity":1,"cartId":"c7"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "c7", resp["cartId"])
}

func TestAddToCart_InvalidVariantIsBadRequest(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/chat/add-to-cart", `{"variantId":"not-a-number"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBundle_RequiresCoreFields(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/bundle", `{"room":"Magamistuba"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBundle_GeneratesSets(t *testing.T) {
	router := newTestRouter(t)

	body := `{
		"room": "Magamistuba",
		"anchorProduct": "Voodi",
		"budgetRange": "2000-4000",
		"style": "Skandinaavia",
		"colorTone": "Hele",
		"selectedElements": ["Voodi", "Öökapp", "Peegel"]
	}`
	w := doJSON(t, router, http.MethodPost, "/api/bundle", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.BundleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Bundles)
	assert.Equal(t, "Siin on sinu personaalsed komplektid:", resp.Message)
	for _, b := range resp.Bundles {
		assert.NotEmpty(t, b.Items)
	}
}

func TestStorefrontSearch(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/storefront/search?q=vaip&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Cards []models.ProductCard `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Cards, 1)
	assert.Equal(t, "vaip-soft", resp.Cards[0].Handle)
}

func TestStorefrontRecommend(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/storefront/recommend", `{"query":"öökapp","limit":4}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Cards []models.ProductCard `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Cards)
	assert.Equal(t, "ookapp-luna", resp.Cards[0].Handle)
}

func TestStorefrontProduct_ByID(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/storefront/product/2", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Product *models.ProductCard `json:"product"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Product)
	assert.Equal(t, "ookapp-luna", resp.Product.Handle)
}

func TestStorefrontProduct_NotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/storefront/product/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpointServes(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// A second request sees the series recorded for the first one.
	w = doJSON(t, router, http.MethodGet, "/metrics", "")
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestMetricsEndpointIsolatedPerServer(t *testing.T) {
	// Each server carries its own registry, so building a second one in the
	// same process must not break either /metrics gather.
	first := newTestRouter(t)
	second := newTestRouter(t)

	for _, router := range []*gin.Engine{first, second} {
		w := doJSON(t, router, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
