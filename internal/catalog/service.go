package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sisustusbot/internal/common/cache"
	"sisustusbot/internal/common/config"
	"sisustusbot/internal/common/errors"
	"sisustusbot/internal/common/logger"
	"sisustusbot/internal/common/observability"
	"sisustusbot/internal/models"
)

const (
	catalogCacheKey      = "store:product_catalog"
	categoryTreeCacheKey = "store:category_tree"
	searchCachePrefix    = "store:search:"
)

// CatalogProduct is the compact per-product snapshot held in the catalog
// cache. Prices are major units.
type CatalogProduct struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Handle         string   `json:"handle"`
	Categories     []string `json:"categories"`
	CategorySlugs  []string `json:"categorySlugs"`
	Description    string   `json:"description"`
	Image          string   `json:"image"`
	Price          float64  `json:"price"`
	CompareAtPrice float64  `json:"compareAtPrice"`
	VariantID      string   `json:"variantId"`
	Permalink      string   `json:"permalink"`
}

// Service wraps the Store API client with caching and card mapping.
type Service struct {
	client *Client
	cache  cache.Cache
	log    logger.Logger
	obs    *observability.Observability
	cfg    config.CatalogConfig
}

// NewService builds the catalog service.
func NewService(client *Client, c cache.Cache, log logger.Logger, obs *observability.Observability, cfg config.CatalogConfig) *Service {
	return &Service{client: client, cache: c, log: log, obs: obs, cfg: cfg}
}

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripHTML removes tags and common entities from storefront HTML snippets.
func StripHTML(value string) string {
	out := htmlTagPattern.ReplaceAllString(value, " ")
	replacements := []struct{ from, to string }{
		{"&nbsp;", " "},
		{"&amp;", "&"},
		{"&#038;", "&"},
		{"&#8211;", "-"},
		{"&#8220;", `"`},
		{"&#8221;", `"`},
	}
	for _, r := range replacements {
		out = strings.ReplaceAll(out, r.from, r.to)
	}
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(out, " "))
}

// DecodeEntities cleans category labels that come back entity-encoded.
func DecodeEntities(value string) string {
	out := strings.ReplaceAll(value, "&amp;", "&")
	out = strings.ReplaceAll(out, "&#038;", "&")
	out = strings.ReplaceAll(out, "&quot;", `"`)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(out, " "))
}

func formatMoney(raw string, minorUnit int, symbol string) string {
	amount, _ := strconv.ParseFloat(raw, 64)
	if minorUnit < 0 {
		minorUnit = 2
	}
	divisor := 1.0
	for i := 0; i < minorUnit; i++ {
		divisor *= 10
	}
	return fmt.Sprintf("%.2f%s", amount/divisor, symbol)
}

func minorToMajor(raw string, minorUnit int) float64 {
	amount, _ := strconv.ParseFloat(raw, 64)
	divisor := 1.0
	for i := 0; i < minorUnit; i++ {
		divisor *= 10
	}
	return amount / divisor
}

// MapToCard converts a Store API product into a chat product card.
func MapToCard(product *Product) models.ProductCard {
	minorUnit := 2
	symbol := "€"
	priceRaw := ""
	regularRaw := ""
	if product.Prices != nil {
		if product.Prices.CurrencyMinorUnit > 0 {
			minorUnit = product.Prices.CurrencyMinorUnit
		}
		if product.Prices.CurrencySymbol != "" {
			symbol = product.Prices.CurrencySymbol
		}
		priceRaw = product.Prices.Price
		regularRaw = product.Prices.RegularPrice
	}

	current := minorToMajor(priceRaw, minorUnit)
	regular := minorToMajor(regularRaw, minorUnit)

	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0].Src
		if image == "" {
			image = product.Images[0].Thumbnail
		}
	}

	names := make([]string, 0, len(product.Categories))
	slugs := make([]string, 0, len(product.Categories))
	for _, c := range product.Categories {
		names = append(names, DecodeEntities(c.Name))
		slugs = append(slugs, c.Slug)
	}

	card := models.ProductCard{
		ID:            strconv.Itoa(product.ID),
		Title:         product.Name,
		Handle:        product.Slug,
		Image:         image,
		Price:         formatMoney(priceRaw, minorUnit, symbol),
		Reason:        "",
		VariantID:     strconv.Itoa(product.ID),
		Permalink:     product.Permalink,
		CategoryNames: names,
		CategorySlugs: slugs,
		Description:   StripHTML(firstNonEmpty(product.ShortDescription, product.Description)),
	}
	if regular > current {
		card.CompareAtPrice = formatMoney(regularRaw, minorUnit, symbol)
	}
	return card
}

// ToCard converts a cached catalog product into a chat product card.
func (p CatalogProduct) ToCard() models.ProductCard {
	card := models.ProductCard{
		ID:            p.ID,
		Title:         p.Title,
		Handle:        p.Handle,
		Image:         p.Image,
		Price:         models.FormatPrice(p.Price),
		Reason:        "",
		VariantID:     p.VariantID,
		Permalink:     p.Permalink,
		CategoryNames: p.Categories,
		CategorySlugs: p.CategorySlugs,
		Description:   p.Description,
	}
	if p.CompareAtPrice > p.Price {
		card.CompareAtPrice = models.FormatPrice(p.CompareAtPrice)
	}
	return card
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// FetchProductCatalog returns the cached catalog snapshot, loading up to the
// configured cap of newest products when the cache is cold. Failures degrade
// to an empty slice so chat flows stay alive.
func (s *Service) FetchProductCatalog(ctx context.Context) []CatalogProduct {
	var cached []CatalogProduct
	if ok, _ := cache.GetJSON(ctx, s.cache, catalogCacheKey, &cached); ok {
		s.obs.RecordCacheLookup(ctx, "catalog", true)
		return cached
	}
	s.obs.RecordCacheLookup(ctx, "catalog", false)

	maxProducts := s.cfg.MaxProducts
	pageSize := s.cfg.PageSize

	var all []CatalogProduct
	page := 1
	for len(all) < maxProducts {
		products, err := s.client.ListProducts(ctx, ProductQuery{
			Page:    page,
			PerPage: pageSize,
			Order:   "desc",
			OrderBy: "date",
		})
		if err != nil {
			s.log.Error("catalog snapshot load failed", map[string]interface{}{
				"page":  page,
				"error": err.Error(),
			})
			return []CatalogProduct{}
		}
		if len(products) == 0 {
			break
		}

		for i := range products {
			product := &products[i]
			minorUnit := 2
			priceRaw := ""
			regularRaw := ""
			if product.Prices != nil {
				if product.Prices.CurrencyMinorUnit > 0 {
					minorUnit = product.Prices.CurrencyMinorUnit
				}
				priceRaw = product.Prices.Price
				regularRaw = product.Prices.RegularPrice
			}

			image := ""
			if len(product.Images) > 0 {
				image = product.Images[0].Src
				if image == "" {
					image = product.Images[0].Thumbnail
				}
			}

			names := make([]string, 0, len(product.Categories))
			slugs := make([]string, 0, len(product.Categories))
			for _, c := range product.Categories {
				names = append(names, DecodeEntities(c.Name))
				slugs = append(slugs, c.Slug)
			}

			description := StripHTML(firstNonEmpty(product.ShortDescription, product.Description))
			if runes := []rune(description); len(runes) > 360 {
				description = string(runes[:360])
			}

			all = append(all, CatalogProduct{
				ID:             strconv.Itoa(product.ID),
				Title:          product.Name,
				Handle:         product.Slug,
				Categories:     names,
				CategorySlugs:  slugs,
				Description:    description,
				Image:          image,
				Price:          minorToMajor(priceRaw, minorUnit),
				CompareAtPrice: minorToMajor(regularRaw, minorUnit),
				VariantID:      strconv.Itoa(product.ID),
				Permalink:      product.Permalink,
			})
			if len(all) >= maxProducts {
				break
			}
		}

		page++
	}

	if err := cache.SetJSON(ctx, s.cache, catalogCacheKey, all, config.GetSeconds(s.cfg.CatalogTTL)); err != nil {
		s.log.Warn("catalog snapshot cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return all
}

// CategoryTree returns the cached category listing. Failures degrade to an
// empty slice.
func (s *Service) CategoryTree(ctx context.Context) []CategoryNode {
	var cached []CategoryNode
	if ok, _ := cache.GetJSON(ctx, s.cache, categoryTreeCacheKey, &cached); ok {
		s.obs.RecordCacheLookup(ctx, "category_tree", true)
		return cached
	}
	s.obs.RecordCacheLookup(ctx, "category_tree", false)

	categories, err := s.client.ListAllCategories(ctx, true, 25)
	if err != nil {
		s.log.Error("category tree load failed", map[string]interface{}{"error": err.Error()})
		return []CategoryNode{}
	}

	if err := cache.SetJSON(ctx, s.cache, categoryTreeCacheKey, categories, config.GetSeconds(s.cfg.CategoryTreeTTL)); err != nil {
		s.log.Warn("category tree cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return categories
}

// SearchInput shapes a single storefront text search.
type SearchInput struct {
	Query     string   `json:"query"`
	Tags      []string `json:"tags,omitempty"`
	Types     []string `json:"productTypes,omitempty"`
	BudgetMax float64  `json:"budgetMax,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

// SearchProducts runs a storefront text search, filters by budget and caches
// the trimmed card list briefly.
func (s *Service) SearchProducts(ctx context.Context, input SearchInput) []models.ProductCard {
	keyRaw, _ := json.Marshal(input)
	cacheKey := searchCachePrefix + string(keyRaw)

	var cached []models.ProductCard
	if ok, _ := cache.GetJSON(ctx, s.cache, cacheKey, &cached); ok {
		s.obs.RecordCacheLookup(ctx, "search", true)
		return cached
	}
	s.obs.RecordCacheLookup(ctx, "search", false)

	limit := input.Limit
	if limit <= 0 {
		limit = 4
	}
	if limit > 30 {
		limit = 30
	}

	perPage := limit * 3
	if perPage < 8 {
		perPage = 8
	}
	if perPage > 30 {
		perPage = 30
	}

	products, err := s.client.ListProducts(ctx, ProductQuery{
		Search:  input.Query,
		PerPage: perPage,
		Order:   "desc",
		OrderBy: "date",
	})
	if err != nil {
		s.log.Warn("storefront search failed", map[string]interface{}{
			"query": input.Query,
			"error": err.Error(),
		})
		return []models.ProductCard{}
	}

	cards := make([]models.ProductCard, 0, len(products))
	for i := range products {
		card := MapToCard(&products[i])
		if input.BudgetMax > 0 && models.ParsePrice(card.Price) > input.BudgetMax {
			continue
		}
		cards = append(cards, card)
	}

	if len(cards) > limit {
		cards = cards[:limit]
	}

	if err := cache.SetJSON(ctx, s.cache, cacheKey, cards, config.GetSeconds(s.cfg.SearchTTL)); err != nil {
		s.log.Warn("search cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return cards
}

// ResolveProductCard looks a product up by numeric id or slug and maps it to
// a card.
func (s *Service) ResolveProductCard(ctx context.Context, handleOrID string) (*models.ProductCard, error) {
	raw := strings.TrimSpace(handleOrID)
	if raw == "" {
		return nil, nil
	}

	var (
		product *Product
		err     error
	)
	if id, convErr := strconv.Atoi(raw); convErr == nil && id > 0 {
		product, err = s.client.GetProductByID(ctx, id)
	} else {
		product, err = s.client.GetProductBySlug(ctx, raw)
	}
	if err != nil {
		return nil, err
	}

	card := MapToCard(product)
	return &card, nil
}

// AddToCartResult carries the checkout redirect for a cart add.
type AddToCartResult struct {
	ProductID   string `json:"productId"`
	Title       string `json:"title"`
	Quantity    int    `json:"quantity"`
	CheckoutURL string `json:"checkoutUrl"`
}

// AddToCart validates the product and returns an add-to-cart redirect URL on
// the storefront, which is where the actual cart lives.
func (s *Service) AddToCart(ctx context.Context, storeBaseURL, variantID string, quantity int) (*AddToCartResult, error) {
	productID, err := strconv.Atoi(strings.TrimSpace(variantID))
	if err != nil || productID <= 0 {
		return nil, errors.NewInvalidInputError("variantId must be a positive product id")
	}
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.client.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &AddToCartResult{
		ProductID:   strconv.Itoa(product.ID),
		Title:       product.Name,
		Quantity:    quantity,
		CheckoutURL: fmt.Sprintf("%s/?add-to-cart=%d", strings.TrimRight(storeBaseURL, "/"), product.ID),
	}, nil
}
