// Package httpapi exposes the chat, bundle and storefront services over
// HTTP with gin. Request bodies are schema-validated before any service
// logic runs.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"sisustusbot/internal/bundle"
	"sisustusbot/internal/catalog"
	"sisustusbot/internal/chat"
	"sisustusbot/internal/common/config"
	"sisustusbot/internal/common/errors"
	"sisustusbot/internal/common/logger"
	"sisustusbot/internal/common/observability"
	"sisustusbot/internal/models"
	"sisustusbot/internal/search"
)

const (
	addToCartFailedReply = "Vabandust, praegu ei saanud toodet ostukorvi lisada. Proovi uuesti või lisa toode otse tootelehel."
	bundleIntro          = "Siin on sinu personaalsed komplektid:"
)

// Server holds the handler dependencies.
type Server struct {
	chat        *chat.Service
	bundles     *bundle.Assembler
	recommender *search.Recommender
	catalog     *catalog.Service
	obs         *observability.Observability
	assistUp    bool
	log         logger.Logger
}

func NewServer(
	chatSvc *chat.Service,
	bundles *bundle.Assembler,
	recommender *search.Recommender,
	cat *catalog.Service,
	obs *observability.Observability,
	assistUp bool,
	log logger.Logger,
) *Server {
	return &Server{
		chat:        chatSvc,
		bundles:     bundles,
		recommender: recommender,
		catalog:     cat,
		obs:         obs,
		assistUp:    assistUp,
		log:         log,
	}
}

// Router builds the gin engine with CORS, metrics and all routes attached.
func (s *Server) Router(cfg config.ServerConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), metricsMiddleware())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(s.obs.MetricsHandler()))

	api := router.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.POST("/chat/add-to-cart", s.handleAddToCart)
		api.POST("/bundle", s.handleBundle)
		api.GET("/storefront/search", s.handleStorefrontSearch)
		api.POST("/storefront/recommend", s.handleStorefrontRecommend)
		api.GET("/storefront/product/:handleOrId", s.handleStorefrontProduct)
	}
	return router
}

func parsePositiveInt(raw string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("value must be positive")
	}
	return value, nil
}

func statusForError(err error) int {
	switch errors.CodeOf(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case errors.ErrCodeProductNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCatalogUnavailable, errors.ErrCodeCatalogTimeout:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// readValidatedBody reads the request body and validates it against schema
// before unmarshalling into out. Returns false after writing the 400.
func (s *Server) readValidatedBody(c *gin.Context, schema *gojsonschema.Schema, out interface{}) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return false
	}
	if err := validateBody(schema, body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
		return false
	}
	return true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "sisustusbot",
		"assistEnabled": s.assistUp,
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var input chat.Input
	if !s.readValidatedBody(c, chatSchema, &input) {
		return
	}
	resp := s.chat.Run(c.Request.Context(), input)
	c.JSON(http.StatusOK, resp)
}

type addToCartRequest struct {
	CartID    string `json:"cartId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) handleAddToCart(c *gin.Context) {
	var req addToCartRequest
	if !s.readValidatedBody(c, addToCartSchema, &req) {
		return
	}
	result, err := s.chat.AddToCart(c.Request.Context(), req.CartID, req.VariantID, req.Quantity)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusBadRequest || status == http.StatusNotFound {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		s.log.Warn("add to cart failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusOK, gin.H{"ok": false, "userMessage": addToCartFailedReply})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleBundle(c *gin.Context) {
	var answers models.BundleAnswers
	if !s.readValidatedBody(c, bundleSchema, &answers) {
		return
	}
	bundles, err := s.bundles.GenerateBundles(c.Request.Context(), answers)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("bundle generation failed", map[string]interface{}{"error": err.Error()})
			c.JSON(status, gin.H{"error": "Komplektide genereerimine ebaõnnestus"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.BundleResponse{Bundles: bundles, Message: bundleIntro})
}

func (s *Server) handleStorefrontSearch(c *gin.Context) {
	query := c.Query("q")
	limit := 4
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := parsePositiveInt(raw); err == nil {
			limit = parsed
		}
	}
	cards := s.catalog.SearchProducts(c.Request.Context(), catalog.SearchInput{Query: query, Limit: limit})
	if cards == nil {
		cards = []models.ProductCard{}
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

type recommendRequest struct {
	Query        string   `json:"query"`
	BudgetMax    float64  `json:"budgetMax"`
	ProductTypes []string `json:"productTypes"`
	Tags         []string `json:"tags"`
	Limit        int      `json:"limit"`
}

func (s *Server) handleStorefrontRecommend(c *gin.Context) {
	var req recommendRequest
	if !s.readValidatedBody(c, recommendSchema, &req) {
		return
	}
	cards := s.recommender.RecommendProducts(c.Request.Context(), search.RecommendInput{
		Query:        req.Query,
		BudgetMax:    req.BudgetMax,
		ProductTypes: req.ProductTypes,
		Tags:         req.Tags,
		Limit:        req.Limit,
	})
	if cards == nil {
		cards = []models.ProductCard{}
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

func (s *Server) handleStorefrontProduct(c *gin.Context) {
	card, err := s.catalog.ResolveProductCard(c.Request.Context(), c.Param("handleOrId"))
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
			s.log.Warn("product lookup failed", map[string]interface{}{"error": err.Error()})
		}
		c.JSON(status, gin.H{"error": "Product lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": card})
}
