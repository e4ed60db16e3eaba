// Package catalog talks to the WooCommerce Store API and exposes cached
// catalog snapshots, category trees and product card mapping.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"sisustusbot/internal/common/config"
	"sisustusbot/internal/common/errors"
	commonhttp "sisustusbot/internal/common/http"
	"sisustusbot/internal/common/metrics"
)

// Image is a product image reference.
type Image struct {
	Src       string `json:"src"`
	Thumbnail string `json:"thumbnail"`
}

// Prices carries Store API price fields. Amounts are strings in minor units.
type Prices struct {
	Price             string `json:"price"`
	RegularPrice      string `json:"regular_price"`
	CurrencySymbol    string `json:"currency_symbol"`
	CurrencyMinorUnit int    `json:"currency_minor_unit"`
}

// CategoryRef is a category attached to a product.
type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product is a Store API product payload.
type Product struct {
	ID               int           `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	Permalink        string        `json:"permalink"`
	Description      string        `json:"description"`
	ShortDescription string        `json:"short_description"`
	Images           []Image       `json:"images"`
	Categories       []CategoryRef `json:"categories"`
	Prices           *Prices       `json:"prices"`
}

// CategoryNode is a Store API category with its parent link.
type CategoryNode struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int    `json:"parent"`
	Count  int    `json:"count"`
}

// ProductQuery mirrors the Store API product listing parameters.
type ProductQuery struct {
	Search   string
	Page     int
	PerPage  int
	Order    string
	OrderBy  string
	MinPrice float64
	MaxPrice float64
	Include  []int
	Slug     string
}

// Client is a thin Store API client.
type Client struct {
	baseURL string
	http    *commonhttp.Client
}

// NewClient builds a Store API client from config.
func NewClient(cfg config.StoreConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
	}
}

func (c *Client) buildURL(path string, params url.Values) string {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// ListProducts fetches a page of products.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	params := url.Values{}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = 12
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	if q.OrderBy != "" {
		params.Set("orderby", q.OrderBy)
	}
	if q.MinPrice > 0 {
		params.Set("min_price", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		params.Set("max_price", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if len(q.Include) > 0 {
		ids := make([]string, 0, len(q.Include))
		for _, id := range q.Include {
			ids = append(ids, strconv.Itoa(id))
		}
		params.Set("include", strings.Join(ids, ","))
	}
	if q.Slug != "" {
		params.Set("slug", q.Slug)
	}

	var products []Product
	_, err := c.http.GetJSON(ctx, c.buildURL("/wp-json/wc/store/v1/products", params), nil, &products)
	if err != nil {
		metrics.StorefrontRequestsTotal.WithLabelValues("products", "error").Inc()
		if errors.IsTimeout(err) {
			return nil, errors.NewCatalogTimeoutError("products")
		}
		return nil, errors.NewCatalogUnavailableError(err)
	}
	metrics.StorefrontRequestsTotal.WithLabelValues("products", "ok").Inc()
	return products, nil
}

// GetProductByID fetches a single product by numeric id.
func (c *Client) GetProductByID(ctx context.Context, id int) (*Product, error) {
	products, err := c.ListProducts(ctx, ProductQuery{Include: []int{id}, PerPage: 1, Page: 1})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errors.NewProductNotFoundError(fmt.Sprintf("id=%d", id))
	}
	return &products[0], nil
}

// GetProductBySlug fetches a single product by slug.
func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	products, err := c.ListProducts(ctx, ProductQuery{Slug: slug, PerPage: 1, Page: 1})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errors.NewProductNotFoundError("slug=" + slug)
	}
	return &products[0], nil
}

// ListCategories fetches a page of product categories.
func (c *Client) ListCategories(ctx context.Context, page, perPage int, hideEmpty bool) ([]CategoryNode, error) {
	params := url.Values{}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 100
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	if hideEmpty {
		params.Set("hide_empty", "true")
	}

	var categories []CategoryNode
	_, err := c.http.GetJSON(ctx, c.buildURL("/wp-json/wc/store/v1/products/categories", params), nil, &categories)
	if err != nil {
		metrics.StorefrontRequestsTotal.WithLabelValues("categories", "error").Inc()
		if errors.IsTimeout(err) {
			return nil, errors.NewCatalogTimeoutError("categories")
		}
		return nil, errors.NewCatalogUnavailableError(err)
	}
	metrics.StorefrontRequestsTotal.WithLabelValues("categories", "ok").Inc()
	return categories, nil
}

// ListAllCategories pages through the category listing until exhausted.
func (c *Client) ListAllCategories(ctx context.Context, hideEmpty bool, maxPages int) ([]CategoryNode, error) {
	const perPage = 100
	if maxPages < 1 {
		maxPages = 1
	}
	if maxPages > 50 {
		maxPages = 50
	}

	var all []CategoryNode
	for page := 1; page <= maxPages; page++ {
		batch, err := c.ListCategories(ctx, page, perPage, hideEmpty)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			break
		}
	}
	return all, nil
}
