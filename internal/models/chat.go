// internal/models/chat.go
package models

// Intent is the coarse classification of a single chat message.
type Intent string

const (
	IntentGreeting    Intent = "greeting"
	IntentShipping    Intent = "shipping"
	IntentReturns     Intent = "returns"
	IntentFAQ         Intent = "faq"
	IntentOrderHelp   Intent = "order_help"
	IntentProductReco Intent = "product_reco"
	IntentSmalltalk   Intent = "smalltalk"
)

// ChatTurn is one message of the trailing conversation history.
type ChatTurn struct {
	Role string `json:"role"` // "user" | "assistant"
	Text string `json:"text"`
}

// ProductCard is the catalog item snapshot shown to the user and fed through
// every matching stage. Price fields are pre-formatted display strings; the
// numeric value is always re-derived from them (see ParsePrice).
type ProductCard struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Handle         string   `json:"handle"`
	Image          string   `json:"image"`
	Price          string   `json:"price"`
	CompareAtPrice string   `json:"compareAtPrice,omitempty"`
	Reason         string   `json:"reason"`
	VariantID      string   `json:"variantId"`
	Permalink      string   `json:"permalink,omitempty"`
	CategoryNames  []string `json:"categoryNames,omitempty"`
	CategorySlugs  []string `json:"categorySlugs,omitempty"`
	Description    string   `json:"-"`
}

// CommerceActions carries cart-level nudges computed from the subtotal.
type CommerceActions struct {
	FreeShippingGap   *float64 `json:"freeShippingGap,omitempty"`
	ApplyDiscountHint string   `json:"applyDiscountHint,omitempty"`
}

// ChatResponse is the outbound shape of one chat turn.
type ChatResponse struct {
	Message        string          `json:"message"`
	Cards          []ProductCard   `json:"cards"`
	Suggestions    []string        `json:"suggestions"`
	Actions        CommerceActions `json:"actions"`
	CartID         string          `json:"cartId,omitempty"`
	ProductSummary string          `json:"productSummary,omitempty"`
}
