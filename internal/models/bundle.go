// internal/models/bundle.go
package models

// Bundle item roles. Names are the Estonian role labels rendered in the
// widget, so they double as wire values.
const (
	RoleAnchor    = "ankur"
	RoleSecondary = "lisatoode"
	RoleAccessory = "aksessuaar"
)

// ElementPreference is a per-element style/material wish.
type ElementPreference struct {
	Element  string `json:"element"`
	Style    string `json:"style"`
	Material string `json:"material"`
}

// BundleAnswers is the structured questionnaire result driving bundle
// generation.
type BundleAnswers struct {
	Room               string              `json:"room"`
	AnchorProduct      string              `json:"anchorProduct"`
	BudgetRange        string              `json:"budgetRange"`
	BudgetCustom       float64             `json:"budgetCustom,omitempty"`
	Style              string              `json:"style"`
	ColorTone          string              `json:"colorTone"`
	MaterialPreference string              `json:"materialPreference,omitempty"`
	HasChildren        bool                `json:"hasChildren"`
	HasPets            bool                `json:"hasPets"`
	SelectedElements   []string            `json:"selectedElements,omitempty"`
	ElementPreferences []ElementPreference `json:"elementPreferences,omitempty"`
	DimensionsKnown    bool                `json:"dimensionsKnown,omitempty"`
	WidthCm            float64             `json:"widthCm,omitempty"`
	LengthCm           float64             `json:"lengthCm,omitempty"`
}

// BundleItem is a product placed into a role slot of a bundle.
type BundleItem struct {
	ProductCard
	RoleInBundle string        `json:"roleInBundle"`
	WhyChosen    string        `json:"whyChosen"`
	ElementKey   string        `json:"elementKey,omitempty"`
	Alternatives []ProductCard `json:"alternatives,omitempty"`
}

// Bundle is one complete furniture set proposal.
type Bundle struct {
	Title        string       `json:"title"`
	StyleSummary string       `json:"styleSummary"`
	TotalPrice   float64      `json:"totalPrice"`
	Items        []BundleItem `json:"items"`
	KeyReasons   []string     `json:"keyReasons"`
	Tradeoffs    []string     `json:"tradeoffs"`
}

// Signature returns the sorted, joined item-id set of the bundle; two bundles
// with the same signature contain the same products.
func (b *Bundle) Signature() string {
	ids := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		ids = append(ids, item.ID)
	}
	// insertion sort; bundles have at most a handful of items
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	sig := ""
	for i, id := range ids {
		if i > 0 {
			sig += "|"
		}
		sig += id
	}
	return sig
}

// RecomputeTotal re-derives the total from the displayed item prices. It must
// be called after any mutation of Items so the total always equals the sum of
// what the user sees.
func (b *Bundle) RecomputeTotal() {
	total := 0.0
	for _, item := range b.Items {
		total += ParsePrice(item.Price)
	}
	b.TotalPrice = total
}

// BundleResponse is the outbound shape of a bundle-generation request.
type BundleResponse struct {
	Bundles []Bundle `json:"bundles"`
	Message string   `json:"message"`
}
