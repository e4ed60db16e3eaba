// Package clarify plans category clarification questions: when a product
// query maps to a main category with several populated child categories, the
// bot asks which child the customer meant before searching.
package clarify

import (
	"context"
	"sort"
	"strings"

	"sisustusbot/internal/catalog"
	"sisustusbot/internal/text"
)

// Option is one child category the customer can pick.
type Option struct {
	Label      string   `json:"label"`
	QueryToken string   `json:"queryToken"`
	Keywords   []string `json:"keywords"`
	Slug       string   `json:"slug"`
	Count      int      `json:"count"`
}

// Plan is a clarification question over a main category.
type Plan struct {
	MainCategoryLabel string   `json:"mainCategoryLabel"`
	MainCategorySlug  string   `json:"mainCategorySlug"`
	Options           []Option `json:"options"`
}

type categoryHint struct {
	mainCategory     string
	productTypeHints []string
	keywords         []string
}

var mainCategoryHints = []categoryHint{
	{"KÖÖK", nil, []string{"kook", "koogis", "soogiriist", "lauanoud"}},
	{"KODU AKSESSUAARID", nil, []string{"aksessuaar", "dekoratsioon", "sisustusdetail"}},
	{"VALGUSTID", []string{"valgusti"}, []string{"valgusti", "lamp", "laevalgusti", "porandalamp", "lauavalgusti"}},
	{"TOOLID", []string{"tool"}, []string{"tool", "toolid", "chair", "kontoritool", "tugitool", "baaritool", "taburet", "pink", "tumba"}},
	{"LAUAD", []string{"laud"}, []string{"laud", "lauad", "soogilaud", "diivanilaud", "abilaud", "kirjutuslaud", "konsoollaud"}},
	{"RIIULID", []string{"riiul"}, []string{"riiul", "riiulid", "seinariiul", "raamaturiiul"}},
	{"KAPID", []string{"kapp", "kummut", "tv-kapp", "öökapp", "vitriinkapp"}, []string{"kapp", "kapid", "ookapp", "tvkapp", "vitriinkapp", "kummut"}},
	{"DIIVANID", []string{"diivan"}, []string{"diivan", "diivanid", "nurgadiivan", "mooduldiivan", "sohva"}},
	{"NAGID & REDELID", nil, []string{"nagi", "nagid", "redel", "redelid"}},
	{"VOODID & VOODIPEATSID", []string{"voodi"}, []string{"voodi", "voodid", "voodipeats", "madrats"}},
	{"PEEGLID", []string{"peegel"}, []string{"peegel", "peeglid"}},
	{"VAIBAD", []string{"vaip"}, []string{"vaip", "vaibad"}},
	{"VANNITUBA", nil, []string{"vannituba", "vannitoa"}},
	{"LASTETUBA", nil, []string{"lastetuba", "laste", "lastetoa"}},
	{"AED & TERRASS", []string{"aiamööbel"}, []string{"aed", "terrass", "oue", "aiamoobel", "aiamööbel"}},
}

// Planner builds clarification plans from the live category tree.
type Planner struct {
	catalog *catalog.Service
}

// NewPlanner wires the planner to the catalog service.
func NewPlanner(c *catalog.Service) *Planner {
	return &Planner{catalog: c}
}

func matchCategoryByLabel(categories []catalog.CategoryNode, label string) *catalog.CategoryNode {
	normalizedLabel := text.Normalize(label)
	for i := range categories {
		if text.Normalize(catalog.DecodeEntities(categories[i].Name)) == normalizedLabel {
			return &categories[i]
		}
	}
	for i := range categories {
		if strings.Contains(text.Normalize(catalog.DecodeEntities(categories[i].Name)), normalizedLabel) {
			return &categories[i]
		}
	}
	return nil
}

func detectMainCategoryLabel(normalizedQuery string, productTypes []string, categories []catalog.CategoryNode) string {
	for _, hint := range mainCategoryHints {
		for _, typeHint := range hint.productTypeHints {
			normalizedHint := text.Normalize(typeHint)
			for _, pt := range productTypes {
				if pt == normalizedHint {
					return hint.mainCategory
				}
			}
		}
	}

	for _, hint := range mainCategoryHints {
		for _, keyword := range hint.keywords {
			if strings.Contains(normalizedQuery, text.Normalize(keyword)) {
				return hint.mainCategory
			}
		}
	}

	for _, category := range categories {
		name := text.Normalize(catalog.DecodeEntities(category.Name))
		if len(name) < 3 {
			continue
		}
		if strings.Contains(normalizedQuery, name) {
			return catalog.DecodeEntities(category.Name)
		}
	}

	return ""
}

// PlanCategoryClarification decides whether the query deserves a category
// clarification. Nil means proceed straight to recommendations: either no
// main category matched, it has fewer than two populated children, or the
// tree was unavailable.
func (p *Planner) PlanCategoryClarification(ctx context.Context, query string, productTypes []string) *Plan {
	categories := p.catalog.CategoryTree(ctx)
	if len(categories) == 0 {
		return nil
	}

	var withChildren []catalog.CategoryNode
	for _, category := range categories {
		if category.Count <= 0 {
			continue
		}
		for _, child := range categories {
			if child.Parent == category.ID && child.Count > 0 {
				withChildren = append(withChildren, category)
				break
			}
		}
	}
	if len(withChildren) == 0 {
		return nil
	}

	normalizedQuery := text.Normalize(query)
	normalizedTypes := make([]string, 0, len(productTypes))
	for _, pt := range productTypes {
		normalizedTypes = append(normalizedTypes, text.Normalize(pt))
	}

	targetLabel := detectMainCategoryLabel(normalizedQuery, normalizedTypes, withChildren)
	if targetLabel == "" {
		return nil
	}

	mainCategory := matchCategoryByLabel(withChildren, targetLabel)
	if mainCategory == nil {
		return nil
	}

	var children []catalog.CategoryNode
	for _, category := range categories {
		if category.Parent == mainCategory.ID && category.Count > 0 {
			children = append(children, category)
		}
	}
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Count > children[j].Count
	})

	options := make([]Option, 0, len(children))
	for _, category := range children {
		if len(options) >= 10 {
			break
		}
		cleanName := catalog.DecodeEntities(category.Name)
		slugWords := strings.TrimSpace(strings.ReplaceAll(category.Slug, "-", " "))
		keywords := []string{}
		if cleanName != "" {
			keywords = append(keywords, cleanName)
		}
		if slugWords != "" {
			keywords = append(keywords, slugWords)
		}
		options = append(options, Option{
			Label:      cleanName,
			QueryToken: strings.ToLower(cleanName),
			Keywords:   keywords,
			Slug:       category.Slug,
			Count:      category.Count,
		})
	}

	if len(options) < 2 {
		return nil
	}

	return &Plan{
		MainCategoryLabel: catalog.DecodeEntities(mainCategory.Name),
		MainCategorySlug:  mainCategory.Slug,
		Options:           options,
	}
}

// trimCaseEnding drops one trailing plural/genitive marker.
func trimCaseEnding(token string) string {
	if n := len(token); n > 0 && (token[n-1] == 's' || token[n-1] == 'd') {
		return token[:n-1]
	}
	return token
}

// tokenMatch compares two normalized tokens, tolerating plural/partitive
// endings and substring containment for tokens of 6+ characters.
func tokenMatch(left, right string) bool {
	if left == "" || right == "" {
		return false
	}
	if left == right {
		return true
	}
	if len(left) >= 6 && len(right) >= 6 && (strings.Contains(left, right) || strings.Contains(right, left)) {
		return true
	}
	leftTrimmed := trimCaseEnding(left)
	rightTrimmed := trimCaseEnding(right)
	if leftTrimmed == rightTrimmed {
		return true
	}
	if len(leftTrimmed) >= 6 && len(rightTrimmed) >= 6 {
		return strings.Contains(leftTrimmed, rightTrimmed) || strings.Contains(rightTrimmed, leftTrimmed)
	}
	return false
}

// OptionMatchesMessage reports whether the customer's reply picks this
// option, by label or keyword token overlap.
func OptionMatchesMessage(message string, option Option) bool {
	normalizedMessage := text.Normalize(message)
	if normalizedMessage == "" {
		return false
	}

	var messageTokens []string
	for _, token := range strings.Fields(normalizedMessage) {
		if len(token) > 2 {
			messageTokens = append(messageTokens, token)
		}
	}

	var optionTokens []string
	for _, value := range append([]string{option.Label}, option.Keywords...) {
		for _, token := range strings.Fields(text.Normalize(value)) {
			if len(token) > 2 {
				optionTokens = append(optionTokens, token)
			}
		}
	}

	for _, optionToken := range optionTokens {
		if strings.Contains(normalizedMessage, optionToken) || strings.Contains(optionToken, normalizedMessage) {
			return true
		}
		for _, messageToken := range messageTokens {
			if tokenMatch(messageToken, optionToken) {
				return true
			}
		}
	}
	return false
}

// HasSpecificSubcategoryMention reports whether the query already names one
// of the plan's options, which suppresses the clarification question.
func HasSpecificSubcategoryMention(message string, options []Option) bool {
	for _, option := range options {
		if OptionMatchesMessage(message, option) {
			return true
		}
	}
	return false
}

// ResolveReply returns the option the customer's reply selects, or nil.
func ResolveReply(message string, options []Option) *Option {
	for i := range options {
		if OptionMatchesMessage(message, options[i]) {
			return &options[i]
		}
	}
	return nil
}
