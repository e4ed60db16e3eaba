// Package chat orchestrates one conversation turn: intent detection,
// escalation, FAQ answers, category clarification and product
// recommendations, with transcript logging on the way out.
package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"sisustusbot/internal/ai"
	"sisustusbot/internal/catalog"
	"sisustusbot/internal/chatlog"
	"sisustusbot/internal/clarify"
	"sisustusbot/internal/common/logger"
	"sisustusbot/internal/common/observability"
	"sisustusbot/internal/faq"
	"sisustusbot/internal/intent"
	"sisustusbot/internal/models"
	"sisustusbot/internal/search"
	"sisustusbot/internal/text"
)

// Chips are the default quick-reply suggestions under every answer.
var Chips = []string{"Tarne info", "Tagastamine", "Tingimused", "Makse ja tarne", "Kontakt"}

// categoryClarifyMarker identifies a clarification question in assistant
// history. Compared on normalized text, so diacritics do not matter.
const categoryClarifyMarker = "tapsusta palun kategooria"

var escalationRe = regexp.MustCompile(`pahane|vihane|petetud|fraud|chargeback|kadunud pakk|makse probleem`)

const (
	greetingReply = "Tere! Olen IDA Sisustuspood assistent. Aitan tarne, tagastuse, tingimuste ja kontakti küsimustega ning leian sulle sobivaid tooteid."

	orderHelpFallback = "Aitan hea meelega. Kui küsimus on tellimuse või makse kohta, kirjuta palun tellimuse number ja kontakt või kirjuta otse: info@idastuudio.ee."

	smalltalkFallback = "Selge! Kas soovid abi tarne/tagastuse küsimuses või otsid mõnda toodet? Tootesoovituseks kirjelda palun stiili, toote tüüpi ja eelarvet."

	recommendationsIntro = "Siin on minu soovitused just sulle:"

	noResultsReply = "Kahjuks ei leidnud praegu sobivaid tooteid. Proovi palun kirjeldada täpsemalt (nt toote tüüp, stiil ja eelarve)."
)

// Input is one inbound chat turn.
type Input struct {
	Message string            `json:"message"`
	CartID  string            `json:"cartId,omitempty"`
	History []models.ChatTurn `json:"history,omitempty"`
}

// Service runs chat turns against the catalog, FAQ and assist layers.
type Service struct {
	assist      *ai.Assist
	catalog     *catalog.Service
	recommender *search.Recommender
	clarifier   *clarify.Planner
	transcripts *chatlog.Store
	log         logger.Logger
	obs         *observability.Observability
}

func NewService(
	assist *ai.Assist,
	cat *catalog.Service,
	recommender *search.Recommender,
	clarifier *clarify.Planner,
	transcripts *chatlog.Store,
	log logger.Logger,
	obs *observability.Observability,
) *Service {
	return &Service{
		assist:      assist,
		catalog:     cat,
		recommender: recommender,
		clarifier:   clarifier,
		transcripts: transcripts,
		log:         log,
		obs:         obs,
	}
}

// formatNaturalList joins labels Estonian style: "a, b või c".
func formatNaturalList(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	return strings.Join(values[:len(values)-1], ", ") + " või " + values[len(values)-1]
}

type pendingClarification struct {
	baseQuery string
	plan      *clarify.Plan
}

// findPendingClarification checks whether the previous assistant message was
// a category clarification question and, if so, rebuilds its plan from the
// user message that triggered it.
func (s *Service) findPendingClarification(ctx context.Context, history []models.ChatTurn) *pendingClarification {
	lastAssistant := -1
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "assistant" {
			lastAssistant = i
			break
		}
	}
	if lastAssistant < 0 {
		return nil
	}
	if !strings.Contains(text.Normalize(history[lastAssistant].Text), categoryClarifyMarker) {
		return nil
	}

	var baseQuery string
	for i := lastAssistant - 1; i >= 0; i-- {
		if history[i].Role == "user" && history[i].Text != "" {
			baseQuery = history[i].Text
			break
		}
	}
	if baseQuery == "" {
		return nil
	}

	constraints := intent.ParseConstraints(baseQuery)
	plan := s.clarifier.PlanCategoryClarification(ctx, baseQuery, constraints.ProductTypes)
	if plan == nil {
		return nil
	}
	return &pendingClarification{baseQuery: baseQuery, plan: plan}
}

// Run executes one chat turn.
func (s *Service) Run(ctx context.Context, input Input) models.ChatResponse {
	started := time.Now()
	resp, detected := s.run(ctx, input)
	s.obs.RecordChatTurn(ctx, string(detected))
	s.obs.RecordChatDuration(ctx, time.Since(started), string(detected))

	s.transcripts.LogTurn(ctx, chatlog.Entry{
		SessionID:        resp.CartID,
		CartID:           resp.CartID,
		UserMessage:      input.Message,
		AssistantMessage: resp.Message,
		Intent:           string(detected),
	})
	return resp
}

func (s *Service) run(ctx context.Context, input Input) (models.ChatResponse, models.Intent) {
	history := input.History

	// Bare acknowledgments and explicit budget mentions stay rule-decided,
	// the AI classifier may refine everything else.
	detected := intent.Detect(input.Message)
	if !intent.IsAcknowledgment(input.Message) && !intent.HasExplicitBudget(input.Message) {
		if guess := s.assist.ClassifyIntent(ctx, input.Message, history); guess != nil && guess.Intent != "" {
			detected = guess.Intent
		}
	}

	effectiveQuery := input.Message
	constraints := intent.ParseConstraints(effectiveQuery)

	pending := s.findPendingClarification(ctx, history)
	var selected *clarify.Option
	if pending != nil {
		selected = clarify.ResolveReply(input.Message, pending.plan.Options)
	}
	if pending != nil && selected != nil {
		effectiveQuery = pending.baseQuery + " " + selected.QueryToken
		constraints = intent.ParseConstraints(effectiveQuery)
		detected = models.IntentProductReco
	}

	if escalationRe.MatchString(strings.ToLower(input.Message)) {
		return models.ChatResponse{
			Message: fmt.Sprintf("Võtan selle kohe klienditoele edasi. Palun kirjuta %s või helista %s.",
				faq.Commerce.SupportEmail, faq.Commerce.SupportPhone),
			Cards:       []models.ProductCard{},
			Suggestions: []string{"Jäta oma e-mail", "Kirjelda tellimuse number", "Soovin kõnet"},
			CartID:      s.ensureCartID(input.CartID),
		}, detected
	}

	switch detected {
	case models.IntentShipping, models.IntentReturns, models.IntentFAQ:
		answer := faq.AnswerQuestion(input.Message)
		link := answer.RecommendedLink
		if link == "" {
			link = answer.Links.Contact
		}
		fallback := fmt.Sprintf("%s Vaata ka: %s", answer.Answer, link)
		return models.ChatResponse{
			Message:     s.assist.ShortReply(ctx, input.Message, answer.Answer, fallback),
			Cards:       []models.ProductCard{},
			Suggestions: Chips,
			CartID:      s.ensureCartID(input.CartID),
		}, detected

	case models.IntentGreeting:
		return models.ChatResponse{
			Message:     greetingReply,
			Cards:       []models.ProductCard{},
			Suggestions: Chips,
			CartID:      s.ensureCartID(input.CartID),
		}, detected

	case models.IntentOrderHelp:
		return models.ChatResponse{
			Message:     s.assist.GeneralReply(ctx, input.Message, orderHelpFallback),
			Cards:       []models.ProductCard{},
			Suggestions: Chips,
			CartID:      s.ensureCartID(input.CartID),
		}, detected

	case models.IntentSmalltalk:
		return models.ChatResponse{
			Message:     s.assist.GeneralReply(ctx, input.Message, smalltalkFallback),
			Cards:       []models.ProductCard{},
			Suggestions: Chips,
			CartID:      s.ensureCartID(input.CartID),
		}, detected
	}

	if detected == models.IntentProductReco && selected == nil {
		if plan := s.clarifier.PlanCategoryClarification(ctx, effectiveQuery, constraints.ProductTypes); plan != nil {
			if !clarify.HasSpecificSubcategoryMention(effectiveQuery, plan.Options) {
				labels := make([]string, 0, len(plan.Options))
				lowered := make([]string, 0, len(plan.Options))
				for _, option := range plan.Options {
					labels = append(labels, option.Label)
					lowered = append(lowered, strings.ToLower(option.Label))
				}
				if len(labels) > 10 {
					labels = labels[:10]
				}
				return models.ChatResponse{
					Message: fmt.Sprintf("Et leiaksin täpsema vaste, täpsusta palun kategooria (%s): %s.",
						plan.MainCategoryLabel, formatNaturalList(lowered)),
					Cards:       []models.ProductCard{},
					Suggestions: labels,
					CartID:      s.ensureCartID(input.CartID),
				}, detected
			}
		}
	}

	cards := s.recommender.RecommendProducts(ctx, search.RecommendInput{
		Query:        effectiveQuery,
		BudgetMax:    constraints.BudgetMax,
		ProductTypes: constraints.ProductTypes,
		Tags:         constraints.Tags,
		Limit:        4,
	})

	resp := models.ChatResponse{
		Cards:       cards,
		Suggestions: Chips,
		Actions:     faq.ComputeCommerceActions(0),
		CartID:      s.ensureCartID(input.CartID),
	}

	if len(cards) > 0 {
		resp.Message = recommendationsIntro
		summaries := make([]ai.SummaryProduct, 0, len(cards))
		for _, card := range cards {
			summaries = append(summaries, ai.SummaryProduct{Title: card.Title, Reason: card.Reason})
		}
		resp.ProductSummary = s.assist.SummarizeProductSet(ctx, effectiveQuery, summaries)
	} else {
		resp.Message = noResultsReply
	}
	return resp, detected
}

// ensureCartID keeps the caller's cart/session id or mints a fresh one so
// transcripts of the same visitor group together.
func (s *Service) ensureCartID(cartID string) string {
	if cartID != "" {
		return cartID
	}
	return uuid.NewString()
}

// AddToCartResult is the add-to-cart response payload.
type AddToCartResult struct {
	OK                    bool                     `json:"ok"`
	CartID                string                   `json:"cartId"`
	Cart                  *catalog.AddToCartResult `json:"cart"`
	Actions               models.CommerceActions   `json:"actions"`
	FreeShippingThreshold float64                  `json:"freeShippingThreshold"`
}

// AddToCart validates the product and builds the storefront add-to-cart
// redirect. The real cart lives on the storefront, so the subtotal driving
// commerce actions is always zero here.
func (s *Service) AddToCart(ctx context.Context, cartID, variantID string, quantity int) (*AddToCartResult, error) {
	if quantity <= 0 {
		quantity = 1
	}
	result, err := s.catalog.AddToCart(ctx, faq.Commerce.StoreBaseURL, variantID, quantity)
	if err != nil {
		return nil, err
	}
	return &AddToCartResult{
		OK:                    true,
		CartID:                s.ensureCartID(cartID),
		Cart:                  result,
		Actions:               faq.ComputeCommerceActions(0),
		FreeShippingThreshold: faq.Commerce.FreeShippingThreshold,
	}, nil
}
