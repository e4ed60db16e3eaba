package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sisustusbot/internal/common/logger"
	"sisustusbot/internal/common/observability"
	"sisustusbot/internal/models"
)

// Assist bundles the chat-facing AI tasks. Every method degrades to a
// deterministic result when the underlying client is disabled or errors.
type Assist struct {
	client       Client
	log          logger.Logger
	obs          *observability.Observability
	knowledge    string
	supportEmail string
	supportPhone string
}

// NewAssist wires the assist task layer. knowledge is the rendered store
// knowledge block injected into support prompts.
func NewAssist(client Client, log logger.Logger, obs *observability.Observability, knowledge, supportEmail, supportPhone string) *Assist {
	return &Assist{
		client:       client,
		log:          log,
		obs:          obs,
		knowledge:    knowledge,
		supportEmail: supportEmail,
		supportPhone: supportPhone,
	}
}

// Enabled reports whether AI assistance is active.
func (a *Assist) Enabled() bool {
	return a.client != nil && a.client.Enabled()
}

func (a *Assist) strictRules() string {
	return strings.TrimSpace(fmt.Sprintf(`REEGLID, mida sa PEAD järgima:
1. Vasta AINULT allpool toodud poe teabe põhjal. Kui vastust ei ole teabes olemas, ütle ausalt "Kahjuks ei oska sellele vastata. Palun võta ühendust %s või helista %s."
2. Ära kunagi leiuta fakte, hindu, tähtaegu ega tingimusi, mida teabes pole.
3. Vasta eesti keeles, lühidalt (1-3 lauset), sõbralikult ja konkreetselt.
4. Ära väljasta tootenimesid, hindu ega tootekaarte tekstivastusena - tootesoovitused tulevad eraldi süsteemist.
5. Kui klient on vihane või probleem on tõsine, suuna alati kontakti: %s, %s.
6. Sa oled IDA Sisustuspood klienditoe assistent.
7. Kui vastad tarne/tagastuse/pretensiooni/makse/privaatsuse teemal, lisa lõppu sobiv leheviide kujul: "Rohkem: /myygitingimused/" või "Rohkem: /andmekaitsetingimused/".`,
		a.supportEmail, a.supportPhone, a.supportEmail, a.supportPhone))
}

func (a *Assist) supportSystemPrompt() string {
	return fmt.Sprintf("Sa oled IDA Sisustuspood klienditoe vestlusassistent.\n\n%s\n\nPOE TEAVE:\n%s", a.strictRules(), a.knowledge)
}

func (a *Assist) generalSystemPrompt() string {
	return fmt.Sprintf("Sa oled IDA Sisustuspood vestlusassistent, kes aitab kliente sõbralikult.\n\n%s\n\nPOE TEAVE:\n%s", a.strictRules(), a.knowledge)
}

func (a *Assist) complete(ctx context.Context, task, systemPrompt, userPrompt string) (string, bool) {
	if !a.Enabled() {
		return "", false
	}
	text, err := a.client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		a.log.Warn("assist call failed", map[string]interface{}{
			"task":  task,
			"error": err.Error(),
		})
		a.obs.RecordAssistFallback(ctx, task)
		return "", false
	}
	if text == "" {
		a.obs.RecordAssistFallback(ctx, task)
		return "", false
	}
	return text, true
}

// ShortReply answers a support question grounded in FAQ context. The fallback
// text is returned verbatim on any failure.
func (a *Assist) ShortReply(ctx context.Context, userText, contextSummary, fallback string) string {
	prompt := fmt.Sprintf("Kliendi küsimus: %s\nFAQ kontekst: %s\n\nVasta 1-3 lausega ainult poe teabe põhjal. Kui FAQ kontekst sisaldab vastust, kasuta seda.", userText, contextSummary)
	if text, ok := a.complete(ctx, "short_reply", a.supportSystemPrompt(), prompt); ok {
		return text
	}
	return fallback
}

// GeneralReply handles smalltalk and open-ended messages.
func (a *Assist) GeneralReply(ctx context.Context, userText, fallback string) string {
	prompt := fmt.Sprintf("Kliendi sõnum: %s\n\nVasta lühidalt ja kasulikult. Kui klient küsib toodete kohta, palu täpsustada toote tüüpi (nt diivan, laud, valgusti, vaip, peegel) ja eelarvet. Ära leiuta hindu ega tootenimesid.", userText)
	if text, ok := a.complete(ctx, "general_reply", a.generalSystemPrompt(), prompt); ok {
		return text
	}
	return fallback
}

// IntentGuess is a classified intent with its confidence.
type IntentGuess struct {
	Intent     models.Intent
	Confidence float64
}

var validIntents = map[models.Intent]bool{
	models.IntentGreeting:    true,
	models.IntentShipping:    true,
	models.IntentReturns:     true,
	models.IntentFAQ:         true,
	models.IntentOrderHelp:   true,
	models.IntentProductReco: true,
	models.IntentSmalltalk:   true,
}

const intentClassifierPrompt = `Sa oled e-kaubanduse vestluse intentide klassifitseerija.

Tagasta AINULT JSON objekt kujul:
{"intent":"greeting|shipping|returns|faq|order_help|product_reco|smalltalk","confidence":0.0-1.0}

REEGLID:
- Kui kasutaja ütleb lühidalt "okei", "aitäh", "selge", "jah", "ei", "super" vms ning ei küsi midagi konkreetset, vali "smalltalk".
- Kui kasutaja küsib tarne/kohaletoimetamise kohta => "shipping".
- Kui kasutaja küsib tagastuse/taganemise/pretensiooni kohta => "returns".
- Kui kasutaja küsib garantiid, kontakte, makseviise, privaatsust, ettevõtte infot, tingimusi => "faq".
- Kui kasutaja küsib tellimuse staatust/makse/arve kohta => "order_help".
- Kui kasutaja otsib toodet või palub soovitust (nt diivan, laud, valgusti, vaip, peegel, eelarve) => "product_reco".
- Kui on puhas tervitus => "greeting".
- Kasuta vestluse ajalugu konteksti jaoks, aga klassifitseeri kasutaja VIIMANE sõnum.`

// ClassifyIntent asks the model to classify the latest message against the
// recent history. Returns nil when unavailable so callers use the
// deterministic classifier.
func (a *Assist) ClassifyIntent(ctx context.Context, userMessage string, history []models.ChatTurn) *IntentGuess {
	start := len(history) - 8
	if start < 0 {
		start = 0
	}
	var lines []string
	for _, turn := range history[start:] {
		role := "ASSISTENT"
		if turn.Role == "user" {
			role = "KLIENT"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, turn.Text))
	}
	historyText := strings.Join(lines, "\n")
	if historyText == "" {
		historyText = "(puudub)"
	}

	prompt := fmt.Sprintf("VESTLUSE AJALUGU:\n%s\n\nVIIMANE SÕNUM:\n%s\n\nTagasta ainult JSON.", historyText, userMessage)
	text, ok := a.complete(ctx, "classify_intent", intentClassifierPrompt, prompt)
	if !ok {
		return nil
	}

	raw := ExtractJSONObject(text)
	if raw == "" {
		return nil
	}

	var parsed struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil
	}

	intent := models.Intent(parsed.Intent)
	if !validIntents[intent] {
		return nil
	}
	confidence := parsed.Confidence
	if confidence < 0 || confidence > 1 {
		confidence = 0
	}
	return &IntentGuess{Intent: intent, Confidence: confidence}
}

const searchQueryPlannerPrompt = `Sa oled e-poe otsinguassistent. Sinu ülesanne on teha kliendi tekstist head WooCommerce otsingupäringud.

Tagasta AINULT JSON objekt kujul:
{"queries":["..."]}

REEGLID:
1. Tagasta 3-8 lühikest otsingupäringut.
2. Kasuta esmalt konkreetset tootetüüpi (nt kontoritool, öökapp, diivanilaud).
3. Lisa vajadusel sünonüümid ja ingliskeelne vaste (nt "chair", "office chair"), et leida rohkem sobivaid tooteid.
4. Kui klient mainib omadusi (värv, materjal, stiil), lisa need eraldi päringutena.
5. Ära lisa seletusi, ainult JSON.`

// PlanSearchQueries turns a message into storefront search queries. AI
// suggestions are merged ahead of the fallback queries, capped at ten.
func (a *Assist) PlanSearchQueries(ctx context.Context, userMessage string, fallbackQueries []string) []string {
	fallback := dedupeStrings(fallbackQueries, 8)

	prompt := fmt.Sprintf("KLIENDI SÕNUM: %q\n\nTagasta ainult JSON.", userMessage)
	text, ok := a.complete(ctx, "plan_search_queries", searchQueryPlannerPrompt, prompt)
	if !ok {
		return fallback
	}

	raw := ExtractJSONObject(text)
	if raw == "" {
		return fallback
	}

	var parsed struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return fallback
	}

	var normalized []string
	for _, q := range parsed.Queries {
		q = strings.TrimSpace(q)
		if len(q) >= 2 && len(q) <= 64 {
			normalized = append(normalized, q)
		}
	}

	merged := dedupeStrings(append(normalized, fallback...), 10)
	if len(merged) == 0 {
		return fallback
	}
	return merged
}

// ProductPick is one AI-chosen product from a candidate pool.
type ProductPick struct {
	Handle string `json:"handle"`
	Reason string `json:"reason"`
}

const productRecoPrompt = `Sa oled IDA Sisustuspood tooteekspert. Sinu ülesanne on valida kliendi vajadustele kõige sobivamad tooted kataloogist.

REEGLID:
1. Analüüsi kliendi sõnumit: ruumi tüüp, stiil, mõõdud, funktsioon, eelarve ja välistused.
2. Vali AINULT tooted, mis on kataloogis olemas. Ära leiuta tooteid.
3. Tüübiloogika on range: kui klient küsib konkreetset tüüpi (nt "öökapp"), siis ÄRA paku teisi tüüpe (nt vitriinkapp, riiul, TV-kapp).
4. Kui klient täpsustab omadust (nt "väike", "kitsas"), siis väldi tooteid, mis sellele selgelt ei vasta.
5. Kui sobib ainult 1 toode, tagasta ainult 1. Ära lisa täiteks lisatooteid.
6. Kui ükski toode ei vasta kirjeldusele piisavalt hästi, tagasta tühi massiiv [].
7. Iga toote kohta kirjuta lühike eestikeelne põhjendus (1 lause), miks see kliendile sobib.
8. Tagasta JSON massiiv kujul: [{"handle":"toote-slug","reason":"Põhjendus eesti keeles"}]
9. Tagasta maksimaalselt nii palju tooteid kui küsitud (limit).
10. Eelisjärjestus: kõige sobivam toode esimesena.`

// PickProducts asks the model to choose products from a candidate summary.
// Returns nil on any failure so the caller can fall back to scored selection.
func (a *Assist) PickProducts(ctx context.Context, userMessage, catalogSummary string, limit int) []ProductPick {
	prompt := fmt.Sprintf("TOOTEKATALOOG:\n%s\n\nKLIENDI SÕNUM: %q\n\nVali kuni %d kõige sobivamat toodet. Kui sobib ainult 1, tagasta 1. Kui ükski ei sobi, tagasta []. Tagasta AINULT JSON massiiv, mitte midagi muud.", catalogSummary, userMessage, limit)
	text, ok := a.complete(ctx, "pick_products", productRecoPrompt, prompt)
	if !ok {
		return nil
	}

	raw := ExtractJSONArray(text)
	if raw == "" {
		return nil
	}

	var parsed []ProductPick
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil
	}

	var picks []ProductPick
	for _, p := range parsed {
		if p.Handle != "" {
			picks = append(picks, p)
		}
	}
	return picks
}

// SummaryProduct is a title/reason pair for product set summaries.
type SummaryProduct struct {
	Title  string
	Reason string
}

const productSetSummaryPrompt = `Sa oled IDA Sisustuspood tooteekspert. Sulle antakse kliendi sõnum ja valitud toodete nimekiri.
Kirjuta lühike (2-3 lauset) eestikeelne kokkuvõte, mis selgitab kuidas need tooted kokku sobivad (stiil, funktsioon, ruumilahendus).
Ära korda iga toote nime eraldi - räägi tervikust. Ole sõbralik ja konkreetne.
Tagasta AINULT kokkuvõtte tekst.`

// SummarizeProductSet writes a short summary of why a multi-product pick
// hangs together. Empty string when fewer than two products or unavailable.
func (a *Assist) SummarizeProductSet(ctx context.Context, userMessage string, products []SummaryProduct) string {
	if len(products) < 2 {
		return ""
	}

	var lines []string
	for i, p := range products {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, p.Title, p.Reason))
	}

	prompt := fmt.Sprintf("KLIENDI SÕNUM: %q\n\nVALITUD TOOTED:\n%s\n\nKirjuta lühike kokkuvõte, miks need tooted moodustavad hea koosluse.", userMessage, strings.Join(lines, "\n"))
	text, ok := a.complete(ctx, "summarize_products", productSetSummaryPrompt, prompt)
	if !ok {
		return ""
	}
	return text
}

func dedupeStrings(values []string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}
