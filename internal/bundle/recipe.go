// Package bundle assembles complete furniture sets from the catalog: static
// room/element recipes, a preference scorer, room-scoped candidate filtering
// and the bundle assembler with per-item alternatives.
package bundle

import (
	"strings"

	"sisustusbot/internal/models"
	"sisustusbot/internal/text"
)

// ElementSpec describes how products of one furniture element look in the
// catalog: the category slugs they carry and title keywords they use.
type ElementSpec struct {
	Key      string
	Slugs    []string
	Keywords []string
}

// elementSpecs is the closed element vocabulary. Every element key a room
// menu references must exist here.
var elementSpecs = map[string]ElementSpec{
	"diivan":       {Key: "diivan", Slugs: []string{"diivanid", "nurgadiivanid"}, Keywords: []string{"diivan", "sohva", "nurgadiivan", "mooduldiivan"}},
	"tugitool":     {Key: "tugitool", Slugs: []string{"tugitoolid"}, Keywords: []string{"tugitool", "lounge chair"}},
	"diivanilaud":  {Key: "diivanilaud", Slugs: []string{"diivanilauad", "abilauad"}, Keywords: []string{"diivanilaud", "kohvilaud", "abilaud"}},
	"tvkapp":       {Key: "tvkapp", Slugs: []string{"tv-kapid", "tv-alused"}, Keywords: []string{"tvkapp", "tv kapp", "tv alus"}},
	"vitriinkapp":  {Key: "vitriinkapp", Slugs: []string{"vitriinkapid"}, Keywords: []string{"vitriinkapp", "vitriin"}},
	"riiul":        {Key: "riiul", Slugs: []string{"riiulid", "seinariiulid", "raamaturiiulid"}, Keywords: []string{"riiul", "raamaturiiul", "seinariiul"}},
	"vaip":         {Key: "vaip", Slugs: []string{"vaibad"}, Keywords: []string{"vaip"}},
	"valgusti":     {Key: "valgusti", Slugs: []string{"valgustid", "lambid"}, Keywords: []string{"valgusti", "lamp", "laevalgusti", "porandalamp"}},
	"voodi":        {Key: "voodi", Slugs: []string{"voodid", "voodipeatsid"}, Keywords: []string{"voodi", "voodiraam", "voodipeats"}},
	"ookapp":       {Key: "ookapp", Slugs: []string{"ookapid"}, Keywords: []string{"ookapp", "oo kapp", "nightstand"}},
	"kummut":       {Key: "kummut", Slugs: []string{"kummutid"}, Keywords: []string{"kummut"}},
	"peegel":       {Key: "peegel", Slugs: []string{"peeglid"}, Keywords: []string{"peegel"}},
	"riidekapp":    {Key: "riidekapp", Slugs: []string{"riidekapid", "garderoobid"}, Keywords: []string{"riidekapp", "garderoob"}},
	"soogilaud":    {Key: "soogilaud", Slugs: []string{"soogilauad", "lauad"}, Keywords: []string{"soogilaud", "dining table"}},
	"soogitool":    {Key: "soogitool", Slugs: []string{"soogitoolid", "toolid"}, Keywords: []string{"soogitool", "dining chair"}},
	"puhvet":       {Key: "puhvet", Slugs: []string{"puhvetkapid", "konsoollauad"}, Keywords: []string{"puhvet", "puhvetkapp", "konsoollaud", "serveerimislaud"}},
	"kirjutuslaud": {Key: "kirjutuslaud", Slugs: []string{"kirjutuslauad", "toolauad", "arvutilauad"}, Keywords: []string{"kirjutuslaud", "toolaud", "arvutilaud", "tookoht"}},
	"kontoritool":  {Key: "kontoritool", Slugs: []string{"kontoritoolid"}, Keywords: []string{"kontoritool", "office chair"}},
	"sahtlikapp":   {Key: "sahtlikapp", Slugs: []string{"sahtlikapid"}, Keywords: []string{"sahtlikapp", "sahtliboks"}},
	"baaritool":    {Key: "baaritool", Slugs: []string{"baaritoolid", "taburetid"}, Keywords: []string{"baaritool", "taburet", "bar stool"}},
	"lastevoodi":   {Key: "lastevoodi", Slugs: []string{"lastevoodid", "lastemoobel"}, Keywords: []string{"lastevoodi", "lastemoobel", "laste voodi"}},
	"nagi":         {Key: "nagi", Slugs: []string{"nagid"}, Keywords: []string{"nagi", "riidepuu", "riidenagi"}},
	"pink":         {Key: "pink", Slugs: []string{"pingid", "tumbad"}, Keywords: []string{"pink", "pingike", "tumba", "jalatsipink"}},
}

// accessoryKeys are the element keys that fill accessory role slots.
var accessoryKeys = map[string]bool{
	"valgusti": true,
	"vaip":     true,
	"peegel":   true,
	"nagi":     true,
}

// RoomMenuSpec maps a room to the catalog surface the bundle flow may draw
// from: allowed and excluded category slugs plus the element menu shown to
// the user (element label -> element key).
type RoomMenuSpec struct {
	AllowedSlugs  []string
	ExcludedSlugs []string
	Elements      map[string]string
}

var roomMenus = map[string]RoomMenuSpec{
	"Elutuba": {
		AllowedSlugs:  []string{"diivanid", "tugitoolid", "diivanilauad", "tv-kapid", "riiulid", "vaibad", "valgustid", "peeglid", "kapid"},
		ExcludedSlugs: []string{"soogilauad", "kontoritoolid", "voodid"},
		Elements: map[string]string{
			"Diivan": "diivan", "Tugitool": "tugitool", "Diivanilaud": "diivanilaud",
			"TV-kapp": "tvkapp", "Riiul": "riiul", "Vaip": "vaip", "Valgusti": "valgusti", "Peegel": "peegel",
		},
	},
	"Magamistuba": {
		AllowedSlugs:  []string{"voodid", "voodipeatsid", "ookapid", "kummutid", "riidekapid", "peeglid", "vaibad", "valgustid"},
		ExcludedSlugs: []string{"soogilauad", "baaritoolid", "kontoritoolid"},
		Elements: map[string]string{
			"Voodi": "voodi", "Öökapp": "ookapp", "Kummut": "kummut", "Riidekapp": "riidekapp",
			"Peegel": "peegel", "Vaip": "vaip", "Valgusti": "valgusti",
		},
	},
	"Söögituba": {
		AllowedSlugs:  []string{"soogilauad", "lauad", "soogitoolid", "toolid", "puhvetkapid", "vaibad", "valgustid"},
		ExcludedSlugs: []string{"voodid", "kontoritoolid", "ookapid"},
		Elements: map[string]string{
			"Söögilaud": "soogilaud", "Söögitool": "soogitool", "Puhvetkapp": "puhvet",
			"Vaip": "vaip", "Valgusti": "valgusti",
		},
	},
	"Köök": {
		AllowedSlugs:  []string{"baaritoolid", "taburetid", "riiulid", "valgustid"},
		ExcludedSlugs: []string{"voodid", "diivanid"},
		Elements: map[string]string{
			"Baaritool": "baaritool", "Riiul": "riiul", "Valgusti": "valgusti",
		},
	},
	"Kontor": {
		AllowedSlugs:  []string{"kirjutuslauad", "toolauad", "arvutilauad", "kontoritoolid", "riiulid", "sahtlikapid", "valgustid"},
		ExcludedSlugs: []string{"soogilauad", "voodid", "diivanid"},
		Elements: map[string]string{
			"Kirjutuslaud": "kirjutuslaud", "Kontoritool": "kontoritool", "Riiul": "riiul",
			"Sahtlikapp": "sahtlikapp", "Valgusti": "valgusti",
		},
	},
	"Lastetuba": {
		AllowedSlugs:  []string{"lastevoodid", "lastemoobel", "kirjutuslauad", "toolid", "riiulid", "vaibad", "valgustid"},
		ExcludedSlugs: []string{"baaritoolid", "puhvetkapid"},
		Elements: map[string]string{
			"Lastevoodi": "lastevoodi", "Kirjutuslaud": "kirjutuslaud", "Tool": "soogitool",
			"Riiul": "riiul", "Vaip": "vaip", "Valgusti": "valgusti",
		},
	},
	"Esik": {
		AllowedSlugs:  []string{"riidekapid", "garderoobid", "nagid", "peeglid", "pingid", "vaibad"},
		ExcludedSlugs: []string{"soogilauad", "diivanid"},
		Elements: map[string]string{
			"Riidekapp": "riidekapp", "Nagi": "nagi", "Peegel": "peegel", "Pink": "pink", "Vaip": "vaip",
		},
	},
}

// roomKeywords is the legacy room vocabulary, the broadest matching layer.
var roomKeywords = map[string][]string{
	"Elutuba":     {"diivan", "tool", "laud", "riiul", "kapp", "kapid", "elutuba", "living"},
	"Magamistuba": {"voodi", "madrats", "öökapp", "kummut", "magamistuba", "bedroom"},
	"Söögituba":   {"söögilaud", "söögitool", "söögituba", "diningroom", "dining"},
	"Köök":        {"köögimööbel", "kook", "köök", "kitchen"},
	"Kontor":      {"kirjutuslaud", "kirjutuslauad", "töölaud", "töölauad", "arvutilaud", "arvutilauad", "kontoritool", "riiul", "kontor", "office"},
	"Lastetuba":   {"lastemööbel", "lastetuba", "laste", "kids", "children"},
	"Esik":        {"esik", "riidekapp", "nagel", "hall", "hallway"},
}

// RoleSlot is one structural position of a role-slot bundle.
type RoleSlot struct {
	Role     string
	Keywords []string
	Required bool
}

var roomRoles = map[string][]RoleSlot{
	"Elutuba": {
		{Role: models.RoleAnchor, Keywords: []string{"diivan", "sohva"}, Required: true},
		{Role: models.RoleSecondary, Keywords: []string{"tool", "tugitool", "laud", "kohvilaud"}, Required: true},
		{Role: models.RoleAccessory, Keywords: []string{"vaip", "lamp", "padi", "riiul"}, Required: false},
	},
	"Magamistuba": {
		{Role: models.RoleAnchor, Keywords: []string{"voodi", "voodiraam"}, Required: true},
		{Role: models.RoleSecondary, Keywords: []string{"öökapp", "kummut"}, Required: true},
		{Role: models.RoleAccessory, Keywords: []string{"peegel", "lamp", "vaip"}, Required: false},
	},
	"Söögituba": {
		{Role: models.RoleAnchor, Keywords: []string{"söögilaud", "laud"}, Required: true},
		{Role: models.RoleSecondary, Keywords: []string{"söögitool", "tool"}, Required: true},
		{Role: models.RoleAccessory, Keywords: []string{"lamp", "vaip", "puhvet"}, Required: false},
	},
	"Köök": {
		{Role: models.RoleAnchor, Keywords: []string{"köögimööbel", "kook"}, Required: true},
		{Role: models.RoleSecondary, Keywords: []string{"baartool", "tool"}, Required: false},
		{Role: models.RoleAccessory, Keywords: []string{"lamp", "riiul"}, Required: false},
	},
	"Kontor": {
		{Role: models.RoleAnchor, Keywords: []string{"kirjutuslaud", "kirjutuslauad", "töölaud", "töölauad", "arvutilaud", "arvutilauad"}, Required: true},
		{Role: models.RoleSecondary, Keywords: []string{"kontoritool", "kontoritoolid", "office chair"}, Required: true},
		{Role: models.RoleAccessory, Keywords: []string{"riiul", "lamp", "sahtlikapp"}, Required: false},
	},
	"Lastetuba": {
		{Role: models.RoleAnchor, Keywords: []string{"lastemööbel", "voodi", "laud"}, Required: true},
		{Role: models.RoleSecondary, Keywords: []string{"tool", "riiul"}, Required: true},
		{Role: models.RoleAccessory, Keywords: []string{"lamp", "vaip"}, Required: false},
	},
	"Esik": {
		{Role: models.RoleAnchor, Keywords: []string{"riidekapp", "kapp"}, Required: true},
		{Role: models.RoleSecondary, Keywords: []string{"nagel", "pingike"}, Required: false},
		{Role: models.RoleAccessory, Keywords: []string{"peegel", "vaip"}, Required: false},
	},
}

var genericRoles = []RoleSlot{
	{Role: models.RoleAnchor, Required: true},
	{Role: models.RoleSecondary, Required: true},
	{Role: models.RoleAccessory, Required: false},
}

// AnchorOptions lists the anchor product choices the widget offers per room.
var AnchorOptions = map[string][]string{
	"Elutuba":     {"Diivan", "Tugitool", "TV-kapp", "Bot vali ise"},
	"Magamistuba": {"Voodi", "Kummut", "Öökapp", "Bot vali ise"},
	"Söögituba":   {"Söögilaud", "Söögitoolikomplekt", "Bot vali ise"},
	"Köök":        {"Köögimööbel", "Baartool", "Bot vali ise"},
	"Kontor":      {"Kirjutuslaud", "Kontoritool", "Riiulikapp", "Bot vali ise"},
	"Lastetuba":   {"Lastemööbel komplekt", "Laste voodi", "Lastelaud", "Bot vali ise"},
	"Esik":        {"Riidekapp", "Nagel", "Bot vali ise"},
}

var styleKeywords = map[string][]string{
	"Modern":       {"modern", "minimalist", "kaasaegne", "contemporary"},
	"Skandinaavia": {"skandinaavia", "scandi", "nordic", "põhjamaade"},
	"Klassika":     {"klassika", "klassikaline", "classic", "traditional"},
	"Industriaal":  {"industriaal", "industrial", "metall", "metal"},
	"Boheem":       {"boheem", "boho", "natural", "naturaalne"},
	"Luksus":       {"luksus", "premium", "velvet", "samet", "marble", "marmor"},
}

var colorToneKeywords = map[string][]string{
	"Hele":       {"valge", "white", "beige", "hele", "light", "krem"},
	"Tume":       {"must", "black", "tume", "dark", "hall", "grey"},
	"Neutraalne": {"hall", "beige", "neutraalne", "natural", "naturaalne"},
	"Kontrast":   {"kontrast", "must", "valge", "black", "white"},
}

// materialConflicts maps a material to the safety flags it clashes with.
var materialConflicts = map[string][]string{
	"kangas": {"hasPets", "hasChildren"},
	"nahk":   {"hasPets"},
}

const noMaterialPreference = "Pole vahet"

// ResolveBudget maps the chosen budget bucket to a numeric ceiling. The
// custom bucket uses the typed value; unknown buckets fall back to the
// smallest ceiling.
func ResolveBudget(answers models.BundleAnswers) float64 {
	if answers.BudgetRange == "custom" && answers.BudgetCustom > 0 {
		return answers.BudgetCustom
	}
	switch answers.BudgetRange {
	case "2000-4000":
		return 4000
	case "4000-7000":
		return 7000
	case "7000+":
		return 20000
	}
	return 4000
}

// ResolveElementSpec maps a menu element label (or a bare element key) to
// its spec. Room menus are consulted first so labels like "Tool" resolve to
// the room's intended element.
func ResolveElementSpec(room, element string) (ElementSpec, bool) {
	if menu, ok := roomMenus[room]; ok {
		for label, key := range menu.Elements {
			if strings.EqualFold(label, element) {
				spec, found := elementSpecs[key]
				return spec, found
			}
		}
	}
	if spec, ok := elementSpecs[text.Normalize(element)]; ok {
		return spec, true
	}
	normalized := text.Normalize(element)
	for key, spec := range elementSpecs {
		if normalized != "" && (strings.Contains(normalized, key) || strings.Contains(key, normalized)) {
			return spec, true
		}
	}
	return ElementSpec{}, false
}

// cardSearchText renders the matching surface of one card.
func cardSearchText(card *models.ProductCard) string {
	parts := []string{card.Title}
	parts = append(parts, card.CategoryNames...)
	parts = append(parts, card.CategorySlugs...)
	parts = append(parts, card.Description)
	return text.Normalize(strings.Join(parts, " "))
}

func cardHasSlug(card *models.ProductCard, slugs []string) bool {
	for _, have := range card.CategorySlugs {
		for _, want := range slugs {
			if have == want {
				return true
			}
		}
	}
	return false
}

func cardHasKeyword(card *models.ProductCard, keywords []string) bool {
	searchable := cardSearchText(card)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(searchable, text.Normalize(kw)) {
			return true
		}
	}
	return false
}

// InferElementKey guesses which element a product realizes. Specific
// cabinet-like keys are checked before broad ones so a nightstand is never
// classified as a generic shelf.
var elementInferenceOrder = []string{
	"ookapp", "tvkapp", "vitriinkapp", "kummut", "riidekapp", "sahtlikapp",
	"lastevoodi", "voodi", "diivanilaud", "soogilaud", "kirjutuslaud",
	"kontoritool", "baaritool", "soogitool", "tugitool", "diivan", "puhvet",
	"riiul", "peegel", "vaip", "valgusti", "nagi", "pink",
}

func InferElementKey(card *models.ProductCard) string {
	for _, key := range elementInferenceOrder {
		spec := elementSpecs[key]
		if cardHasSlug(card, spec.Slugs) || cardHasKeyword(card, spec.Keywords) {
			return key
		}
	}
	return ""
}
