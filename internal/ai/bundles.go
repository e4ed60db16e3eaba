package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sisustusbot/internal/models"
)

// CatalogItem is the compact product view handed to the bundle planner.
type CatalogItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Price       string   `json:"price"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
}

// BundleItemPick is one product the planner placed into a bundle.
type BundleItemPick struct {
	ID           string `json:"id"`
	RoleInBundle string `json:"roleInBundle"`
	WhyChosen    string `json:"whyChosen"`
}

// BundlePlan is a planner-proposed bundle referencing catalog item ids.
type BundlePlan struct {
	Title        string           `json:"title"`
	StyleSummary string           `json:"styleSummary"`
	KeyReasons   []string         `json:"keyReasons"`
	Tradeoffs    []string         `json:"tradeoffs"`
	Items        []BundleItemPick `json:"items"`
}

const bundlePlannerPrompt = `Sa oled IDA Stuudio sisekujundusnõustaja, kes koostab personaalseid mööblikomplekte.

Saad kliendi eelistused ja poe tootekataloogist filtreeritud toodete nimekirja.
Sinu ülesanne: vali kataloogist sobivad tooted ja koosta 1–3 erinevat terviklikku mööblikomplekti.

RUUMIDE ELEMENDID (viide, milliseid tooteid eri tubades vajatakse):
- Elutuba: diivan (ankur) + kohvilaud + tugitool + TV-alus/riiul + lamp/valgusti + vaip + dekoratiivsed patjad
- Magamistuba: voodi (ankur) + öökapp + kummut/riietumislaud + peegel + lamp + vaip
- Söögituba: söögilaud (ankur) + söögitoolid + puhvet/serveerimislaud + pendel/lamp + vaip
- Köök: köögimööbel (ankur) + baaritool/taburet + riiul/hoidik + lamp
- Kontor: kirjutuslaud/töölaud (ankur) + kontoritool + riiulikapp + lamp + aksessuaarid
- Lastetuba: lastemööbel/voodi (ankur) + laud/töölaud + tool/istmik + riiul/hoiukas + lamp + vaip
- Esik: riidekapp (ankur) + nagel/riidepuu + jalatsiriiul + peegel + pingike/tool

REEGLID:
- Vali AINULT elemendid, mida klient on märkinud "Valitud elemendid" nimekirjas
- Iga toode täidab unikaalse rolli — ära lisa samast kategooriast mitut toodet
- Rollide jaotus: 1 "ankur" (peamine mööbel), 1–3 "lisatoode" (täiendav mööbel eri kategooriast), 1–2 "aksessuaar" (valgustus/tekstiil/dekor)
- Igal elemendil on oma stiili- ja materjalieelistus — järgi neid täpselt (kui "Pole vahet", siis vali parim saadaolev)
- Kui klient eelistab konkreetset materjali elemendil, eelista seda materjali selle elemendi tootes
- Kui on lapsed või lemmikloomad, väldi kangast/nahka; eelista kunstnahka, mikrofiiber
- Iga komplekt peab erinema teistest (erinev ankurtoode, fookus või stiilikombinatsioon)
- Eelarve on orienteeriv — ära sunni kõiki tooteid kataloogi piires maksimeerima
- Kui kataloogis pole mõnele elemendile sobivat toodet, jäta see element vahele
- Kui kataloogis pole piisavalt sobivaid tooteid üldse, tagasta vähem komplekte (aga vähemalt 1)
- Iga toote whyChosen väli: konkreetne eestikeelne põhjendus miks just see toode sellele kliendile sobib

Tagasta AINULT JSON massiiv, ilma selgitusteta:
[
  {
    "title": "Komplekti atraktiivne pealkiri (max 5 sõna, eesti keeles)",
    "styleSummary": "1-2 lauseline kirjeldus komplekti esteetikast ja terviklikkusest",
    "keyReasons": ["põhjus1", "põhjus2", "põhjus3"],
    "tradeoffs": ["kompromiss (kui on, muidu tühi massiiv)"],
    "items": [
      { "id": "toote_id_kataloogist", "roleInBundle": "ankur", "whyChosen": "Konkreetne põhjus eesti keeles" },
      { "id": "toote_id_kataloogist", "roleInBundle": "lisatoode", "whyChosen": "Konkreetne põhjus" },
      { "id": "toote_id_kataloogist", "roleInBundle": "aksessuaar", "whyChosen": "Viimistleb ruumi" }
    ]
  }
]`

// GenerateBundles asks the planner for complete bundles over the filtered
// catalog. Returns nil on any failure so the caller runs the deterministic
// assembler instead.
func (a *Assist) GenerateBundles(ctx context.Context, catalog []CatalogItem, answers models.BundleAnswers) []BundlePlan {
	if !a.Enabled() {
		return nil
	}

	elementPrefs := "  (täpsustamata)"
	if len(answers.ElementPreferences) > 0 {
		var lines []string
		for _, ep := range answers.ElementPreferences {
			lines = append(lines, fmt.Sprintf("  - %s: stiil=%s, materjal=%s", ep.Element, ep.Style, ep.Material))
		}
		elementPrefs = strings.Join(lines, "\n")
	}

	selected := "  (kõik ruumielemendid)"
	if len(answers.SelectedElements) > 0 {
		var lines []string
		for _, e := range answers.SelectedElements {
			lines = append(lines, "  - "+e)
		}
		selected = strings.Join(lines, "\n")
	}

	yesNo := func(v bool) string {
		if v {
			return "Jah"
		}
		return "Ei"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "KLIENDI EELISTUSED:\n")
	fmt.Fprintf(&sb, "- Ruum: %s\n", answers.Room)
	fmt.Fprintf(&sb, "- Soovitud ankurtoode: %s\n", answers.AnchorProduct)
	budget := answers.BudgetRange
	if answers.BudgetCustom > 0 {
		budget += fmt.Sprintf(" (täpne: %.0f€)", answers.BudgetCustom)
	}
	fmt.Fprintf(&sb, "- Eelarve: %s\n", budget)
	fmt.Fprintf(&sb, "- Värvitoon (üldpalett): %s\n", answers.ColorTone)
	fmt.Fprintf(&sb, "- Lapsi majas: %s\n", yesNo(answers.HasChildren))
	fmt.Fprintf(&sb, "- Lemmikloomi: %s\n", yesNo(answers.HasPets))
	if answers.DimensionsKnown {
		fmt.Fprintf(&sb, "- Ruumi mõõdud: %.0fcm x %.0fcm\n", answers.WidthCm, answers.LengthCm)
	}
	fmt.Fprintf(&sb, "\nVALITUD ELEMENDID (koosta komplekt AINULT nendest):\n%s\n", selected)
	fmt.Fprintf(&sb, "\nELEMENTIDE STIILI- JA MATERJALIEELISTUSED:\n%s\n", elementPrefs)

	catalogJSON, _ := json.MarshalIndent(catalog, "", "  ")
	fmt.Fprintf(&sb, "\nKATALOOG (%d toodet):\n%s", len(catalog), string(catalogJSON))

	text, ok := a.complete(ctx, "generate_bundles", bundlePlannerPrompt, sb.String())
	if !ok {
		return nil
	}

	raw := ExtractJSONArray(text)
	if raw == "" {
		return nil
	}

	var plans []BundlePlan
	if err := json.Unmarshal([]byte(raw), &plans); err != nil {
		return nil
	}
	if len(plans) == 0 {
		return nil
	}
	return plans
}
