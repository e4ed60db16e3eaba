// Package faq holds the store's policy knowledge and answers support
// questions from it with keyword scoring. Nothing here calls external
// services, so answers stay truthful to the written policies.
package faq

import (
	"fmt"
	"strings"
)

// Links are relative storefront URLs for policy pages.
type Links struct {
	Shipping       string `json:"shipping"`
	Returns        string `json:"returns"`
	Contact        string `json:"contact"`
	Warranty       string `json:"warranty"`
	SalesTerms     string `json:"salesTerms"`
	PaymentMethods string `json:"paymentMethods"`
	Privacy        string `json:"privacy"`
	WithdrawalForm string `json:"withdrawalForm"`
	AboutUs        string `json:"aboutUs"`
	Cart           string `json:"cart"`
}

// DiscountTier is a subtotal threshold granting a percentage discount.
type DiscountTier struct {
	Subtotal    float64 `json:"subtotal"`
	DiscountPct float64 `json:"discountPct"`
}

// CommerceConfig identifies the store and its commercial policy knobs.
type CommerceConfig struct {
	BrandName             string
	CurrencySymbol        string
	FreeShippingThreshold float64
	DiscountThresholds    []DiscountTier
	SupportEmail          string
	SupportPhone          string
	SupportHours          string
	CompanyName           string
	CompanyReg            string
	Address               string
	ShowroomAddress       string
	StoreBaseURL          string
	Links                 Links
}

// Commerce is the store identity and policy configuration.
var Commerce = CommerceConfig{
	BrandName:             "IDA SISUSTUSPOOD & STUUDIO",
	CurrencySymbol:        "€",
	FreeShippingThreshold: 0,
	DiscountThresholds:    nil,
	SupportEmail:          "info@idastuudio.ee",
	SupportPhone:          "+372 5623 0614",
	SupportHours:          "E-R 10:00-17:00",
	CompanyName:           "TISLER DESIGNS OÜ",
	CompanyReg:            "14106877",
	Address:               "IDA 7a, 93811 Kuressaare, Saaremaa",
	ShowroomAddress:       "Kalevi 28, Kuressaare (Ringtee keskus)",
	StoreBaseURL:          "https://idastuudio.ee",
	Links: Links{
		Shipping:       "/myygitingimused/",
		Returns:        "/myygitingimused/",
		Contact:        "/",
		Warranty:       "/myygitingimused/",
		SalesTerms:     "/myygitingimused/",
		PaymentMethods: "/myygitingimused/",
		Privacy:        "/andmekaitsetingimused/",
		WithdrawalForm: "/myygitingimused/",
		AboutUs:        "/",
		Cart:           "/ostukorv/",
	},
}

// Entry pairs trigger keywords with a canned answer.
type Entry struct {
	Keywords []string
	Answer   string
}

// Entries is the FAQ knowledge base matched against customer questions.
var Entries = []Entry{
	{
		Keywords: []string{"tarne", "shipping", "kohaletoimetamine", "laos", "järeltellitav", "jareltellitav"},
		Answer:   "Laos olevate toodete tarneaeg on tavaliselt 1-3 tööpäeva. Järeltellitavate toodete tarneaeg on 1-30 nädalat. Kui tellimuses on mõlemad koos, saadetakse kaup siis, kui kõik tooted on laos olemas.",
	},
	{
		// "tagast" is the shared stem so inflected verb forms (tagastan,
		// tagastada) still reach the entry.
		Keywords: []string{"tagast", "tagastus", "tagastamine", "returns", "refund", "taganemine", "raha tagasi"},
		Answer:   "Tarbijal on 14-päevane taganemisõigus kauba kättesaamisest. Tagastamisavaldus saada aadressile info@idastuudio.ee. Tagastamiskulud kannab üldjuhul klient, v.a. defektse kauba puhul.",
	},
	{
		Keywords: []string{"garantii", "pretensioon", "defekt", "katki", "reklamatsioon", "warranty"},
		Answer:   "Pretensioonide korral kirjuta info@idastuudio.ee ja lisa toote puuduse kirjeldus. Transpordikahjustusest palume teavitada esimesel võimalusel, kuid mitte hiljem kui 3 päeva jooksul kauba kättesaamisest.",
	},
	{
		Keywords: []string{"kontakt", "telefon", "email", "e-post", "klienditugi", "support"},
		Answer:   "Kontakt: info@idastuudio.ee, telefon +372 5623 0614. Stuudiopood asub Kuressaares aadressil Kalevi 28 (Ringtee keskus).",
	},
	{
		Keywords: []string{"makse", "maksmine", "kassa", "pangalink", "ülekanne", "tarneviis"},
		Answer:   "Tellimuse vormistamisel saad valida sobiva makse- ja tarneviisi. Tarnepartnerid on Itella SmartPOST, Omniva ja kuller. Müügileping jõustub pärast makse laekumist.",
	},
	{
		Keywords: []string{"privaatsus", "isikuandmed", "andmekaitse", "gdpr", "privacy"},
		Answer:   "Isikuandmete töötlemise tingimused on kirjeldatud andmekaitsetingimustes. Õiguste teostamiseks saab pöörduda aadressile info@idastuudio.ee.",
	},
	{
		Keywords: []string{"meist", "kes te olete", "ettevõte", "firma"},
		Answer:   "IDA SISUSTUSPOOD & STUUDIO on Eesti sisustuspood, kus on lai valik mööblit, valgusteid, vaipu ja koduaksessuaare. Füüsiline stuudiopood asub Kuressaares.",
	},
	{
		Keywords: []string{"tingimused", "müügitingimused", "muugitingimused", "leping"},
		Answer:   "Müügitingimused, tarne, tagastuse ja pretensioonide kord on kirjas lehel /myygitingimused/.",
	},
}

// BuildKnowledgeBlock renders the store knowledge as the plain-text block
// injected into AI assist prompts.
func BuildKnowledgeBlock() string {
	c := Commerce
	sections := []string{
		"ETTEVÕTTE ANDMED:",
		fmt.Sprintf("- Nimi: %s (%s, reg %s)", c.BrandName, c.CompanyName, c.CompanyReg),
		"- Juriidiline aadress: " + c.Address,
		"- Stuudiopood: " + c.ShowroomAddress,
		"- E-post: " + c.SupportEmail,
		"- Telefon: " + c.SupportPhone,
		"- Tööaeg: " + c.SupportHours,
		"",
		"KOHALETOIMETAMINE:",
		"- Tarnehind lisandub vastavalt valitud tarneviisile (Itella SmartPOST, Omniva, kuller).",
		"- Laos olevad tooted jõuavad kohale tavaliselt 1-3 tööpäevaga.",
		"- Järeltellitavate toodete tarneaeg on 1-30 nädalat.",
		"- Kui tellimuses on koos laotooted ja järeltellitavad tooted, postitatakse tellimus siis, kui kõik tooted on laos olemas.",
		"- Kui soovid laos olevad tooted kohe kätte saada eraldi saadetisena, kirjuta info@idastuudio.ee (postikulu lisandub).",
		"",
		"TAGASTAMINE:",
		"- Taganemisõigus tarbijale on 14 päeva kauba kättesaamisest.",
		"- Tagastamisavaldus tuleb saata vabas vormis aadressile info@idastuudio.ee (koos nime, toote nime ja tellimuse numbriga).",
		"- Tagastamiskulud kannab klient, v.a. defektse kauba puhul. Ärikliendile 14-päevane taganemisõigus ei kohaldu.",
		"- Tagasimakse tehakse hiljemalt 14 päeva jooksul taganemisavalduse kättesaamisest.",
		"- Tagastatav kaup peab olema kasutamata, kahjustamata ja originaalpakendis.",
		"- Järeltellitavate toodete loobumisel võivad rakenduda brändipõhised kulud vastavalt müügitingimustele.",
		"",
		"PRETENSIOONID / GARANTII:",
		"- Pretensioon tuleb esitada e-postile info@idastuudio.ee koos kirjeldusega ning vajadusel fotodega.",
		"- Transpordikahjustusest tuleb teavitada esimesel võimalusel, kuid mitte hiljem kui 3 päeva jooksul kauba kättesaamisest.",
		"- Müügitingimustes on pretensioonide esitamise korras välja toodud 14 päeva alates kauba kättesaamisest.",
		"- Pretensioonide kontakt: info@idastuudio.ee, telefon +372 5623 0614.",
		"",
		"MAKSE JA TARNED:",
		"- Tasumine toimub tellimuse vormistamisel valitud makseviisi kaudu",
		"- Müügileping jõustub pärast makse laekumist",
		"- Tarnevõimalused: Itella SmartPOST, Omniva, kuller",
		"- Täpsed makse- ja tarneviisid kuvatakse kassas tellimuse vormistamisel.",
		"",
		"ETTEVÕTTEST:",
		"- IDA on Eesti sisustuspood, kus on lai valik mööblit, valgusteid, vaipu ja koduaksessuaare erinevates hinnaklassides.",
		"- Füüsiline stuudiopood asub Kuressaares aadressil Kalevi 28 (Ringtee keskuses).",
		"",
		"PRIVAATSUS:",
		"- Isikuandmete töötlemise alused ja õigused on kirjeldatud andmekaitsetingimustes.",
		"- Andmesubjektil on õigus andmetega tutvuda, neid parandada ja pöörduda klienditoe poole: info@idastuudio.ee.",
	}
	return strings.Join(sections, "\n")
}
