// Package search derives structured semantics from free-text product
// queries and relevance-ranks candidate cards against them. It guards the
// recommendation flow against the two classic keyword-search failures:
// surfacing the wrong furniture type and ignoring stated dimension limits.
package search

import (
	"regexp"
	"strconv"
	"strings"

	"sisustusbot/internal/text"
)

// QueryType names a detected required furniture type. Empty means no
// specific type requirement.
type QueryType string

const (
	TypeNone         QueryType = ""
	TypeNightstand   QueryType = "ookapp"
	TypeTVCabinet    QueryType = "tvkapp"
	TypeDisplayCase  QueryType = "vitriinkapp"
	TypeDresser      QueryType = "kummut"
	TypeShelf        QueryType = "riiul"
	TypeTable        QueryType = "laud"
	TypeChair        QueryType = "tool"
)

// DimensionAxis narrows which product dimension a size constraint refers to.
type DimensionAxis string

const (
	AxisAny    DimensionAxis = "any"
	AxisWidth  DimensionAxis = "width"
	AxisLength DimensionAxis = "length"
)

// QuerySemantics is everything the relevance scorer needs to know about a
// query, derived once up front.
type QuerySemantics struct {
	NormalizedQuery     string
	SmallPreferred      bool
	RequiredType        QueryType
	RequiredAliases     []string
	ExcludedAliases     []string
	DimensionMaxCm      float64
	DimensionMinCm      float64
	HasDimensionRequest bool
	DimensionAxis       DimensionAxis
}

var (
	dimensionValueRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(m|meetrit|meetri|meeter|cm)\b`)
	maxSignalRe      = regexp.MustCompile(`\b(kuni|alla|max|sisse|mahub)\b|\bvaba ruumi?\b|\bseina vahel\b|\bvahel\b`)
	minSignalRe      = regexp.MustCompile(`\b(vahemalt|alates|min|rohkem|suurem)\b`)
	maxTiebreakRe    = regexp.MustCompile(`\b(sisse|kuni|alla|max|mahub)\b`)
	roomSignalRe     = regexp.MustCompile(`\bruum\b`)
	widthAxisRe      = regexp.MustCompile(`\blai(us|a|ad|ale|une)?\b|\bwidth\b|\bwide\b`)
	lengthAxisRe     = regexp.MustCompile(`\bpikk(us|a|ad|ale|une)?\b|\blength\b|\blong\b`)
	smallPreferredRe = regexp.MustCompile(`\bvaik|\bpisik|\bkompakt|\bkitsa|\bkitsas|\bmadal|\bsmall\b`)
)

// parseDimensionConstraint reads one "number + length unit" expression out
// of a normalized query and classifies it as an upper or lower bound using
// the surrounding directional words. Meters convert to centimeters. A value
// with no directional signal defaults to an upper bound; "ruum" (room,
// available space) also implies an upper bound.
func parseDimensionConstraint(normalized string) (maxCm, minCm float64, has bool) {
	match := dimensionValueRe.FindStringSubmatch(normalized)
	if match == nil {
		return 0, 0, false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil || value <= 0 {
		return 0, 0, false
	}

	if match[2] != "cm" {
		value *= 100
	}

	hasMax := maxSignalRe.MatchString(normalized)
	hasMin := minSignalRe.MatchString(normalized)

	switch {
	case hasMax && !hasMin:
		return value, 0, true
	case hasMin && !hasMax:
		return 0, value, true
	case hasMax && hasMin:
		if maxTiebreakRe.MatchString(normalized) {
			return value, 0, true
		}
		return 0, value, true
	case roomSignalRe.MatchString(normalized):
		return value, 0, true
	}
	return value, 0, true
}

func detectDimensionAxis(normalized string) DimensionAxis {
	if widthAxisRe.MatchString(normalized) {
		return AxisWidth
	}
	if lengthAxisRe.MatchString(normalized) {
		return AxisLength
	}
	return AxisAny
}

// typeRule is one required-type alias group. Order matters: specific
// cabinet types must be checked before anything that could swallow them.
type typeRule struct {
	queryType QueryType
	triggers  []string
	required  []string
	excluded  []string
}

var typeRules = []typeRule{
	{
		queryType: TypeNightstand,
		triggers:  []string{"ookapp", "oo kapp", "nightstand"},
		required:  []string{"ookapp", "oo kapp", "nightstand", "ookapid"},
		excluded:  []string{"tvkapp", "tv kapp", "vitriinkapp", "raamaturiiul", "seinariiul", "riiul"},
	},
	{
		queryType: TypeTVCabinet,
		triggers:  []string{"tvkapp", "tv kapp"},
		required:  []string{"tvkapp", "tv kapp"},
		excluded:  []string{"ookapp", "vitriinkapp"},
	},
	{
		queryType: TypeDisplayCase,
		triggers:  []string{"vitriinkapp"},
		required:  []string{"vitriinkapp"},
		excluded:  []string{"ookapp", "tvkapp", "tv kapp"},
	},
	{
		queryType: TypeDresser,
		triggers:  []string{"kummut"},
		required:  []string{"kummut"},
	},
	{
		queryType: TypeShelf,
		triggers:  []string{"riiul", "raamaturiiul", "seinariiul"},
		required:  []string{"riiul", "raamaturiiul", "seinariiul"},
		excluded:  []string{"ookapp", "tvkapp", "tv kapp", "vitriinkapp"},
	},
	{
		queryType: TypeTable,
		triggers:  []string{"laud", "soogilaud", "diivanilaud", "abilaud", "aialaud", "kirjutuslaud", "konsoollaud"},
		required:  []string{"laud", "soogilaud", "diivanilaud", "abilaud", "aialaud", "kirjutuslaud", "konsoollaud"},
	},
	{
		queryType: TypeChair,
		triggers:  []string{"tool", "tugitool", "soogitool", "baaritool", "kontoritool", "office chair", "dining chair", "lounge chair"},
		required:  []string{"tool", "tugitool", "soogitool", "baaritool", "kontoritool", "chair", "dining chair", "lounge chair"},
	},
}

// DetectQuerySemantics derives the full semantics profile for one query.
// Pure function of its input; safe to call repeatedly.
func DetectQuerySemantics(query string) QuerySemantics {
	normalized := text.Normalize(query)
	maxCm, minCm, hasDimension := parseDimensionConstraint(normalized)

	semantics := QuerySemantics{
		NormalizedQuery:     normalized,
		SmallPreferred:      smallPreferredRe.MatchString(normalized),
		DimensionMaxCm:      maxCm,
		DimensionMinCm:      minCm,
		HasDimensionRequest: hasDimension,
		DimensionAxis:       detectDimensionAxis(normalized),
	}

	for _, rule := range typeRules {
		if text.ContainsAny(normalized, rule.triggers) {
			semantics.RequiredType = rule.queryType
			semantics.RequiredAliases = rule.required
			semantics.ExcludedAliases = rule.excluded
			break
		}
	}
	return semantics
}
