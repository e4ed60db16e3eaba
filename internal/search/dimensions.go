package search

import (
	"regexp"
	"sort"
	"strconv"
)

// DimensionProfile is every centimeter figure parsed from a product's
// title and handle, split into axis-tolerant candidate sets.
type DimensionProfile struct {
	All              []float64
	WidthCandidates  []float64
	LengthCandidates []float64
	MaxDimension     float64
	HasDimensions    bool
}

var (
	crossDimensionRe = regexp.MustCompile(`(?i)(\d{2,3})\s*[x×]\s*(\d{2,3})(?:\s*[x×]\s*(\d{2,3}))?`)
	diameterRe       = regexp.MustCompile(`(?i)[ø⌀o]\s*(\d{2,3})(?:\s*cm)?`)
	bareCmRe         = regexp.MustCompile(`(?i)(\d{2,3})\s*cm\b`)
)

func uniqueSorted(values []float64) []float64 {
	seen := make(map[float64]struct{}, len(values))
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v <= 0 {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// ParseDimensionProfile extracts "WxH", "WxHxD", diameter and bare "Ncm"
// figures from product text. Furniture titles do not agree on axis order,
// so for a cross expression both leading numbers are offered as width
// candidates and as length candidates.
func ParseDimensionProfile(value string) DimensionProfile {
	var numbers, widths, lengths []float64

	for _, match := range crossDimensionRe.FindAllStringSubmatch(value, -1) {
		first, err1 := strconv.ParseFloat(match[1], 64)
		second, err2 := strconv.ParseFloat(match[2], 64)
		if err1 == nil {
			numbers = append(numbers, first)
		}
		if err2 == nil {
			numbers = append(numbers, second)
		}
		if match[3] != "" {
			if third, err := strconv.ParseFloat(match[3], 64); err == nil {
				numbers = append(numbers, third)
			}
		}
		if err1 == nil && err2 == nil {
			lower, higher := first, second
			if lower > higher {
				lower, higher = higher, lower
			}
			widths = append(widths, lower, second)
			lengths = append(lengths, higher, first)
		}
	}

	for _, match := range diameterRe.FindAllStringSubmatch(value, -1) {
		if parsed, err := strconv.ParseFloat(match[1], 64); err == nil {
			numbers = append(numbers, parsed)
			widths = append(widths, parsed)
			lengths = append(lengths, parsed)
		}
	}

	for _, match := range bareCmRe.FindAllStringSubmatch(value, -1) {
		if parsed, err := strconv.ParseFloat(match[1], 64); err == nil {
			numbers = append(numbers, parsed)
		}
	}

	all := uniqueSorted(numbers)
	profile := DimensionProfile{
		All:              all,
		WidthCandidates:  uniqueSorted(widths),
		LengthCandidates: uniqueSorted(lengths),
	}
	if len(all) > 0 {
		profile.HasDimensions = true
		profile.MaxDimension = all[len(all)-1]
	}
	return profile
}
