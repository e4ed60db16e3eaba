package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectQuerySemantics(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, s QuerySemantics)
	}{
		{
			name:  "nightstand with upper bound",
			query: "öökapp alla 50cm",
			check: func(t *testing.T, s QuerySemantics) {
				assert.Equal(t, TypeNightstand, s.RequiredType)
				assert.True(t, s.HasDimensionRequest)
				assert.Equal(t, 50.0, s.DimensionMaxCm)
				assert.Zero(t, s.DimensionMinCm)
				assert.Equal(t, AxisAny, s.DimensionAxis)
			},
		},
		{
			name:  "meters convert to centimeters",
			query: "laud vähemalt 2 meetrit",
			check: func(t *testing.T, s QuerySemantics) {
				assert.Equal(t, TypeTable, s.RequiredType)
				assert.Equal(t, 200.0, s.DimensionMinCm)
				assert.Zero(t, s.DimensionMaxCm)
			},
		},
		{
			name:  "width axis hint",
			query: "riiul laius kuni 30cm",
			check: func(t *testing.T, s QuerySemantics) {
				assert.Equal(t, TypeShelf, s.RequiredType)
				assert.Equal(t, AxisWidth, s.DimensionAxis)
				assert.Equal(t, 30.0, s.DimensionMaxCm)
			},
		},
		{
			name:  "small preference",
			query: "väike öökapp",
			check: func(t *testing.T, s QuerySemantics) {
				assert.True(t, s.SmallPreferred)
				assert.Equal(t, TypeNightstand, s.RequiredType)
				assert.False(t, s.HasDimensionRequest)
			},
		},
		{
			name:  "nightstand wins over shelf exclusion list",
			query: "öökapp või riiul",
			check: func(t *testing.T, s QuerySemantics) {
				assert.Equal(t, TypeNightstand, s.RequiredType)
				assert.Contains(t, s.ExcludedAliases, "riiul")
			},
		},
		{
			name:  "bare dimension defaults to upper bound",
			query: "tv kapp 160cm",
			check: func(t *testing.T, s QuerySemantics) {
				assert.Equal(t, TypeTVCabinet, s.RequiredType)
				assert.Equal(t, 160.0, s.DimensionMaxCm)
			},
		},
		{
			name:  "conflicting signals prefer fit words",
			query: "laud vähemalt 2 toolile aga peab mahtuma 180cm sisse",
			check: func(t *testing.T, s QuerySemantics) {
				assert.Equal(t, 180.0, s.DimensionMaxCm)
				assert.Zero(t, s.DimensionMinCm)
			},
		},
		{
			name:  "no type no dimension",
			query: "midagi ilusat elutuppa",
			check: func(t *testing.T, s QuerySemantics) {
				assert.Equal(t, TypeNone, s.RequiredType)
				assert.Empty(t, s.RequiredAliases)
				assert.False(t, s.HasDimensionRequest)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, DetectQuerySemantics(tt.query))
		})
	}
}

func TestParseDimensionProfile(t *testing.T) {
	t.Run("cross expression", func(t *testing.T) {
		p := ParseDimensionProfile("Öökapp LUNA 45x35x50 cm")
		assert.True(t, p.HasDimensions)
		assert.Equal(t, []float64{35, 45, 50}, p.All)
		assert.Equal(t, 50.0, p.MaxDimension)
		assert.Contains(t, p.WidthCandidates, 35.0)
		assert.Contains(t, p.LengthCandidates, 45.0)
	})

	t.Run("diameter", func(t *testing.T) {
		p := ParseDimensionProfile("Söögilaud RING ⌀90")
		assert.Equal(t, []float64{90}, p.All)
		assert.Equal(t, []float64{90}, p.WidthCandidates)
	})

	t.Run("bare centimeters", func(t *testing.T) {
		p := ParseDimensionProfile("Riiul NURK kõrgus 180cm")
		assert.Equal(t, []float64{180}, p.All)
		assert.Empty(t, p.WidthCandidates)
	})

	t.Run("no dimensions", func(t *testing.T) {
		p := ParseDimensionProfile("Tugitool OSLO hall")
		assert.False(t, p.HasDimensions)
		assert.Empty(t, p.All)
	})
}

func TestExtractSearchKeywords(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected []string
	}{
		{"office chair fans out", "vajan kontoritooli", []string{"tool", "kontoritool"}},
		{"generic cabinet stays generic", "otsin kappi magamistuppa", []string{"kapp"}},
		{"nightstand does not add generic cabinet", "väike öökapp", []string{"öökapp"}},
		{"outdoor", "terrassile laud ja toolid", []string{"tool", "laud", "aiamööbel"}},
		{"no furniture words", "tere, kuidas läheb", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.expected, ExtractSearchKeywords(tt.message))
		})
	}
}
