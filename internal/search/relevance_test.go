package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sisustusbot/internal/models"
	"sisustusbot/internal/text"
)

func card(title, handle string, categories ...string) models.ProductCard {
	return models.ProductCard{
		ID:            handle,
		Title:         title,
		Handle:        handle,
		CategoryNames: categories,
	}
}

func TestScoreCardRelevance_TypeGuards(t *testing.T) {
	semantics := DetectQuerySemantics("öökapp")
	tokens := text.QueryTokens("öökapp")

	t.Run("wrong type rejected", func(t *testing.T) {
		verdict := ScoreCardRelevance(&models.ProductCard{
			Title: "Riiul KALLE", Handle: "riiul-kalle", CategoryNames: []string{"RIIULID"},
		}, semantics, tokens)
		assert.False(t, verdict.Relevant)
		assert.Equal(t, -100.0, verdict.Score)
	})

	t.Run("matching type accepted", func(t *testing.T) {
		verdict := ScoreCardRelevance(&models.ProductCard{
			Title: "Öökapp LUNA", Handle: "ookapp-luna", CategoryNames: []string{"KAPID", "Öökapid"},
		}, semantics, tokens)
		assert.True(t, verdict.Relevant)
		assert.Greater(t, verdict.Score, 4.0)
	})

	t.Run("excluded alias without required alias rejected", func(t *testing.T) {
		s := DetectQuerySemantics("tv kapp")
		verdict := ScoreCardRelevance(&models.ProductCard{
			Title: "Vitriinkapp KLAAS", Handle: "vitriinkapp-klaas",
		}, s, text.QueryTokens("tv kapp"))
		assert.False(t, verdict.Relevant)
	})
}

func TestScoreCardRelevance_Dimensions(t *testing.T) {
	semantics := DetectQuerySemantics("öökapp alla 50cm")
	tokens := text.QueryTokens("öökapp alla 50cm")

	t.Run("fitting dimensions accepted with closeness bonus", func(t *testing.T) {
		verdict := ScoreCardRelevance(&models.ProductCard{
			Title: "Öökapp LUNA 45x35x50", Handle: "ookapp-luna",
		}, semantics, tokens)
		assert.True(t, verdict.Relevant)
	})

	t.Run("oversized rejected", func(t *testing.T) {
		verdict := ScoreCardRelevance(&models.ProductCard{
			Title: "Öökapp GRAND 80x45x60", Handle: "ookapp-grand",
		}, semantics, tokens)
		assert.False(t, verdict.Relevant)
		assert.Equal(t, -70.0, verdict.Score)
	})

	t.Run("no parseable dimensions rejected", func(t *testing.T) {
		verdict := ScoreCardRelevance(&models.ProductCard{
			Title: "Öökapp MOON", Handle: "ookapp-moon",
		}, semantics, tokens)
		assert.False(t, verdict.Relevant)
		assert.Equal(t, -90.0, verdict.Score)
	})

	t.Run("half centimeter tolerance", func(t *testing.T) {
		s := DetectQuerySemantics("riiul kuni 40cm")
		verdict := ScoreCardRelevance(&models.ProductCard{
			Title: "Riiul SEIN 40x20", Handle: "riiul-sein",
		}, s, text.QueryTokens("riiul kuni 40cm"))
		assert.True(t, verdict.Relevant)
	})
}

func TestScoreCardRelevance_SmallPreference(t *testing.T) {
	semantics := DetectQuerySemantics("väike öökapp")
	tokens := text.QueryTokens("väike öökapp")

	t.Run("compact nightstand gets bonus", func(t *testing.T) {
		small := ScoreCardRelevance(&models.ProductCard{
			Title: "Öökapp MINI 40x35", Handle: "ookapp-mini",
		}, semantics, tokens)
		assert.True(t, small.Relevant)
	})

	t.Run("large nightstand rejected", func(t *testing.T) {
		big := ScoreCardRelevance(&models.ProductCard{
			Title: "Öökapp LAI 90x45", Handle: "ookapp-lai",
		}, semantics, tokens)
		assert.False(t, big.Relevant)
		assert.Equal(t, -50.0, big.Score)
	})
}

func TestRankCandidates(t *testing.T) {
	pool := []models.ProductCard{
		card("Riiul KALLE", "riiul-kalle", "RIIULID"),
		card("Öökapp LUNA 45x35", "ookapp-luna", "Öökapid"),
		card("Öökapp MOON", "ookapp-moon", "Öökapid"),
		card("Vitriinkapp KLAAS", "vitriinkapp-klaas", "KAPID"),
	}

	ranked := RankCandidates(pool, "öökapp")
	require.Len(t, ranked, 2)
	for _, c := range ranked {
		assert.Contains(t, c.Handle, "ookapp")
	}

	// same inputs produce the same ordering
	again := RankCandidates(pool, "öökapp")
	assert.Equal(t, ranked, again)
}
