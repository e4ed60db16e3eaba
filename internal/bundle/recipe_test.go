package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sisustusbot/internal/models"
)

func recipeCard(id, title string, price string, slugs ...string) models.ProductCard {
	return models.ProductCard{
		ID:            id,
		Title:         title,
		Handle:        id,
		Price:         price,
		CategoryNames: slugs,
		CategorySlugs: slugs,
	}
}

func TestResolveBudget(t *testing.T) {
	tests := []struct {
		name    string
		answers models.BundleAnswers
		want    float64
	}{
		{"low bucket", models.BundleAnswers{BudgetRange: "2000-4000"}, 4000},
		{"mid bucket", models.BundleAnswers{BudgetRange: "4000-7000"}, 7000},
		{"open bucket", models.BundleAnswers{BudgetRange: "7000+"}, 20000},
		{"custom", models.BundleAnswers{BudgetRange: "custom", BudgetCustom: 2500}, 2500},
		{"custom without value", models.BundleAnswers{BudgetRange: "custom"}, 4000},
		{"unknown bucket", models.BundleAnswers{BudgetRange: "paar tuhat"}, 4000},
		{"empty", models.BundleAnswers{}, 4000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveBudget(tc.answers))
		})
	}
}

func TestResolveElementSpec(t *testing.T) {
	spec, ok := ResolveElementSpec("Magamistuba", "Öökapp")
	require.True(t, ok)
	assert.Equal(t, "ookapp", spec.Key)

	spec, ok = ResolveElementSpec("Elutuba", "TV-kapp")
	require.True(t, ok)
	assert.Equal(t, "tvkapp", spec.Key)

	// Bare element keys resolve without a room menu.
	spec, ok = ResolveElementSpec("", "kummut")
	require.True(t, ok)
	assert.Equal(t, "kummut", spec.Key)

	_, ok = ResolveElementSpec("Magamistuba", "basseinirobot")
	assert.False(t, ok)
}

func TestInferElementKey(t *testing.T) {
	bySlug := recipeCard("p1", "LUNA", "89.00€", "ookapid")
	assert.Equal(t, "ookapp", InferElementKey(&bySlug))

	byTitle := recipeCard("p2", "Öökapp MOON", "79.00€")
	assert.Equal(t, "ookapp", InferElementKey(&byTitle))

	// Compound table names must not fall through to the plain sofa key.
	coffeeTable := recipeCard("p3", "Diivanilaud OSLO", "149.00€", "diivanilauad")
	assert.Equal(t, "diivanilaud", InferElementKey(&coffeeTable))

	unknown := recipeCard("p4", "Kinkekaart 50", "50.00€")
	assert.Equal(t, "", InferElementKey(&unknown))
}

func TestScoreProduct(t *testing.T) {
	t.Run("style and budget add up", func(t *testing.T) {
		answers := models.BundleAnswers{Style: "Skandinaavia", BudgetRange: "2000-4000"}
		card := recipeCard("p1", "Voodi NORDIC 160x200", "399.00€", "voodid")
		assert.InDelta(t, 4, ScoreProduct(&card, answers), 0.001)
	})

	t.Run("preferred fabric with pets and children nets negative", func(t *testing.T) {
		answers := models.BundleAnswers{
			MaterialPreference: "Kangas",
			HasPets:            true,
			HasChildren:        true,
			BudgetRange:        "2000-4000",
		}
		card := recipeCard("p2", "Diivan VELVET kangas", "899.00€", "diivanid")
		assert.Negative(t, ScoreProduct(&card, answers))
	})

	t.Run("easy clean bonus with pets", func(t *testing.T) {
		answers := models.BundleAnswers{HasPets: true, BudgetRange: "2000-4000"}
		card := recipeCard("p3", "Diivan MILO mikrofiiber", "699.00€", "diivanid")
		assert.InDelta(t, 3, ScoreProduct(&card, answers), 0.001)
	})

	t.Run("far over budget penalized", func(t *testing.T) {
		answers := models.BundleAnswers{BudgetRange: "2000-4000"}
		card := recipeCard("p4", "Nahkdiivan GRANDE", "5500.00€", "diivanid")
		assert.InDelta(t, -2, ScoreProduct(&card, answers), 0.001)
	})
}

func TestFilterRoomCandidates(t *testing.T) {
	answers := models.BundleAnswers{
		Room:             "Magamistuba",
		SelectedElements: []string{"Voodi", "Öökapp"},
	}
	cards := []models.ProductCard{
		recipeCard("bed", "Voodi NORDIC", "399.00€", "voodid"),
		recipeCard("nightstand", "Öökapp LUNA", "89.00€", "ookapid"),
		recipeCard("dresser", "Kummut VIIK", "249.00€", "kummutid"),
		recipeCard("mirror", "Peegel OVAL", "59.00€", "peeglid"),
		recipeCard("rug", "Vaip SOFT", "79.00€", "vaibad"),
		recipeCard("lamp", "Valgusti GLOW", "49.00€", "valgustid"),
		recipeCard("dining", "Söögilaud TAMM", "599.00€", "soogilauad"),
	}

	pool := FilterRoomCandidates(cards, answers)
	require.Len(t, pool, 6)
	for _, card := range pool {
		assert.NotEqual(t, "dining", card.ID, "excluded room slug must not survive filtering")
	}

	// Selected-element matches lead the pool.
	assert.Equal(t, "bed", pool[0].ID)
	assert.Equal(t, "nightstand", pool[1].ID)
}

func TestFilterRoomCandidates_FallsBackOnTinyPool(t *testing.T) {
	answers := models.BundleAnswers{Room: "Köök"}
	cards := []models.ProductCard{
		recipeCard("a", "Voodi NORDIC", "399.00€", "voodid"),
		recipeCard("b", "Söögilaud TAMM", "599.00€", "soogilauad"),
	}
	pool := FilterRoomCandidates(cards, answers)
	assert.Len(t, pool, 2, "a starved filter hands back the raw catalog slice")
}

func TestElementFocusedPool(t *testing.T) {
	spec, ok := ResolveElementSpec("Magamistuba", "Öökapp")
	require.True(t, ok)

	cards := []models.ProductCard{
		recipeCard("n1", "Öökapp LUNA", "89.00€", "ookapid"),
		recipeCard("bed", "Voodi NORDIC", "399.00€", "voodid"),
		recipeCard("n2", "Öökapp MOON", "79.00€", "ookapid"),
	}
	pool := ElementFocusedPool(cards, spec)
	require.Len(t, pool, 2)
	assert.Equal(t, "n1", pool[0].ID)
	assert.Equal(t, "n2", pool[1].ID)
}

func TestRankAlternatives_RoleCompatibility(t *testing.T) {
	answers := models.BundleAnswers{Room: "Magamistuba", BudgetRange: "2000-4000"}

	nightstand := models.BundleItem{
		ProductCard:  recipeCard("n1", "Öökapp LUNA", "89.00€", "ookapid"),
		RoleInBundle: models.RoleSecondary,
		ElementKey:   "ookapp",
	}
	bundle := &models.Bundle{Items: []models.BundleItem{nightstand}}

	pool := []models.ProductCard{
		recipeCard("n1", "Öökapp LUNA", "89.00€", "ookapid"),
		recipeCard("n2", "Öökapp MOON", "79.00€", "ookapid"),
		recipeCard("rug", "Vaip SOFT", "79.00€", "vaibad"),
		recipeCard("dresser", "Kummut VIIK", "249.00€", "kummutid"),
	}

	alts := RankAlternatives(&nightstand, bundle, pool, answers)
	require.NotEmpty(t, alts)
	assert.Equal(t, "n2", alts[0].ID, "same-element candidate ranks first")
	for _, alt := range alts {
		assert.NotEqual(t, "n1", alt.ID, "placed product never offered as its own alternative")
		assert.NotEqual(t, "rug", alt.ID, "accessory candidate rejected for a furniture slot")
	}
}

func TestRankAlternatives_AccessorySlot(t *testing.T) {
	answers := models.BundleAnswers{Room: "Magamistuba", BudgetRange: "2000-4000"}

	mirror := models.BundleItem{
		ProductCard:  recipeCard("m1", "Peegel OVAL", "59.00€", "peeglid"),
		RoleInBundle: models.RoleAccessory,
		ElementKey:   "peegel",
	}
	bundle := &models.Bundle{Items: []models.BundleItem{mirror}}

	pool := []models.ProductCard{
		recipeCard("m2", "Peegel ROUND", "69.00€", "peeglid"),
		recipeCard("rug", "Vaip SOFT", "79.00€", "vaibad"),
		recipeCard("bed", "Voodi NORDIC", "399.00€", "voodid"),
	}

	alts := RankAlternatives(&mirror, bundle, pool, answers)
	require.NotEmpty(t, alts)
	assert.Equal(t, "m2", alts[0].ID)
	for _, alt := range alts {
		assert.NotEqual(t, "bed", alt.ID, "non-accessory candidate rejected for an accessory slot")
	}
}
