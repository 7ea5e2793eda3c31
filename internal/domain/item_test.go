package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestItemMatches(t *testing.T) {
	bike := Item{Title: "Bicicleta elétrica", Category: "Veículos"}
	projector := Item{Title: "Projetor portátil", Category: "Eletrônicos"}

	tests := []struct {
		name  string
		item  Item
		query string
		want  bool
	}{
		{"Empty query matches", bike, "", true},
		{"Whitespace query matches", bike, "   ", true},
		{"Title substring", bike, "bici", true},
		{"Upper case accented title", bike, "ELÉTRICA", true},
		{"Category match", projector, "eletr", true},
		{"Upper case category", projector, "ELETRÔNICOS", true},
		{"Unaccented query matches accented title", bike, "eletrica", true},
		{"Accented query matches plain text", Item{Title: "Violao", Category: "Musica"}, "violão", true},
		{"Unaccented category", projector, "ELETRONICOS", true},
		{"Upper case prefix hits title and category", Item{Title: "Bicicleta elétrica", Category: "Eletrônicos"}, "ELET", true},
		{"Description is not searched", bike, "ótimo", false},
		{"No match", projector, "camping", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.Matches(tt.query))
		})
	}
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, "bicicleta eletrica", SearchKey("Bicicleta Elétrica"))
	assert.Equal(t, "acao", SearchKey("AÇÃO"))
	assert.Equal(t, "musica", SearchKey("Música"))

	item := Item{Title: "Violão", Category: "Música"}
	assert.Equal(t, "violao\nmusica", item.SearchKey())
}

func TestFilterItems_ElectricBike(t *testing.T) {
	items := []Item{
		{ID: "1", Title: "Bicicleta elétrica", Category: "Eletrônicos"},
		{ID: "2", Title: "Barraca", Category: "Camping"},
	}

	got := FilterItems(items, "ELET")
	assert.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got = FilterItems(items, "eletrica")
	assert.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestFilterItemsKeepsOrder(t *testing.T) {
	items := []Item{
		{ID: "3", Title: "Caixa de som JBL", Category: "Eletrônicos"},
		{ID: "2", Title: "Projetor portátil", Category: "Eletrônicos"},
		{ID: "4", Title: "Ferramentas (kit)", Category: "Ferramentas"},
	}

	got := FilterItems(items, "ELET")
	assert.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	assert.Len(t, FilterItems(items, ""), 3)
}

func TestItemApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	item := Item{
		Title:       "Projetor",
		Description: "Projetor Full HD portátil",
		Category:    "Eletrônicos",
		PricePerDay: decimal.NewFromInt(40),
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	title := "Projetor portátil"
	price := decimal.NewFromInt(45)
	later := created.Add(time.Hour)
	item.Apply(ItemPatch{Title: &title, PricePerDay: &price}, later)

	assert.Equal(t, "Projetor portátil", item.Title)
	assert.Equal(t, "Projetor Full HD portátil", item.Description)
	assert.Equal(t, "Eletrônicos", item.Category)
	assert.True(t, price.Equal(item.PricePerDay))
	assert.Equal(t, created, item.CreatedAt)
	assert.Equal(t, later, item.UpdatedAt)
	assert.Equal(t, "R$ 45,00/dia", item.DisplayPrice())
}
