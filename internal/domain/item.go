package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"alugaai-backend/internal/utils"
)

// Categories offered by the listing form.
var ItemCategories = []string{
	"Eletrônicos",
	"Ferramentas",
	"Esportes",
	"Música",
	"Veículos",
	"Camping",
	"Outros",
}

type Item struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	ImageURL    *string         `json:"image_url,omitempty"`
	ImageKey    string          `json:"-"` // blob store key backing ImageURL
	OwnerID     string          `json:"owner_id"`
	OwnerName   string          `json:"owner_name"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DisplayPrice is the listing price as shown to users, e.g. "R$ 25,00/dia".
func (i Item) DisplayPrice() string {
	return utils.FormatPrice(i.PricePerDay)
}

// Matches reports whether query is a substring of the title or the category,
// ignoring case and accents. The empty query matches every item.
func (i Item) Matches(query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return true
	}
	needle := SearchKey(q)
	return strings.Contains(SearchKey(i.Title), needle) ||
		strings.Contains(SearchKey(i.Category), needle)
}

// SearchKey is the indexed form of the item: title and category keys on
// separate lines.
func (i Item) SearchKey() string {
	return SearchKey(i.Title) + "\n" + SearchKey(i.Category)
}

// SearchKey folds case and strips combining marks, so "Elétrica" and
// "ELETRICA" share a key.
func SearchKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// ItemPatch holds the fields of a partial update; nil fields are left untouched.
type ItemPatch struct {
	Title       *string
	Description *string
	Category    *string
	PricePerDay *decimal.Decimal
}

// Apply shallow-merges p into the item.
func (i *Item) Apply(p ItemPatch, at time.Time) {
	if p.Title != nil {
		i.Title = *p.Title
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Category != nil {
		i.Category = *p.Category
	}
	if p.PricePerDay != nil {
		i.PricePerDay = *p.PricePerDay
	}
	i.UpdatedAt = at
}

// FilterItems keeps the items matching query, preserving order.
func FilterItems(items []Item, query string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Matches(query) {
			out = append(out, it)
		}
	}
	return out
}
