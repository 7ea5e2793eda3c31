// Package memory is the in-process store used for local development and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/repository"
)

const (
	SeedOwnerID   = "seed"
	SeedOwnerName = "aluga.ai"
)

// NewStore returns a store backed by process memory. With seed set the
// catalog starts with the sample listings.
func NewStore(seed bool) *repository.Store {
	items := NewItemRepository()
	if seed {
		items.seed(time.Now().UTC())
	}
	return &repository.Store{
		Items:   items,
		Rentals: NewRentalRepository(),
		Users:   NewUserRepository(),
		Close:   func() error { return nil },
	}
}

type ItemRepository struct {
	mu    sync.RWMutex
	items []domain.Item // newest first
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{}
}

func (r *ItemRepository) seed(now time.Time) {
	samples := []struct {
		title, desc, category string
		price                 int64
	}{
		{"Ferramentas (kit)", "Kit completo de ferramentas", "Ferramentas", 30},
		{"Caixa de som JBL", "Caixa de som bluetooth", "Eletrônicos", 15},
		{"Projetor portátil", "Projetor Full HD portátil", "Eletrônicos", 40},
		{"Bicicleta elétrica", "Bicicleta elétrica em ótimo estado", "Veículos", 25},
	}
	// inserted oldest first so the bike ends up on top
	for i, s := range samples {
		at := now.Add(time.Duration(i-len(samples)) * time.Minute)
		r.items = append([]domain.Item{{
			ID:          uuid.NewString(),
			Title:       s.title,
			Description: s.desc,
			Category:    s.category,
			PricePerDay: decimal.NewFromInt(s.price),
			OwnerID:     SeedOwnerID,
			OwnerName:   SeedOwnerName,
			CreatedAt:   at,
			UpdatedAt:   at,
		}}, r.items...)
	}
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == item.ID {
			return apperr.New(apperr.CodeConflict, "item "+item.ID+" already exists")
		}
	}
	r.items = append([]domain.Item{*item}, r.items...)
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		it := r.items[i]
		return &it, nil
	}
	return nil, apperr.NotFound("item", id)
}

func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(item.ID)
	if i < 0 {
		return apperr.NotFound("item", item.ID)
	}
	r.items[i] = *item
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return apperr.NotFound("item", id)
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *ItemRepository) List(ctx context.Context) ([]domain.Item, error) {
	return r.filter(func(domain.Item) bool { return true }), nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	return r.filter(func(it domain.Item) bool { return it.OwnerID == ownerID }), nil
}

func (r *ItemRepository) Search(ctx context.Context, query string) ([]domain.Item, error) {
	return r.filter(func(it domain.Item) bool { return it.Matches(query) }), nil
}

func (r *ItemRepository) index(id string) int {
	for i, it := range r.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (r *ItemRepository) filter(keep func(domain.Item) bool) []domain.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Item, 0, len(r.items))
	for _, it := range r.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

type RentalRepository struct {
	mu      sync.RWMutex
	rentals []domain.Rental // newest first
}

func NewRentalRepository() *RentalRepository {
	return &RentalRepository{}
}

func (r *RentalRepository) Create(ctx context.Context, rental *domain.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rt := range r.rentals {
		if rt.ID == rental.ID {
			return apperr.New(apperr.CodeConflict, "rental "+rental.ID+" already exists")
		}
	}
	r.rentals = append([]domain.Rental{*rental}, r.rentals...)
	return nil
}

func (r *RentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rt := range r.rentals {
		if rt.ID == id {
			return &rt, nil
		}
	}
	return nil, apperr.NotFound("rental", id)
}

func (r *RentalRepository) Update(ctx context.Context, rental *domain.Rental, from domain.RentalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rentals {
		if r.rentals[i].ID == rental.ID {
			if r.rentals[i].Status != from {
				return repository.StaleRental(rental.ID, from, r.rentals[i].Status)
			}
			r.rentals[i] = *rental
			return nil
		}
	}
	return apperr.NotFound("rental", rental.ID)
}

func (r *RentalRepository) ListByRequester(ctx context.Context, requesterID string) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool { return rt.RequesterID == requesterID }), nil
}

func (r *RentalRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool { return rt.OwnerID == ownerID }), nil
}

func (r *RentalRepository) ListByItem(ctx context.Context, itemID string) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool { return rt.ItemID == itemID }), nil
}

func (r *RentalRepository) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool { return rt.Status == status }), nil
}

func (r *RentalRepository) filter(keep func(domain.Rental) bool) []domain.Rental {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Rental, 0)
	for _, rt := range r.rentals {
		if keep(rt) {
			out = append(out, rt)
		}
	}
	return out
}

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperr.New(apperr.CodeConflict, "email already registered")
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user", email)
}
