package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
)

func newItem(id, title, category, owner string, at time.Time) *domain.Item {
	return &domain.Item{
		ID:          id,
		Title:       title,
		Description: "descrição do item",
		Category:    category,
		PricePerDay: decimal.NewFromInt(10),
		OwnerID:     owner,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestNewStore_Seed(t *testing.T) {
	ctx := context.Background()

	seeded := NewStore(true)
	items, err := seeded.Items.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "Bicicleta elétrica", items[0].Title)
	assert.Equal(t, "R$ 25,00/dia", items[0].DisplayPrice())
	for _, it := range items {
		assert.Equal(t, SeedOwnerID, it.OwnerID)
	}

	empty := NewStore(false)
	items, err = empty.Items.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, empty.Close())
}

func TestItemRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newItem("a", "Barraca", "Camping", "u1", now)))
	require.NoError(t, repo.Create(ctx, newItem("b", "Violão", "Música", "u2", now)))

	t.Run("Newest first", func(t *testing.T) {
		items, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "b", items[0].ID)
		assert.Equal(t, "a", items[1].ID)
	})

	t.Run("Duplicate id", func(t *testing.T) {
		err := repo.Create(ctx, newItem("a", "Outra", "Outros", "u1", now))
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	})

	t.Run("Search", func(t *testing.T) {
		items, err := repo.Search(ctx, "MÚSICA")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "b", items[0].ID)

		items, err = repo.Search(ctx, "violao")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "b", items[0].ID)
	})

	t.Run("List by owner", func(t *testing.T) {
		items, err := repo.ListByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "a", items[0].ID)
	})

	t.Run("Returned items are copies", func(t *testing.T) {
		it, err := repo.GetByID(ctx, "a")
		require.NoError(t, err)
		it.Title = "changed"

		again, err := repo.GetByID(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "Barraca", again.Title)
	})

	t.Run("Update and delete missing", func(t *testing.T) {
		err := repo.Update(ctx, newItem("zz", "x", "y", "u", now))
		assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
		assert.True(t, apperr.IsCode(repo.Delete(ctx, "zz"), apperr.CodeNotFound))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "a"))
		_, err := repo.GetByID(ctx, "a")
		assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	})
}

func TestRentalRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRentalRepository()

	rentals := []domain.Rental{
		{ID: "r1", ItemID: "i1", RequesterID: "u1", OwnerID: "o1", Status: domain.RentalStatusPending},
		{ID: "r2", ItemID: "i2", RequesterID: "u1", OwnerID: "o2", Status: domain.RentalStatusApproved},
		{ID: "r3", ItemID: "i1", RequesterID: "u2", OwnerID: "o1", Status: domain.RentalStatusApproved},
	}
	for i := range rentals {
		require.NoError(t, repo.Create(ctx, &rentals[i]))
	}

	byRequester, err := repo.ListByRequester(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, ids(byRequester))

	byOwner, err := repo.ListByOwner(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r1"}, ids(byOwner))

	byItem, err := repo.ListByItem(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r1"}, ids(byItem))

	approved, err := repo.ListByStatus(ctx, domain.RentalStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r2"}, ids(approved))

	r1, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	r1.Status = domain.RentalStatusCancelled
	require.NoError(t, repo.Update(ctx, r1, domain.RentalStatusPending))

	stored, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusCancelled, stored.Status)

	stale := *r1
	stale.Status = domain.RentalStatusApproved
	err = repo.Update(ctx, &stale, domain.RentalStatusPending)
	assert.True(t, apperr.IsCode(err, apperr.CodeStateConflict))
	stored, err = repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusCancelled, stored.Status)

	missing := domain.Rental{ID: "missing", Status: domain.RentalStatusApproved}
	assert.True(t, apperr.IsCode(repo.Update(ctx, &missing, domain.RentalStatusPending), apperr.CodeNotFound))

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Name: "Ana", Email: "ana@example.com"}))

	err := repo.Create(ctx, &domain.User{ID: "u2", Name: "Ana 2", Email: "ANA@example.com"})
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))

	u, err := repo.GetByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = repo.GetByID(ctx, "u2")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestItemRepository_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("item-%d", n)
			_ = repo.Create(ctx, newItem(id, "Item", "Outros", "u", time.Now()))
			_, _ = repo.Search(ctx, "item")
		}(i)
	}
	wg.Wait()

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 50)
}

func ids(rentals []domain.Rental) []string {
	out := make([]string, 0, len(rentals))
	for _, r := range rentals {
		out = append(out, r.ID)
	}
	return out
}
