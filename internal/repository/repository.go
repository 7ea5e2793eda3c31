package repository

import (
	"context"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
)

// Implementations translate missing records into apperr NOT_FOUND errors and
// driver failures into BACKEND_ERROR. List methods return most-recent-first.

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Item, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error)
	// Search matches query against title or category, case-insensitively.
	Search(ctx context.Context, query string) ([]domain.Item, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	// Update is a compare-and-set: it writes only while the stored status
	// still equals from and otherwise fails with STATE_CONFLICT.
	Update(ctx context.Context, rental *domain.Rental, from domain.RentalStatus) error
	ListByRequester(ctx context.Context, requesterID string) ([]domain.Rental, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Rental, error)
	ListByItem(ctx context.Context, itemID string) ([]domain.Rental, error)
	ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error)
}

// StaleRental reports a rental whose stored status moved away from the one a
// transition was computed against.
func StaleRental(id string, from, current domain.RentalStatus) error {
	return apperr.New(apperr.CodeStateConflict, "rental "+id+" was changed concurrently").
		WithDetails(map[string]string{"expected": string(from), "current": string(current)})
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RentalWatcher is implemented by stores that push their own change
// notifications. WatchRentals blocks until ctx is done.
type RentalWatcher interface {
	WatchRentals(ctx context.Context, emit func(domain.Event)) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Items   ItemRepository
	Rentals RentalRepository
	Users   UserRepository
	// Watcher is nil unless the backend produces its own change feed.
	Watcher RentalWatcher
	Close   func() error
}
