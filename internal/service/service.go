package service

import (
	"context"
	"io"
	"time"

	"alugaai-backend/internal/domain"
)

type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, *TokenPair, error)
	SignIn(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	RefreshToken(ctx context.Context, refresh string) (*TokenPair, error)
	SignOut(ctx context.Context, refresh string) error
	// CurrentUser returns the identity attached to ctx, or nil.
	CurrentUser(ctx context.Context) *domain.Identity
}

type CatalogService interface {
	AddItem(ctx context.Context, owner domain.Identity, in ItemInput) (*domain.Item, error)
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	UpdateItem(ctx context.Context, actor domain.Identity, id string, in ItemUpdate) (*domain.Item, error)
	DeleteItem(ctx context.Context, actor domain.Identity, id string) error
	Search(ctx context.Context, query string) ([]domain.Item, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error)
	ListCategories(ctx context.Context) []string
	AttachImage(ctx context.Context, actor domain.Identity, itemID, filename, contentType string, r io.Reader) (*domain.Item, error)
}

type RentalService interface {
	CreateRental(ctx context.Context, requester domain.Identity, in CreateRentalInput) (*domain.Rental, error)
	// Transition moves a rental along the status table without an actor
	// check. Used by the role wrappers and the scheduler.
	Transition(ctx context.Context, rentalID string, to domain.RentalStatus) (*domain.Rental, error)
	Approve(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error)
	Reject(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error)
	Activate(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error)
	Complete(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error)
	Cancel(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error)
	GetRental(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error)
	ListForRequester(ctx context.Context, userID string) ([]domain.Rental, error)
	ListForOwner(ctx context.Context, userID string) ([]domain.Rental, error)
	ListForItem(ctx context.Context, actor domain.Identity, itemID string) ([]domain.Rental, error)
	// ListInvolving returns every rental where userID is requester or owner, newest first.
	ListInvolving(ctx context.Context, userID string) ([]domain.Rental, error)
	// ListDue returns rentals in status whose boundary date (start for
	// approved, end for active) is at or before asOf.
	ListDue(ctx context.Context, status domain.RentalStatus, asOf time.Time) ([]domain.Rental, error)
}

// TransitionRecorder observes successful rental status changes.
type TransitionRecorder interface {
	RecordRentalTransition(from, to domain.RentalStatus)
}

type noopRecorder struct{}

func (noopRecorder) RecordRentalTransition(domain.RentalStatus, domain.RentalStatus) {}

type SignUpInput struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
}

// ItemInput is a new listing as typed by the owner; Price is free text such as "R$ 25/dia".
type ItemInput struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=10"`
	Category    string `json:"category" validate:"required,category"`
	Price       string `json:"price" validate:"required,price"`
}

// ItemUpdate carries only the fields being changed.
type ItemUpdate struct {
	Title       *string `json:"title" validate:"omitempty,min=3"`
	Description *string `json:"description" validate:"omitempty,min=10"`
	Category    *string `json:"category" validate:"omitempty,category"`
	Price       *string `json:"price" validate:"omitempty,price"`
}

type CreateRentalInput struct {
	ItemID string
	// StartDate defaults to today when zero.
	StartDate time.Time
	TotalDays int
}
