package grpc

import (
	"encoding/json"
	"strings"

	"alugaai-backend/internal/utils"
)

// Auth

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User         *UserMessage `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// RefreshTokenRequest is empty: the refresh token travels in the
// authorization header.
type RefreshTokenRequest struct{}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type SignOutRequest struct{}

type SignOutResponse struct {
	Success bool `json:"success"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *IdentityMessage `json:"user"`
}

// Catalog

type AddItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
}

type GetItemRequest struct {
	ID string `json:"id"`
}

type UpdateItemRequest struct {
	ID          string  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Price       *string `json:"price,omitempty"`
}

type DeleteItemRequest struct {
	ID string `json:"id"`
}

type DeleteItemResponse struct {
	Success bool `json:"success"`
}

type ItemResponse struct {
	Item *ItemMessage `json:"item"`
}

type SearchItemsRequest struct {
	Query string `json:"query"`
}

type ListMyItemsRequest struct{}

type ListItemsResponse struct {
	Items []*ItemMessage `json:"items"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}

// Rentals

type CreateRentalRequest struct {
	ItemID string `json:"item_id"`
	// StartDate is yyyy-mm-dd; empty means today.
	StartDate string `json:"start_date,omitempty"`
	TotalDays Days   `json:"total_days"`
}

// Days is a rental length as typed in the app. It accepts a JSON number or
// string; missing, non-numeric or non-positive values become one day.
type Days int

func (d *Days) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*d = 1
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = Days(utils.ParseDays(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*d = 1
		return nil
	}
	*d = Days(utils.NormalizeDays(int(f)))
	return nil
}

type RentalIDRequest struct {
	ID string `json:"id"`
}

type RentalResponse struct {
	Rental *RentalMessage `json:"rental"`
}

type ListMyRentalsRequest struct{}

type ListIncomingRequestsRequest struct{}

type ListItemRentalsRequest struct {
	ItemID string `json:"item_id"`
}

type ListRentalsResponse struct {
	Rentals []*RentalMessage `json:"rentals"`
}

type WatchRentalsRequest struct{}

// WatchRentalsResponse is one message of the rental feed. The first message
// has type "snapshot" and carries every rental of the caller in Rentals.
type WatchRentalsResponse struct {
	Type       string           `json:"type"`
	Rentals    []*RentalMessage `json:"rentals,omitempty"`
	Rental     *RentalMessage   `json:"rental,omitempty"`
	OccurredAt string           `json:"occurred_at"`
}

// Shared views

type UserMessage struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type IdentityMessage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

type ItemMessage struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	PricePerDay string  `json:"price_per_day"`
	Price       string  `json:"price"`
	ImageURL    *string `json:"image_url,omitempty"`
	OwnerID     string  `json:"owner_id"`
	OwnerName   string  `json:"owner_name"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type RentalMessage struct {
	ID              string  `json:"id"`
	ItemID          string  `json:"item_id"`
	ItemTitle       string  `json:"item_title"`
	ItemPricePerDay string  `json:"item_price_per_day"`
	RequesterID     string  `json:"requester_id"`
	RequesterName   string  `json:"requester_name"`
	OwnerID         string  `json:"owner_id"`
	OwnerName       string  `json:"owner_name"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	TotalPrice      string  `json:"total_price"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectedAt      *string `json:"rejected_at,omitempty"`
	CancelledAt     *string `json:"cancelled_at,omitempty"`
	ActivatedAt     *string `json:"activated_at,omitempty"`
	CompletedAt     *string `json:"completed_at,omitempty"`
}
