package grpc

import (
	"time"

	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/service"
	"alugaai-backend/internal/utils"
)

func MapDomainUserToMessage(u *domain.User) *UserMessage {
	if u == nil {
		return nil
	}
	return &UserMessage{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func MapIdentityToMessage(id *domain.Identity) *IdentityMessage {
	if id == nil {
		return nil
	}
	return &IdentityMessage{ID: id.UserID, Name: id.Name, Email: id.Email, Provider: id.Provider}
}

func MapDomainItemToMessage(it *domain.Item) *ItemMessage {
	if it == nil {
		return nil
	}
	return &ItemMessage{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Category:    it.Category,
		PricePerDay: it.PricePerDay.StringFixed(2),
		Price:       it.DisplayPrice(),
		ImageURL:    it.ImageURL,
		OwnerID:     it.OwnerID,
		OwnerName:   it.OwnerName,
		CreatedAt:   formatTime(it.CreatedAt),
		UpdatedAt:   formatTime(it.UpdatedAt),
	}
}

func MapDomainItemsToMessages(items []domain.Item) []*ItemMessage {
	out := make([]*ItemMessage, len(items))
	for i := range items {
		out[i] = MapDomainItemToMessage(&items[i])
	}
	return out
}

func MapDomainRentalToMessage(r *domain.Rental) *RentalMessage {
	if r == nil {
		return nil
	}
	return &RentalMessage{
		ID:              r.ID,
		ItemID:          r.ItemID,
		ItemTitle:       r.ItemTitle,
		ItemPricePerDay: r.ItemPricePerDay.StringFixed(2),
		RequesterID:     r.RequesterID,
		RequesterName:   r.RequesterName,
		OwnerID:         r.OwnerID,
		OwnerName:       r.OwnerName,
		StartDate:       r.StartDate.Format(utils.DateLayout),
		EndDate:         r.EndDate.Format(utils.DateLayout),
		TotalDays:       r.TotalDays,
		TotalPrice:      r.TotalPrice.StringFixed(2),
		Status:          string(r.Status),
		CreatedAt:       formatTime(r.CreatedAt),
		UpdatedAt:       formatTime(r.UpdatedAt),
		ApprovedAt:      formatTimePtr(r.ApprovedAt),
		RejectedAt:      formatTimePtr(r.RejectedAt),
		CancelledAt:     formatTimePtr(r.CancelledAt),
		ActivatedAt:     formatTimePtr(r.ActivatedAt),
		CompletedAt:     formatTimePtr(r.CompletedAt),
	}
}

func MapDomainRentalsToMessages(rentals []domain.Rental) []*RentalMessage {
	out := make([]*RentalMessage, len(rentals))
	for i := range rentals {
		out[i] = MapDomainRentalToMessage(&rentals[i])
	}
	return out
}

func MapTokenPair(t *service.TokenPair) TokenResponse {
	if t == nil {
		return TokenResponse{}
	}
	return TokenResponse{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken, ExpiresIn: t.ExpiresIn}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
