package firestore

import (
	"time"

	"github.com/shopspring/decimal"

	"alugaai-backend/internal/domain"
)

// Money is stored as a decimal string so documents never carry float rounding.

type itemDoc struct {
	ID          string    `firestore:"id"`
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Category    string    `firestore:"category"`
	PricePerDay string    `firestore:"price_per_day"`
	ImageURL    *string   `firestore:"image_url"`
	ImageKey    string    `firestore:"image_key"`
	OwnerID     string    `firestore:"owner_id"`
	OwnerName   string    `firestore:"owner_name"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func toItemDoc(it *domain.Item) itemDoc {
	return itemDoc{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Category:    it.Category,
		PricePerDay: it.PricePerDay.StringFixed(2),
		ImageURL:    it.ImageURL,
		ImageKey:    it.ImageKey,
		OwnerID:     it.OwnerID,
		OwnerName:   it.OwnerName,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

func (d itemDoc) toDomain() (*domain.Item, error) {
	price, err := decimal.NewFromString(d.PricePerDay)
	if err != nil {
		return nil, err
	}
	return &domain.Item{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		PricePerDay: price,
		ImageURL:    d.ImageURL,
		ImageKey:    d.ImageKey,
		OwnerID:     d.OwnerID,
		OwnerName:   d.OwnerName,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

type rentalDoc struct {
	ID              string     `firestore:"id"`
	ItemID          string     `firestore:"item_id"`
	ItemTitle       string     `firestore:"item_title"`
	ItemPricePerDay string     `firestore:"item_price_per_day"`
	RequesterID     string     `firestore:"requester_id"`
	RequesterName   string     `firestore:"requester_name"`
	OwnerID         string     `firestore:"owner_id"`
	OwnerName       string     `firestore:"owner_name"`
	StartDate       time.Time  `firestore:"start_date"`
	EndDate         time.Time  `firestore:"end_date"`
	TotalDays       int        `firestore:"total_days"`
	TotalPrice      string     `firestore:"total_price"`
	Status          string     `firestore:"status"`
	CreatedAt       time.Time  `firestore:"created_at"`
	UpdatedAt       time.Time  `firestore:"updated_at"`
	ApprovedAt      *time.Time `firestore:"approved_at"`
	RejectedAt      *time.Time `firestore:"rejected_at"`
	CancelledAt     *time.Time `firestore:"cancelled_at"`
	ActivatedAt     *time.Time `firestore:"activated_at"`
	CompletedAt     *time.Time `firestore:"completed_at"`
}

func toRentalDoc(r *domain.Rental) rentalDoc {
	return rentalDoc{
		ID:              r.ID,
		ItemID:          r.ItemID,
		ItemTitle:       r.ItemTitle,
		ItemPricePerDay: r.ItemPricePerDay.StringFixed(2),
		RequesterID:     r.RequesterID,
		RequesterName:   r.RequesterName,
		OwnerID:         r.OwnerID,
		OwnerName:       r.OwnerName,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		TotalDays:       r.TotalDays,
		TotalPrice:      r.TotalPrice.StringFixed(2),
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		ApprovedAt:      r.ApprovedAt,
		RejectedAt:      r.RejectedAt,
		CancelledAt:     r.CancelledAt,
		ActivatedAt:     r.ActivatedAt,
		CompletedAt:     r.CompletedAt,
	}
}

func (d rentalDoc) toDomain() (*domain.Rental, error) {
	perDay, err := decimal.NewFromString(d.ItemPricePerDay)
	if err != nil {
		return nil, err
	}
	total, err := decimal.NewFromString(d.TotalPrice)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseRentalStatus(d.Status)
	if err != nil {
		return nil, err
	}
	return &domain.Rental{
		ID:              d.ID,
		ItemID:          d.ItemID,
		ItemTitle:       d.ItemTitle,
		ItemPricePerDay: perDay,
		RequesterID:     d.RequesterID,
		RequesterName:   d.RequesterName,
		OwnerID:         d.OwnerID,
		OwnerName:       d.OwnerName,
		StartDate:       d.StartDate,
		EndDate:         d.EndDate,
		TotalDays:       d.TotalDays,
		TotalPrice:      total,
		Status:          status,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		ApprovedAt:      d.ApprovedAt,
		RejectedAt:      d.RejectedAt,
		CancelledAt:     d.CancelledAt,
		ActivatedAt:     d.ActivatedAt,
		CompletedAt:     d.CompletedAt,
	}, nil
}

type userDoc struct {
	ID           string    `firestore:"id"`
	Name         string    `firestore:"name"`
	Email        string    `firestore:"email"`
	EmailFold    string    `firestore:"email_fold"`
	PasswordHash string    `firestore:"password_hash"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func toUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		EmailFold:    foldKey(u.Email),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}
