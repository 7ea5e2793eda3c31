package firestore

import (
	"errors"
	"testing"
	"time"

	gcfirestore "cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
)

func TestItemDocRoundTrip(t *testing.T) {
	url := "https://example.com/bike.png"
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	item := &domain.Item{
		ID:          "i-1",
		Title:       "Bicicleta elétrica",
		Description: "Bicicleta elétrica em ótimo estado",
		Category:    "Veículos",
		PricePerDay: decimal.RequireFromString("25.5"),
		ImageURL:    &url,
		ImageKey:    "items/i-1/bike.png",
		OwnerID:     "u-1",
		OwnerName:   "Ana",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	doc := toItemDoc(item)
	assert.Equal(t, "25.50", doc.PricePerDay)

	back, err := doc.toDomain()
	require.NoError(t, err)
	assert.True(t, item.PricePerDay.Equal(back.PricePerDay))
	back.PricePerDay = item.PricePerDay
	assert.Equal(t, item, back)
}

func TestRentalDocRoundTrip(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	approved := start.Add(time.Hour)
	rental := &domain.Rental{
		ID:              "r-1",
		ItemID:          "i-1",
		ItemTitle:       "Bike",
		ItemPricePerDay: decimal.RequireFromString("25.00"),
		RequesterID:     "u-2",
		OwnerID:         "u-1",
		StartDate:       start,
		EndDate:         start.AddDate(0, 0, 4),
		TotalDays:       4,
		TotalPrice:      decimal.RequireFromString("100.00"),
		Status:          domain.RentalStatusApproved,
		CreatedAt:       start,
		UpdatedAt:       approved,
		ApprovedAt:      &approved,
	}

	back, err := toRentalDoc(rental).toDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusApproved, back.Status)
	assert.Equal(t, "100.00", back.TotalPrice.StringFixed(2))
	assert.Equal(t, rental.ApprovedAt, back.ApprovedAt)
	assert.Nil(t, back.CancelledAt)

	t.Run("Unknown status", func(t *testing.T) {
		doc := toRentalDoc(rental)
		doc.Status = "lost"
		_, err := doc.toDomain()
		assert.Error(t, err)
	})
}

func TestUserDocFoldsEmail(t *testing.T) {
	doc := toUserDoc(&domain.User{ID: "u-1", Email: " Ana@Example.COM "})
	assert.Equal(t, "ana@example.com", doc.EmailFold)
}

func TestEventTypeFor(t *testing.T) {
	ev, ok := eventTypeFor(gcfirestore.DocumentAdded)
	assert.True(t, ok)
	assert.Equal(t, domain.EventRentalCreated, ev)

	ev, ok = eventTypeFor(gcfirestore.DocumentModified)
	assert.True(t, ok)
	assert.Equal(t, domain.EventRentalUpdated, ev)

	_, ok = eventTypeFor(gcfirestore.DocumentRemoved)
	assert.False(t, ok)
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil, "item", "i-1", "get"))
	assert.True(t, apperr.IsCode(mapError(status.Error(codes.NotFound, "no doc"), "item", "i-1", "get"), apperr.CodeNotFound))
	assert.True(t, apperr.IsCode(mapError(status.Error(codes.AlreadyExists, "dup"), "item", "i-1", "create"), apperr.CodeConflict))
	assert.True(t, apperr.IsCode(mapError(errors.New("deadline"), "item", "i-1", "get"), apperr.CodeBackend))

	forbidden := apperr.Forbidden("nope")
	assert.Same(t, forbidden, apperr.As(mapError(forbidden, "item", "i-1", "get")))
}
