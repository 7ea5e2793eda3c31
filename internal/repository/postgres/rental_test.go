package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
)

var rentalRowColumns = []string{"id", "item_id", "item_title", "item_price_per_day", "requester_id", "requester_name", "owner_id", "owner_name",
	"start_date", "end_date", "total_days", "total_price", "status", "created_at", "updated_at",
	"approved_at", "rejected_at", "cancelled_at", "activated_at", "completed_at"}

func TestRentalRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRentalRepository(db)
	ctx := context.Background()

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rental := &domain.Rental{
		ID:              "r-1",
		ItemID:          "i-1",
		ItemTitle:       "Bike",
		ItemPricePerDay: decimal.NewFromInt(25),
		RequesterID:     "u-2",
		RequesterName:   "Bruno",
		OwnerID:         "u-1",
		OwnerName:       "Ana",
		StartDate:       start,
		EndDate:         start.AddDate(0, 0, 4),
		TotalDays:       4,
		TotalPrice:      decimal.NewFromInt(100),
		Status:          domain.RentalStatusPending,
		CreatedAt:       start,
		UpdatedAt:       start,
	}

	mock.ExpectExec("INSERT INTO rentals").
		WithArgs("r-1", "i-1", "Bike", sqlmock.AnyArg(), "u-2", "Bruno", "u-1", "Ana",
			start, start.AddDate(0, 0, 4), 4, sqlmock.AnyArg(), "pending", start, start,
			nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(ctx, rental))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRentalRepository(db)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	approved := start.Add(2 * time.Hour)

	rows := sqlmock.NewRows(rentalRowColumns).
		AddRow("r-1", "i-1", "Bike", "25.00", "u-2", "Bruno", "u-1", "Ana",
			start, start.AddDate(0, 0, 4), 4, "100.00", "approved", start, approved,
			approved, nil, nil, nil, nil)
	mock.ExpectQuery(`SELECT (.+) FROM rentals WHERE id = \$1`).
		WithArgs("r-1").
		WillReturnRows(rows)

	rental, err := repo.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusApproved, rental.Status)
	assert.Equal(t, "100.00", rental.TotalPrice.StringFixed(2))
	require.NotNil(t, rental.ApprovedAt)
	assert.Equal(t, approved, *rental.ApprovedAt)
	assert.Nil(t, rental.ActivatedAt)
}

func TestRentalRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRentalRepository(db)
	ctx := context.Background()
	now := time.Now()

	rental := &domain.Rental{ID: "r-1", Status: domain.RentalStatusApproved, UpdatedAt: now, ApprovedAt: &now}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE rentals SET status(.+) WHERE id=\$8 AND status=\$9`).
			WithArgs("approved", now, now, nil, nil, nil, nil, "r-1", "pending").
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Update(ctx, rental, domain.RentalStatusPending))
	})

	t.Run("Status moved on", func(t *testing.T) {
		mock.ExpectExec("UPDATE rentals SET status").
			WithArgs("approved", now, now, nil, nil, nil, nil, "r-1", "pending").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM rentals WHERE id = \$1`).
			WithArgs("r-1").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("cancelled"))

		err := repo.Update(ctx, rental, domain.RentalStatusPending)
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, apperr.CodeStateConflict))
		assert.Contains(t, err.Error(), "changed concurrently")
	})

	t.Run("Missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE rentals SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM rentals WHERE id = \$1`).
			WithArgs("r-1").
			WillReturnError(sql.ErrNoRows)
		assert.True(t, apperr.IsCode(repo.Update(ctx, rental, domain.RentalStatusPending), apperr.CodeNotFound))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_ListByOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRentalRepository(db)
	ctx := context.Background()
	now := time.Now()

	rows := sqlmock.NewRows(rentalRowColumns).
		AddRow("r-2", "i-1", "Bike", "25.00", "u-3", "Carla", "u-1", "Ana", now, now, 1, "25.00", "pending", now, now, nil, nil, nil, nil, nil).
		AddRow("r-1", "i-1", "Bike", "25.00", "u-2", "Bruno", "u-1", "Ana", now, now, 4, "100.00", "approved", now, now, now, nil, nil, nil, nil)
	mock.ExpectQuery(`SELECT (.+) FROM rentals WHERE owner_id = \$1 ORDER BY created_at DESC`).
		WithArgs("u-1").
		WillReturnRows(rows)

	rentals, err := repo.ListByOwner(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, rentals, 2)
	assert.Equal(t, "r-2", rentals[0].ID)
	assert.Equal(t, domain.RentalStatusApproved, rentals[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_ListByStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRentalRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM rentals WHERE status = \$1`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows(rentalRowColumns))

	rentals, err := repo.ListByStatus(context.Background(), domain.RentalStatusActive)
	require.NoError(t, err)
	assert.Empty(t, rentals)
	assert.NotNil(t, rentals)
}
