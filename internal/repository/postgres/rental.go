package postgres

import (
	"context"
	"database/sql"

	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/repository"
)

const rentalColumns = `id, item_id, item_title, item_price_per_day, requester_id, requester_name, owner_id, owner_name, ` +
	`start_date, end_date, total_days, total_price, status, created_at, updated_at, ` +
	`approved_at, rejected_at, cancelled_at, activated_at, completed_at`

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (` + rentalColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	logger.DatabaseCall("rentals.create", query, "id", rt.ID)
	_, err := r.db.ExecContext(ctx, query,
		rt.ID, rt.ItemID, rt.ItemTitle, rt.ItemPricePerDay, rt.RequesterID, rt.RequesterName, rt.OwnerID, rt.OwnerName,
		rt.StartDate, rt.EndDate, rt.TotalDays, rt.TotalPrice, rt.Status, rt.CreatedAt, rt.UpdatedAt,
		rt.ApprovedAt, rt.RejectedAt, rt.CancelledAt, rt.ActivatedAt, rt.CompletedAt)
	return mapError(err, "rental", rt.ID, "insert rental")
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	logger.DatabaseCall("rentals.get", query, "id", id)
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "rental", id, "select rental")
	}
	return rt, nil
}

// Update writes the mutable columns only; snapshot fields never change. The
// status guard makes concurrent transitions of one rental serialize: the
// loser touches no row and gets STATE_CONFLICT.
func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental, from domain.RentalStatus) error {
	query := `UPDATE rentals SET status=$1, updated_at=$2, approved_at=$3, rejected_at=$4, cancelled_at=$5, activated_at=$6, completed_at=$7 WHERE id=$8 AND status=$9`
	logger.DatabaseCall("rentals.update", query, "id", rt.ID, "from", from, "to", rt.Status)
	res, err := r.db.ExecContext(ctx, query, rt.Status, rt.UpdatedAt,
		rt.ApprovedAt, rt.RejectedAt, rt.CancelledAt, rt.ActivatedAt, rt.CompletedAt, rt.ID, from)
	if err != nil {
		return mapError(err, "rental", rt.ID, "update rental")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err, "rental", rt.ID, "update rental")
	}
	logger.DatabaseResult("update rental", n, nil)
	if n > 0 {
		return nil
	}

	var current domain.RentalStatus
	statusQuery := `SELECT status FROM rentals WHERE id = $1`
	logger.DatabaseCall("rentals.status", statusQuery, "id", rt.ID)
	if err := r.db.QueryRowContext(ctx, statusQuery, rt.ID).Scan(&current); err != nil {
		return mapError(err, "rental", rt.ID, "select rental status")
	}
	return repository.StaleRental(rt.ID, from, current)
}

func (r *rentalRepository) ListByRequester(ctx context.Context, requesterID string) ([]domain.Rental, error) {
	return r.list(ctx, "list rentals by requester",
		`SELECT `+rentalColumns+` FROM rentals WHERE requester_id = $1 ORDER BY created_at DESC`, requesterID)
}

func (r *rentalRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Rental, error) {
	return r.list(ctx, "list rentals by owner",
		`SELECT `+rentalColumns+` FROM rentals WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

func (r *rentalRepository) ListByItem(ctx context.Context, itemID string) ([]domain.Rental, error) {
	return r.list(ctx, "list rentals by item",
		`SELECT `+rentalColumns+` FROM rentals WHERE item_id = $1 ORDER BY created_at DESC`, itemID)
}

func (r *rentalRepository) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	return r.list(ctx, "list rentals by status",
		`SELECT `+rentalColumns+` FROM rentals WHERE status = $1 ORDER BY created_at DESC`, status)
}

func (r *rentalRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Rental, error) {
	logger.DatabaseCall(op, query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "rental", "", op)
	}
	defer rows.Close()

	rentals := make([]domain.Rental, 0)
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, mapError(err, "rental", "", op)
		}
		rentals = append(rentals, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "rental", "", op)
	}
	logger.DatabaseResult(op, int64(len(rentals)), nil)
	return rentals, nil
}

func scanRental(s scanner) (*domain.Rental, error) {
	var rt domain.Rental
	err := s.Scan(&rt.ID, &rt.ItemID, &rt.ItemTitle, &rt.ItemPricePerDay, &rt.RequesterID, &rt.RequesterName,
		&rt.OwnerID, &rt.OwnerName, &rt.StartDate, &rt.EndDate, &rt.TotalDays, &rt.TotalPrice, &rt.Status,
		&rt.CreatedAt, &rt.UpdatedAt, &rt.ApprovedAt, &rt.RejectedAt, &rt.CancelledAt, &rt.ActivatedAt, &rt.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}
