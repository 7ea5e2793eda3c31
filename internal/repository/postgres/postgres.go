package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolation = "23505"

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	logger.Info("Database migrations applied")
	return nil
}

func NewStore(db *sql.DB) *repository.Store {
	return &repository.Store{
		Items:   NewItemRepository(db),
		Rentals: NewRentalRepository(db),
		Users:   NewUserRepository(db),
		Close:   db.Close,
	}
}

// mapError translates driver errors into the shared error taxonomy.
func mapError(err error, resource, id, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(resource, id)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperr.Wrap(apperr.CodeConflict, err, resource+" already exists")
	}
	return apperr.Backend(err, op)
}

// requireAffected turns a write that touched no row into NOT_FOUND.
func requireAffected(res sql.Result, resource, id, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Backend(err, op)
	}
	logger.DatabaseResult(op, n, nil)
	if n == 0 {
		return apperr.NotFound(resource, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}
