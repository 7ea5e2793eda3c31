package postgres

import (
	"context"
	"database/sql"
	"strings"

	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/repository"
)

const itemColumns = `id, title, description, category, price_per_day, image_url, image_key, owner_id, owner_name, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	query := `INSERT INTO items (` + itemColumns + `, search_key) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	logger.DatabaseCall("items.create", query, "id", it.ID)
	_, err := r.db.ExecContext(ctx, query, it.ID, it.Title, it.Description, it.Category, it.PricePerDay,
		it.ImageURL, it.ImageKey, it.OwnerID, it.OwnerName, it.CreatedAt, it.UpdatedAt, it.SearchKey())
	return mapError(err, "item", it.ID, "insert item")
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	logger.DatabaseCall("items.get", query, "id", id)
	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "item", id, "select item")
	}
	return it, nil
}

func (r *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	query := `UPDATE items SET title=$1, description=$2, category=$3, price_per_day=$4, image_url=$5, image_key=$6, updated_at=$7, search_key=$8 WHERE id=$9`
	logger.DatabaseCall("items.update", query, "id", it.ID)
	res, err := r.db.ExecContext(ctx, query, it.Title, it.Description, it.Category, it.PricePerDay,
		it.ImageURL, it.ImageKey, it.UpdatedAt, it.SearchKey(), it.ID)
	if err != nil {
		return mapError(err, "item", it.ID, "update item")
	}
	return requireAffected(res, "item", it.ID, "update item")
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM items WHERE id = $1`
	logger.DatabaseCall("items.delete", query, "id", id)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapError(err, "item", id, "delete item")
	}
	return requireAffected(res, "item", id, "delete item")
}

func (r *itemRepository) List(ctx context.Context) ([]domain.Item, error) {
	return r.list(ctx, "list items", `SELECT `+itemColumns+` FROM items ORDER BY created_at DESC`)
}

func (r *itemRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	return r.list(ctx, "list items by owner",
		`SELECT `+itemColumns+` FROM items WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

func (r *itemRepository) Search(ctx context.Context, query string) ([]domain.Item, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return r.List(ctx)
	}
	pattern := "%" + likeEscaper.Replace(domain.SearchKey(q)) + "%"
	return r.list(ctx, "search items",
		`SELECT `+itemColumns+` FROM items WHERE search_key LIKE $1 ORDER BY created_at DESC`, pattern)
}

func (r *itemRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Item, error) {
	logger.DatabaseCall(op, query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "item", "", op)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, mapError(err, "item", "", op)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "item", "", op)
	}
	logger.DatabaseResult(op, int64(len(items)), nil)
	return items, nil
}

func scanItem(s scanner) (*domain.Item, error) {
	var it domain.Item
	err := s.Scan(&it.ID, &it.Title, &it.Description, &it.Category, &it.PricePerDay, &it.ImageURL,
		&it.ImageKey, &it.OwnerID, &it.OwnerName, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
