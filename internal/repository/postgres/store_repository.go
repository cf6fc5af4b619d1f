package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type storeRepository struct {
	db *DB
}

func NewStoreRepository(db *DB) *storeRepository {
	return &storeRepository{db: db}
}

const storeColumns = `id, name, store_code, created_at, updated_at`

func (r *storeRepository) ListStores(ctx context.Context, search string) ([]domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores`
	var args []any
	if search = strings.TrimSpace(search); search != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, escapeLike(search)+"%")
	}
	query += ` ORDER BY name`

	stores := []domain.Store{}
	if err := sqlx.SelectContext(ctx, r.db, &stores, query, args...); err != nil {
		return nil, mapError("list stores", err)
	}
	return stores, nil
}

func (r *storeRepository) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	var store domain.Store
	if err := sqlx.GetContext(ctx, r.db, &store, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id); err != nil {
		return nil, mapError("get store", err)
	}
	return &store, nil
}

func (r *storeRepository) CreateStore(ctx context.Context, store *domain.Store) error {
	if store.ID == "" {
		store.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	store.CreatedAt, store.UpdatedAt = now, now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO stores (id, name, store_code, created_at, updated_at)
		VALUES (:id, :name, :store_code, :created_at, :updated_at)
	`, store)
	return mapError("create store", err)
}

func (r *storeRepository) UpdateStore(ctx context.Context, store *domain.Store) error {
	store.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE stores SET name = :name, store_code = :store_code, updated_at = :updated_at
		WHERE id = :id
	`, store)
	if err != nil {
		return mapError("update store", err)
	}
	return expectAffected("update store", res)
}

func (r *storeRepository) DeleteStore(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return mapError("delete store", err)
	}
	return expectAffected("delete store", res)
}

// escapeLike quotes the ILIKE wildcards so search text matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
