package postgres

import (
	"context"
	"time"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type linkRepository struct {
	db *DB
}

func NewLinkRepository(db *DB) *linkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) ListLinks(ctx context.Context) ([]domain.Link, error) {
	query := `
		SELECT id, name, url, created_at, updated_at
		FROM links
		ORDER BY created_at, name
	`
	links := []domain.Link{}
	if err := sqlx.SelectContext(ctx, r.db, &links, query); err != nil {
		return nil, mapError("list links", err)
	}
	return links, nil
}

func (r *linkRepository) GetLink(ctx context.Context, id string) (*domain.Link, error) {
	var link domain.Link
	err := sqlx.GetContext(ctx, r.db, &link,
		`SELECT id, name, url, created_at, updated_at FROM links WHERE id = $1`, id)
	if err != nil {
		return nil, mapError("get link", err)
	}
	return &link, nil
}

func (r *linkRepository) CreateLink(ctx context.Context, link *domain.Link) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	link.CreatedAt, link.UpdatedAt = now, now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO links (id, name, url, created_at, updated_at)
		VALUES (:id, :name, :url, :created_at, :updated_at)
	`, link)
	return mapError("create link", err)
}

func (r *linkRepository) UpdateLink(ctx context.Context, link *domain.Link) error {
	link.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE links SET name = :name, url = :url, updated_at = :updated_at
		WHERE id = :id
	`, link)
	if err != nil {
		return mapError("update link", err)
	}
	return expectAffected("update link", res)
}

func (r *linkRepository) DeleteLink(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return mapError("delete link", err)
	}
	return expectAffected("delete link", res)
}
