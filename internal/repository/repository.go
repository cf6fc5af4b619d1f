package repository

import (
	"context"
	"errors"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type LinkRepository interface {
	ListLinks(ctx context.Context) ([]domain.Link, error)
	GetLink(ctx context.Context, id string) (*domain.Link, error)
	CreateLink(ctx context.Context, link *domain.Link) error
	UpdateLink(ctx context.Context, link *domain.Link) error
	DeleteLink(ctx context.Context, id string) error
}

// UserFilter narrows user listings. Search is a name prefix.
type UserFilter struct {
	Search string
	Role   string
}

type UserRepository interface {
	ListUsers(ctx context.Context, filter UserFilter) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, user *domain.User, updatePassword bool) error
	DeleteUser(ctx context.Context, id string) error
}

type StoreRepository interface {
	ListStores(ctx context.Context, search string) ([]domain.Store, error)
	GetStore(ctx context.Context, id string) (*domain.Store, error)
	CreateStore(ctx context.Context, store *domain.Store) error
	UpdateStore(ctx context.Context, store *domain.Store) error
	DeleteStore(ctx context.Context, id string) error
}
