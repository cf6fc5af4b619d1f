package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

// userRow carries the text[] store list that domain.User keeps as a slice.
type userRow struct {
	domain.User
	StoreList pq.StringArray `db:"stores"`
}

func (r userRow) toDomain() domain.User {
	u := r.User
	u.Stores = []string(r.StoreList)
	if u.Stores == nil {
		u.Stores = []string{}
	}
	return u
}

const userColumns = `id, email, name, role, stores, password_hash, created_at, updated_at`

func (r *userRepository) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, escapeLike(s)+"%")
		where = append(where, "name ILIKE $1")
	}
	if filter.Role != "" {
		args = append(args, domain.NormalizeRole(filter.Role))
		where = append(where, "role = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name, email`

	var rows []userRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, mapError("list users", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

func (r *userRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "get user", `id = $1`, id)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "get user by email", `LOWER(email) = LOWER($1)`, strings.TrimSpace(email))
}

func (r *userRepository) getBy(ctx context.Context, op, cond string, arg any) (*domain.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.db, &row, `SELECT `+userColumns+` FROM users WHERE `+cond, arg); err != nil {
		return nil, mapError(op, err)
	}
	u := row.toDomain()
	return &u, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, stores, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, user.Email, user.Name, user.Role, pq.Array(user.Stores), user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return mapError("create user", err)
}

// UpdateUser writes the profile fields, and the password hash only when
// updatePassword is set.
func (r *userRepository) UpdateUser(ctx context.Context, user *domain.User, updatePassword bool) error {
	user.UpdatedAt = time.Now().UTC()
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE users SET email = $2, name = $3, role = $4, stores = $5, updated_at = $6
			WHERE id = $1
		`, user.ID, user.Email, user.Name, user.Role, pq.Array(user.Stores), user.UpdatedAt)
		if err != nil {
			return mapError("update user", err)
		}
		if err := expectAffected("update user", res); err != nil {
			return err
		}
		if !updatePassword {
			return nil
		}
		_, err = tx.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, user.ID, user.PasswordHash)
		return mapError("update user password", err)
	})
}

func (r *userRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError("delete user", err)
	}
	return expectAffected("delete user", res)
}
