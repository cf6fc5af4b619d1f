package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("op", nil))
	assert.ErrorIs(t, mapError("get link", sql.ErrNoRows), repository.ErrNotFound)

	dup := &pq.Error{Code: "23505", Constraint: "users_email_lower_key"}
	err := mapError("create user", dup)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Contains(t, err.Error(), "users_email_lower_key")

	other := errors.New("connection reset")
	assert.ErrorIs(t, mapError("list", other), other)
}

type affected int64

func (a affected) LastInsertId() (int64, error) { return 0, nil }
func (a affected) RowsAffected() (int64, error) { return int64(a), nil }

func TestExpectAffected(t *testing.T) {
	assert.NoError(t, expectAffected("delete", affected(1)))
	assert.ErrorIs(t, expectAffected("delete", affected(0)), repository.ErrNotFound)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% \_a\\b`, escapeLike(`100% _a\b`))
}

func TestSchemaIsEmbedded(t *testing.T) {
	for _, table := range []string{"links", "stores", "users"} {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestUserRowToDomain(t *testing.T) {
	row := userRow{StoreList: pq.StringArray{"Glyfada", "Kifisia"}}
	row.Email = "a@b.c"
	u := row.toDomain()
	assert.Equal(t, []string{"Glyfada", "Kifisia"}, u.Stores)

	empty := userRow{}.toDomain()
	assert.NotNil(t, empty.Stores)
}
