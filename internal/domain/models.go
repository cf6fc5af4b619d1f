// backend-go/internal/domain/models.go
package domain

import (
	"strings"
	"time"
)

// Role values stored on users.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

var roleCodes = map[string]string{
	"admin":         RoleAdmin,
	"administrator": RoleAdmin,
	"client":        RoleClient,
	"store":         RoleClient,
}

// NormalizeRole maps a stored role label to a known role. Unknown labels are
// treated as client so they stay store-restricted.
func NormalizeRole(role string) string {
	if r, ok := roleCodes[strings.ToLower(strings.TrimSpace(role))]; ok {
		return r
	}
	return RoleClient
}

// Link is a registered spreadsheet source.
type Link struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	URL       string    `json:"url" db:"url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Store represents a store location
type Store struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	StoreID   string    `json:"storeId" db:"store_code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// User is a dashboard account. Stores lists the store names a client may see.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"`
	Stores       []string  `json:"stores" db:"-"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserInput carries the writable user attributes.
type UserInput struct {
	Email    string   `json:"email" binding:"required"`
	Name     string   `json:"name"`
	Role     string   `json:"role" binding:"required"`
	Stores   []string `json:"stores"`
	Password string   `json:"password"`
}

// Session is the explicit caller context passed into the filter engine.
type Session struct {
	UserID         string   `json:"userId"`
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	AssignedStores []string `json:"assignedStores"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Restricted reports whether the session must be scoped to its assigned stores.
func (s Session) Restricted() bool {
	return !s.IsAdmin()
}
