package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const sessionMemoTTL = time.Minute

type AuthService struct {
	users repository.UserRepository
	cost  int
	epoch cache.Epoch

	mu   sync.Mutex
	memo map[[sha256.Size]byte]memoEntry
	now  func() time.Time
}

type memoEntry struct {
	session domain.Session
	epoch   int64
	expires time.Time
}

// NewAuthService checks credentials against stored bcrypt hashes. Verified
// credentials are remembered for a minute so Basic auth does not pay the
// bcrypt cost on every request. The memo is tied to epoch: a bump from any
// instance sharing it drops every remembered session. A nil epoch is local.
func NewAuthService(users repository.UserRepository, bcryptCost int, epoch cache.Epoch) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if epoch == nil {
		epoch = cache.NewMemoryEpoch()
	}
	return &AuthService{
		users: users,
		cost:  bcryptCost,
		epoch: epoch,
		memo:  make(map[[sha256.Size]byte]memoEntry),
		now:   time.Now,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate resolves credentials to the caller's session.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.Session{}, ErrInvalidCredentials
	}

	key := sha256.Sum256([]byte(email + "\x00" + password))
	epoch, err := s.epoch.Current(ctx)
	memo := err == nil
	if err != nil {
		log.Warn().Err(err).Msg("auth: epoch unavailable, skipping session memo")
	}
	if memo {
		if session, ok := s.remembered(key, epoch); ok {
			return session, nil
		}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.Session{}, ErrInvalidCredentials
	}

	session := SessionFor(user)
	if memo {
		s.remember(key, session, epoch)
	}
	return session, nil
}

// Forget drops remembered sessions on every instance sharing the epoch, so
// role or store changes apply at once.
func (s *AuthService) Forget(ctx context.Context) {
	s.mu.Lock()
	clear(s.memo)
	s.mu.Unlock()

	if err := s.epoch.Bump(ctx); err != nil {
		log.Warn().Err(err).Msg("auth: epoch bump failed, other instances keep sessions until expiry")
	}
}

func (s *AuthService) remembered(key [sha256.Size]byte, epoch int64) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.memo[key]
	if !ok || e.epoch != epoch || s.now().After(e.expires) {
		delete(s.memo, key)
		return domain.Session{}, false
	}
	return e.session, true
}

func (s *AuthService) remember(key [sha256.Size]byte, session domain.Session, epoch int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memo[key] = memoEntry{session: session, epoch: epoch, expires: s.now().Add(sessionMemoTTL)}
}

// SessionFor builds the session a user acts under.
func SessionFor(user *domain.User) domain.Session {
	stores := make([]string, len(user.Stores))
	copy(stores, user.Stores)
	return domain.Session{
		UserID:         user.ID,
		Email:          user.Email,
		Role:           domain.NormalizeRole(user.Role),
		AssignedStores: stores,
	}
}
