package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"real-estate-site/internal/database"
	"real-estate-site/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence surface behind authentication.
type UserStore interface {
	GetUserByUsername(username string) (*models.User, error)
	CreateUser(user *models.User) error
	SaveUser(user *models.User) error
	CountUsers() (int64, error)
}

// ErrBadCredentials covers unknown usernames and wrong passwords alike.
var ErrBadCredentials = errors.New("invalid username or password")

// ErrPermanentlyBlocked means the account exhausted every attempt.
var ErrPermanentlyBlocked = errors.New("account permanently blocked after repeated failed logins")

// BlockedError reports a temporary lockout still in effect.
type BlockedError struct {
	Until time.Time
}

func (e *BlockedError) Error() string {
	remaining := time.Until(e.Until).Round(time.Second)
	return fmt.Sprintf("account temporarily blocked, retry in %s", remaining)
}

// Lockout policy: three free attempts, the 4th and 5th failure each start
// a 30 second block, the 6th blocks the account permanently.
const (
	freeAttempts      = 3
	tempBlockAttempts = 5
	tempBlockDuration = 30 * time.Second
)

// Service checks admin credentials and tracks the failed-login lockout on
// the user row.
type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// Authenticate verifies a username/password pair and advances the lockout
// state. On success the failure counters are reset.
func (s *Service) Authenticate(username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if user.PermanentlyBlocked {
		return nil, ErrPermanentlyBlocked
	}
	if user.Status != models.UserStatusEnabled {
		return nil, ErrBadCredentials
	}

	now := time.Now()
	if user.BlockedUntil != nil {
		if now.Before(*user.BlockedUntil) {
			return nil, &BlockedError{Until: *user.BlockedUntil}
		}
		// Block expired, release it.
		user.BlockedUntil = nil
		if err := s.users.SaveUser(user); err != nil {
			return nil, err
		}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil {
		if user.FailedAttempts != 0 {
			user.FailedAttempts = 0
			user.BlockedUntil = nil
			if err := s.users.SaveUser(user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}

	user.FailedAttempts++
	switch {
	case user.FailedAttempts <= freeAttempts:
		// Nothing beyond the counter.
	case user.FailedAttempts <= tempBlockAttempts:
		until := now.Add(tempBlockDuration)
		user.BlockedUntil = &until
	default:
		user.PermanentlyBlocked = true
		log.Printf("[auth] user %s permanently blocked after %d failed logins", username, user.FailedAttempts)
	}
	if err := s.users.SaveUser(user); err != nil {
		return nil, err
	}

	if user.PermanentlyBlocked {
		return nil, ErrPermanentlyBlocked
	}
	if user.BlockedUntil != nil {
		return nil, &BlockedError{Until: *user.BlockedUntil}
	}
	return nil, ErrBadCredentials
}

// AttemptsLeft returns how many free attempts remain for a user, for the
// login response hint. Unknown users report the full allowance.
func (s *Service) AttemptsLeft(username string) int {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		return freeAttempts
	}
	left := freeAttempts - user.FailedAttempts
	if left < 0 {
		return 0
	}
	return left
}

// EnsureAdmin creates the bootstrap admin account when no users exist.
func (s *Service) EnsureAdmin(username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	count, err := s.users.CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	user := &models.User{
		Username: username,
		Password: hash,
		Role:     models.RoleAdmin,
		Status:   models.UserStatusEnabled,
	}
	if err := s.users.CreateUser(user); err != nil {
		return err
	}
	log.Printf("[auth] bootstrap admin account %q created", username)
	return nil
}

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
