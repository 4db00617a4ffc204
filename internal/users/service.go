package users

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/edustore/edustore-backend/internal/models"
	"github.com/edustore/edustore-backend/pkg/logger"
)

// ErrInvalidCredentials covers both an unknown username and a wrong
// password, so login responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service encapsulates credential-store business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(username, email, password, role string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies a username/password pair. Unknown user and bad
// password are indistinguishable to the caller.
func (s *Service) Authenticate(username, password string) (*models.User, error) {
	u, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureAdmin seeds the bootstrap administrator when the store holds no
// admin account yet. A no-op when password is empty or an admin exists.
func (s *Service) EnsureAdmin(username, password string) error {
	has, err := s.repo.HasAdmin()
	if err != nil {
		return err
	}
	if has || password == "" {
		return nil
	}
	if _, err := s.Register(username, "", password, models.RoleAdmin); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil
		}
		return err
	}
	logger.Infof("seeded bootstrap admin account %q", username)
	return nil
}
