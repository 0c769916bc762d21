package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cinehub/apiserver/internal/store"
	"github.com/cinehub/apiserver/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a login fails, whether the
// account is unknown or the password is wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// SignupBonusPoints is the reputation credit for completing
// registration.
const SignupBonusPoints = 20

// AccountRepository defines the persistence operations the user
// service needs.
type AccountRepository interface {
	Insert(ctx context.Context, user types.User) (types.User, error)
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// UserService encapsulates account use-cases: registration, credential
// verification, and profile lookup.
type UserService struct {
	repo AccountRepository
}

func NewUserService(repo AccountRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates a new account with a bcrypt-hashed password and the
// signup bonus applied. The display name defaults to the email local
// part when absent. Fails with store.ErrEmailTaken on a collision.
func (s *UserService) Register(ctx context.Context, email, password, name string) (types.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" {
		return types.User{}, fmt.Errorf("%w: email and password are required", store.ErrValidation)
	}
	if name == "" {
		name = email
		if at := strings.IndexByte(email, '@'); at > 0 {
			name = email[:at]
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	return s.repo.Insert(ctx, types.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         types.RoleUser,
		Points:       SignupBonusPoints,
		LevelTitle:   LevelFor(SignupBonusPoints),
		PasswordHash: string(hashed),
	})
}

// Login verifies credentials and returns the account. Unknown emails
// and wrong passwords both fail with ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves an account by id.
func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}
