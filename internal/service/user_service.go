package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"anniversary-api/internal/domain"
	"anniversary-api/internal/metrics"
	"anniversary-api/internal/repository"
)

const defaultMinPasswordLength = 8

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateIdentity  = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrPersistence        = errors.New("persistence failure")
)

// ValidationError describe un campo de entrada invalido.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UserService coordina el alta y el login de identidades locales.
type UserService struct {
	logger            *zap.Logger
	users             repository.UserRepository
	tokens            *JWTService
	hasher            *PasswordHasher
	recorder          metrics.AuthRecorder
	validate          *validator.Validate
	minPasswordLength int
}

func NewUserService(
	logger *zap.Logger,
	users repository.UserRepository,
	tokens *JWTService,
	hasher *PasswordHasher,
	recorder metrics.AuthRecorder,
	minPasswordLength int,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = NewPasswordHasher(0)
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if minPasswordLength <= 0 {
		minPasswordLength = defaultMinPasswordLength
	}
	return &UserService{
		logger:            logger,
		users:             users,
		tokens:            tokens,
		hasher:            hasher,
		recorder:          recorder,
		validate:          validator.New(),
		minPasswordLength: minPasswordLength,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type SigninResult struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

// Signup crea una identidad local. El duplicado lo detecta el indice unico.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" {
		return domain.User{}, &ValidationError{Field: "name", Message: "Name is required"}
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return domain.User{}, &ValidationError{Field: "email", Message: "Invalid email format"}
	}
	if utf8.RuneCountInString(input.Password) < s.minPasswordLength {
		return domain.User{}, &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", s.minPasswordLength),
		}
	}
	if len(input.Password) > maxPasswordBytes {
		return domain.User{}, &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes),
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.recorder.RecordSignup(metrics.ResultError)
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Provider:     domain.ProviderLocal,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.recorder.RecordSignup(metrics.ResultDuplicate)
			return domain.User{}, ErrDuplicateIdentity
		}
		s.recorder.RecordSignup(metrics.ResultError)
		s.logger.Error("create user failed", zap.Error(err))
		return domain.User{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.recorder.RecordSignup(metrics.ResultSuccess)
	return user, nil
}

// Signin verifica credenciales locales y emite un token. Todos los fallos
// de credenciales devuelven el mismo ErrInvalidCredentials.
func (s *UserService) Signin(ctx context.Context, email, password string) (SigninResult, error) {
	if s.users == nil || s.tokens == nil {
		return SigninResult{}, errors.New("user service not configured")
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.recorder.RecordSignin(metrics.ResultInvalid)
		return SigninResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Compare("", password)
			s.recorder.RecordSignin(metrics.ResultInvalid)
			return SigninResult{}, ErrInvalidCredentials
		}
		s.recorder.RecordSignin(metrics.ResultError)
		s.logger.Error("lookup user failed", zap.Error(err))
		return SigninResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	hash := user.PasswordHash
	if !user.IsLocal() {
		hash = ""
	}
	if !s.hasher.Compare(hash, password) {
		s.recorder.RecordSignin(metrics.ResultInvalid)
		return SigninResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.recorder.RecordSignin(metrics.ResultError)
		return SigninResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.recorder.RecordSignin(metrics.ResultSuccess)
	return SigninResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Signout no tiene efecto en el servidor: los tokens expiran solos.
func (s *UserService) Signout(_ context.Context) error {
	return nil
}

// Me devuelve la identidad asociada al id verificado.
func (s *UserService) Me(ctx context.Context, userID int64) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
