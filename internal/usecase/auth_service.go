package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/user"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
	"github.com/shopspring/decimal"
)

const minPasswordLength = 8

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns ErrUnauthorized when password does not match hash.
	Compare(hash, password string) error
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(ctx context.Context, principal user.Principal) (TokenPair, error)
	VerifyAccess(ctx context.Context, token string) (user.Principal, error)
	VerifyRefresh(ctx context.Context, token string) (user.Principal, error)
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	User          user.User
	Tokens        TokenPair
	CoinsAssigned bool
}

type AuthService struct {
	users  user.Repository
	hasher PasswordHasher
	tokens TokenIssuer
	coins  *CoinService
	mirror *UserMirrorService
	logger *logging.Logger
}

func NewAuthService(
	users user.Repository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	coins *CoinService,
	mirror *UserMirrorService,
	logger *logging.Logger,
) *AuthService {
	if logger == nil {
		logger = logging.Default()
	}

	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		coins:  coins,
		mirror: mirror,
		logger: logger,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Register")
	defer span.End()

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	switch {
	case username == "":
		return AuthResult{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	case len(input.Password) < minPasswordLength:
		return AuthResult{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return AuthResult{}, fmt.Errorf("%w: email is invalid", ErrInvalidInput)
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, user.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: hash,
		IsActive:     true,
		VirtualCoins: decimal.Zero,
	})
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			return AuthResult{}, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	s.syncMirror(ctx, created)

	tokens, err := s.tokens.Issue(ctx, principalOf(created))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", created.ID, "username", created.Username)
	return AuthResult{User: created, Tokens: tokens}, nil
}

// Login checks credentials, runs the login coin assignment and issues tokens.
// A failed coin assignment does not fail the login.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Login")
	defer span.End()

	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	item, exists, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("get user by username: %w", err)
	}
	if !exists || !item.IsActive {
		return AuthResult{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err := s.hasher.Compare(item.PasswordHash, input.Password); err != nil {
		return AuthResult{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	result := AuthResult{User: item}
	if s.coins != nil {
		updated, assigned, err := s.coins.AssignOnLogin(ctx, item)
		if err != nil {
			s.logger.ErrorContext(ctx, "login coin assignment failed", "user_id", item.ID, "error", err)
		} else {
			result.User = updated
			result.CoinsAssigned = assigned
		}
	}

	tokens, err := s.tokens.Issue(ctx, principalOf(result.User))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue tokens: %w", err)
	}
	result.Tokens = tokens

	return result, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Refresh")
	defer span.End()

	principal, err := s.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	item, exists, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("get user: %w", err)
	}
	if !exists || !item.IsActive {
		return TokenPair{}, fmt.Errorf("%w: user is not active", ErrUnauthorized)
	}

	tokens, err := s.tokens.Issue(ctx, principalOf(item))
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	// The refresh token is not rotated.
	tokens.RefreshToken = ""
	tokens.RefreshExpiresAt = time.Time{}
	return tokens, nil
}

func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (user.Principal, error) {
	return s.tokens.VerifyAccess(ctx, accessToken)
}

func (s *AuthService) GetProfile(ctx context.Context, userID int64) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.GetProfile")
	defer span.End()

	item, exists, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user %d not found", ErrNotFound, userID)
	}

	return item, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, in user.ProfileUpdate) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.UpdateProfile")
	defer span.End()

	if in.Empty() {
		return user.User{}, fmt.Errorf("%w: no updates provided", ErrInvalidInput)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return user.User{}, fmt.Errorf("%w: email is invalid", ErrInvalidInput)
			}
		}
		in.Email = &email
	}

	updated, err := s.users.UpdateProfile(ctx, userID, in)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return user.User{}, fmt.Errorf("update profile: %w", err)
	}
	s.syncMirror(ctx, updated)

	return updated, nil
}

func (s *AuthService) syncMirror(ctx context.Context, item user.User) {
	if s.mirror == nil {
		return
	}
	// Failure stays queued in the outbox.
	_ = s.mirror.Sync(ctx, item)
}

func principalOf(item user.User) user.Principal {
	return user.Principal{
		UserID:   item.ID,
		Username: item.Username,
		IsStaff:  item.IsStaff,
	}
}
