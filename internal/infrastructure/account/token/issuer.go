package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/riskibarqy/quiniela/internal/domain/user"
	"github.com/riskibarqy/quiniela/internal/usecase"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"

	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type claims struct {
	jwt.RegisteredClaims
	Username  string `json:"username"`
	IsStaff   bool   `json:"is_staff"`
	TokenType string `json:"token_type"`
}

// Issuer signs and verifies HS256 access and refresh tokens. Both kinds share
// the secret and are told apart by the token_type claim.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}

	return &Issuer{
		secret:     []byte(cfg.Secret),
		issuer:     strings.TrimSpace(cfg.Issuer),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

func (i *Issuer) Issue(_ context.Context, principal user.Principal) (usecase.TokenPair, error) {
	if principal.UserID <= 0 {
		return usecase.TokenPair{}, fmt.Errorf("%w: principal user id is required", usecase.ErrInvalidInput)
	}

	now := i.now().UTC()
	access, accessExp, err := i.sign(principal, typeAccess, now, i.accessTTL)
	if err != nil {
		return usecase.TokenPair{}, err
	}
	refresh, refreshExp, err := i.sign(principal, typeRefresh, now, i.refreshTTL)
	if err != nil {
		return usecase.TokenPair{}, err
	}

	return usecase.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (i *Issuer) VerifyAccess(_ context.Context, token string) (user.Principal, error) {
	return i.verify(token, typeAccess)
}

func (i *Issuer) VerifyRefresh(_ context.Context, token string) (user.Principal, error) {
	return i.verify(token, typeRefresh)
}

func (i *Issuer) sign(principal user.Principal, tokenType string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(principal.UserID, 10),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username:  principal.Username,
		IsStaff:   principal.IsStaff,
		TokenType: tokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, expiresAt, nil
}

func (i *Issuer) verify(token, tokenType string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return user.Principal{}, fmt.Errorf("%w: token expired", usecase.ErrUnauthorized)
		}
		return user.Principal{}, fmt.Errorf("%w: invalid token: %v", usecase.ErrUnauthorized, err)
	}
	if !parsed.Valid {
		return user.Principal{}, fmt.Errorf("%w: invalid token", usecase.ErrUnauthorized)
	}
	if c.TokenType != tokenType {
		return user.Principal{}, fmt.Errorf("%w: expected %s token", usecase.ErrUnauthorized, tokenType)
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return user.Principal{}, fmt.Errorf("%w: invalid token subject", usecase.ErrUnauthorized)
	}

	return user.Principal{
		UserID:   userID,
		Username: c.Username,
		IsStaff:  c.IsStaff,
	}, nil
}
