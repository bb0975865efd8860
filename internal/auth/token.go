package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and missing user ids.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// TokenConfig carries the secrets and lifetimes of both token classes.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// TokenPair is what a successful login or refresh hands back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Claims is the token payload: the user id plus the registered claims.
type Claims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if strings.TrimSpace(cfg.AccessSecret) == "" || strings.TrimSpace(cfg.RefreshSecret) == "" {
		return nil, errors.New("token secrets are required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &TokenIssuer{cfg: cfg, now: time.Now}, nil
}

func (i *TokenIssuer) IssueAccessToken(userID string) (string, error) {
	return i.sign(userID, i.cfg.AccessSecret, i.cfg.AccessTTL)
}

func (i *TokenIssuer) IssueRefreshToken(userID string) (string, error) {
	return i.sign(userID, i.cfg.RefreshSecret, i.cfg.RefreshTTL)
}

func (i *TokenIssuer) IssuePair(userID string) (TokenPair, error) {
	access, err := i.IssueAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.IssueRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *TokenIssuer) VerifyAccessToken(token string) (string, error) {
	return i.Verify(token, i.cfg.AccessSecret)
}

func (i *TokenIssuer) VerifyRefreshToken(token string) (string, error) {
	return i.Verify(token, i.cfg.RefreshSecret)
}

// Verify checks signature and expiry of token against secret and returns the user id.
func (i *TokenIssuer) Verify(token, secret string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.UserID) == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func (i *TokenIssuer) sign(userID, secret string, ttl time.Duration) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
