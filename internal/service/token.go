package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/util"
)

// TokenClass separates the three credential kinds minted by the service.
// Verification fails when a token of one class is presented where another
// is expected.
type TokenClass string

const (
	TokenClassAccess  TokenClass = "access"
	TokenClassRefresh TokenClass = "refresh"
	TokenClassReset   TokenClass = "reset"
)

const resetTokenTTL = 30 * time.Minute

var (
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenInvalid         = errors.New("token invalid")
	ErrTokenRevoked         = errors.New("token revoked")
	ErrInvalidSigningMethod = errors.New("invalid signing method")
)

type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   models.Role `json:"role,omitempty"`
	Class  TokenClass  `json:"cls"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies HS512 signed tokens. It holds no mutable
// state beyond configuration secrets and the revocation blacklist handle.
type TokenService struct {
	jwtSecretKey   []byte
	sessionHMACKey []byte
	issuer         string
	audience       string
	accessTTL      time.Duration
	refreshTTL     time.Duration
	tokenBlacklist TokenBlacklist

	// now is injectable for deterministic expiry tests.
	now func() time.Time
}

func NewTokenService(cfg *util.TokenConfig, blacklist TokenBlacklist) *TokenService {
	return &TokenService{
		jwtSecretKey:   cfg.JwtSecretKey,
		sessionHMACKey: cfg.SessionHMACKey,
		issuer:         cfg.Issuer,
		audience:       cfg.Audience,
		accessTTL:      cfg.AccessTTL,
		refreshTTL:     cfg.RefreshTTL,
		tokenBlacklist: blacklist,
		now:            time.Now,
	}
}

// WithClock replaces the time source. Tests only.
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	ts.now = now
	return ts
}

func (ts *TokenService) RefreshTTL() time.Duration { return ts.refreshTTL }

// IssueAccessToken mints a short-lived token carrying the user id and role.
// No record of it is persisted.
func (ts *TokenService) IssueAccessToken(userID string, role models.Role) (string, error) {
	return ts.sign(userID, role, TokenClassAccess, ts.accessTTL)
}

// IssueRefreshToken mints the long-lived token whose only persisted trace is
// the keyed hash stored with a session.
func (ts *TokenService) IssueRefreshToken(userID string) (string, error) {
	return ts.sign(userID, "", TokenClassRefresh, ts.refreshTTL)
}

// IssueResetToken mints a short-lived single-purpose password-reset token.
func (ts *TokenService) IssueResetToken(userID string) (string, error) {
	return ts.sign(userID, "", TokenClassReset, resetTokenTTL)
}

func (ts *TokenService) sign(userID string, role models.Role, class TokenClass, ttl time.Duration) (string, error) {
	now := ts.now()
	claims := &jwtClaims{
		UserID: userID,
		Role:   role,
		Class:  class,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    ts.issuer,
			Audience:  jwt.ClaimStrings{ts.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signedToken, err := token.SignedString(ts.jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("signed string: %w", err)
	}
	return signedToken, nil
}

// Verify parses a token and checks signature, expiry, issuer, audience and
// class. Both failure modes are terminal for the current request.
func (ts *TokenService) Verify(token string, expected TokenClass) (userID string, role models.Role, err error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(ts.issuer),
		jwt.WithAudience(ts.audience),
		jwt.WithLeeway(util.JWTLeeWay),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}

	parsedToken, err := jwt.ParseWithClaims(
		token,
		&jwtClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS512.Alg() {
				return nil, ErrInvalidSigningMethod
			}
			return ts.jwtSecretKey, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrTokenExpired
		}
		return "", "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := parsedToken.Claims.(*jwtClaims)
	if !ok || !parsedToken.Valid || claims.UserID == "" {
		return "", "", ErrTokenInvalid
	}
	if claims.Class != expected {
		return "", "", fmt.Errorf("%w: wrong token class", ErrTokenInvalid)
	}

	return claims.UserID, claims.Role, nil
}

// VerifyAccessToken checks the revocation blacklist before signature
// validation, so logout-all takes effect immediately.
func (ts *TokenService) VerifyAccessToken(ctx context.Context, token string) (string, models.Role, error) {
	return ts.verifyNotRevoked(ctx, token, TokenClassAccess)
}

// VerifyResetToken validates a password-reset token. Consumed tokens sit on
// the blacklist, which makes reset tokens single-use.
func (ts *TokenService) VerifyResetToken(ctx context.Context, token string) (string, error) {
	userID, _, err := ts.verifyNotRevoked(ctx, token, TokenClassReset)
	return userID, err
}

func (ts *TokenService) verifyNotRevoked(ctx context.Context, token string, class TokenClass) (string, models.Role, error) {
	isInvalidated, err := ts.tokenBlacklist.IsTokenInvalidated(ctx, token)
	if err != nil {
		return "", "", fmt.Errorf("failed to check if token is invalidated: %w", err)
	}
	if isInvalidated {
		return "", "", ErrTokenRevoked
	}
	return ts.Verify(token, class)
}

// InvalidateToken blacklists a token for the rest of its lifetime.
func (ts *TokenService) InvalidateToken(ctx context.Context, accessToken string) error {
	claims, err := ts.claimsUnverified(accessToken)
	if err != nil {
		return fmt.Errorf("get claims from token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return ErrTokenInvalid
	}

	expiration := claims.ExpiresAt.Sub(ts.now())
	if err := ts.tokenBlacklist.InvalidateToken(ctx, accessToken, expiration); err != nil {
		return fmt.Errorf("invalidate token: %w", err)
	}
	return nil
}

// HashRefreshToken derives the one-way hash a session is keyed by. The hash
// must be deterministic: sessions are looked up by it on a unique column.
func (ts *TokenService) HashRefreshToken(refreshToken string) string {
	mac := hmac.New(sha256.New, ts.sessionHMACKey)
	mac.Write([]byte(refreshToken))
	return hex.EncodeToString(mac.Sum(nil))
}

func (ts *TokenService) claimsUnverified(token string) (*jwtClaims, error) {
	parsedToken, _, err := new(jwt.Parser).ParseUnverified(token, &jwtClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := parsedToken.Claims.(*jwtClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
