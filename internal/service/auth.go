package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

const minPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidRole        = errors.New("role is not assignable")
	ErrInvalidEmail       = errors.New("invalid email")
)

// AuthService wires registration, login and the refresh/logout flows on top
// of the token and session services. All of it is conventional glue; the
// session bound enforcement lives in SessionService and the storage layer.
type AuthService struct {
	storage  storage.Storage
	tokens   *TokenService
	sessions *SessionService
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewAuthService(
	store storage.Storage,
	tokens *TokenService,
	sessions *SessionService,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		storage:  store,
		tokens:   tokens,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Tests only.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates the user with its role profile and logs the first device in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, ipAddress, userAgent string) (*models.User, *models.TokenPairResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, nil, ErrWeakPassword
	}
	kind, ok := models.ProfileKindForRole(req.Role)
	if !ok {
		return nil, nil, ErrInvalidRole
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user, err := s.storage.CreateUser(ctx, models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         req.Role,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.storage.CreateProfile(ctx, models.Profile{
		UserID:    user.ID,
		Kind:      kind,
		UpdatedAt: now,
	}); err != nil {
		return nil, nil, fmt.Errorf("create profile: %w", err)
	}

	pair, err := s.issueSession(ctx, user, req.DeviceInfo, ipAddress, userAgent)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies credentials and opens a new device session. A missing user
// and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, ipAddress, userAgent string) (*models.User, *models.TokenPairResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueSession(ctx, user, req.DeviceInfo, ipAddress, userAgent)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, deviceInfo, ipAddress, userAgent string) (*models.TokenPairResponse, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if _, err := s.sessions.CreateSession(ctx, user.ID, refreshToken, deviceInfo, ipAddress, userAgent); err != nil {
		return nil, err
	}

	return &models.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// backing session must still exist and be unexpired; its last access time
// is bumped as bookkeeping.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, _, err := s.tokens.Verify(refreshToken, TokenClassRefresh)
	if err != nil {
		return "", err
	}

	session, err := s.sessions.FindActiveSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			// Evicted, logged out, or expired but not reaped yet.
			return "", ErrTokenInvalid
		}
		return "", err
	}
	if session.UserID != userID {
		return "", ErrTokenInvalid
	}

	s.sessions.TouchSession(ctx, session.ID)

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueAccessToken(user.ID, user.Role)
}

// Logout tears down the session behind the refresh token and blacklists the
// presented access token. A session that is already gone counts as success.
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if _, _, err := s.tokens.Verify(refreshToken, TokenClassRefresh); err != nil {
		return err
	}

	session, err := s.sessions.FindActiveSessionByRefreshToken(ctx, refreshToken)
	if err == nil {
		if err := s.sessions.DeleteSession(ctx, session.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, storage.ErrSessionNotFound) {
		return err
	}

	if accessToken != "" {
		if err := s.tokens.InvalidateToken(ctx, accessToken); err != nil {
			s.log.Warnw("failed to blacklist access token on logout", "error", err)
		}
	}
	return nil
}

// LogoutAll revokes every session of the user and the presented access token.
func (s *AuthService) LogoutAll(ctx context.Context, userID, accessToken string) error {
	if err := s.sessions.DeleteAllSessions(ctx, userID); err != nil {
		return err
	}
	if accessToken != "" {
		if err := s.tokens.InvalidateToken(ctx, accessToken); err != nil {
			s.log.Warnw("failed to blacklist access token on logout-all", "error", err)
		}
	}
	return nil
}

// ChangePassword rehashes the credential and force-invalidates every session.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.storage.UpdatePasswordHash(ctx, userID, string(newHash), s.now()); err != nil {
		return err
	}

	return s.sessions.DeleteAllSessions(ctx, userID)
}

// DeleteAccount removes the user and everything attached to it after a
// password re-check. The presented access token is blacklisted so the
// credential dies with the account.
func (s *AuthService) DeleteAccount(ctx context.Context, userID, password, accessToken string) error {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.storage.DeleteUserCascade(ctx, userID); err != nil {
		return err
	}

	if accessToken != "" {
		if err := s.tokens.InvalidateToken(ctx, accessToken); err != nil {
			s.log.Warnw("failed to blacklist access token on account deletion", "error", err)
		}
	}
	s.log.Infow("account deleted", "userID", userID)
	return nil
}

// RequestPasswordReset mints a short-lived reset token. An unknown email
// yields no token and no error, so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.storage.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}
	return s.tokens.IssueResetToken(user.ID)
}

// ResetPassword consumes a single-use reset token, sets the new credential
// and logs every device out.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	userID, err := s.tokens.VerifyResetToken(ctx, resetToken)
	if err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.storage.UpdatePasswordHash(ctx, userID, string(newHash), s.now()); err != nil {
		return err
	}

	if err := s.tokens.InvalidateToken(ctx, resetToken); err != nil {
		s.log.Warnw("failed to consume reset token", "error", err)
	}
	return s.sessions.DeleteAllSessions(ctx, userID)
}
