package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

func registerTestUser(t *testing.T, env *testEnv, email string, role models.Role) (*models.User, *models.TokenPairResponse) {
	t.Helper()
	user, pair, err := env.auth.Register(context.Background(), models.RegisterRequest{
		Email:    email,
		Password: "correct-horse-battery",
		Role:     role,
	}, "10.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user, pair
}

func TestRegisterCreatesUserProfileAndSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, pair := registerTestUser(t, env, "host@example.com", models.RoleHost)
	if user.Role != models.RoleHost {
		t.Fatalf("want host role, got %s", user.Role)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("token pair not issued")
	}

	profile, err := env.storage.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("profile not created: %v", err)
	}
	if profile.Kind != models.ProfileKindHost {
		t.Fatalf("want host profile, got %s", profile.Kind)
	}

	sessions, err := env.sessions.GetActiveSessions(ctx, user.ID)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("want 1 session after registration, got %d (%v)", len(sessions), err)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.RegisterRequest
		want error
	}{
		{"bad email", models.RegisterRequest{Email: "not-an-email", Password: "longenough", Role: models.RoleHost}, ErrInvalidEmail},
		{"short password", models.RegisterRequest{Email: "a@b.com", Password: "short", Role: models.RoleHost}, ErrWeakPassword},
		{"admin not assignable", models.RegisterRequest{Email: "a@b.com", Password: "longenough", Role: models.RoleAdmin}, ErrInvalidRole},
		{"unknown role", models.RegisterRequest{Email: "a@b.com", Password: "longenough", Role: "wizard"}, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := env.auth.Register(ctx, tt.req, "", ""); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	registerTestUser(t, env, "taken@example.com", models.RoleBrand)

	_, _, err := env.auth.Register(context.Background(), models.RegisterRequest{
		Email:    "Taken@Example.com",
		Password: "correct-horse-battery",
		Role:     models.RoleGifter,
	}, "", "")
	if !errors.Is(err, storage.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerTestUser(t, env, "host@example.com", models.RoleHost)

	_, pair, err := env.auth.Login(ctx, models.LoginRequest{
		Email:    "host@example.com",
		Password: "correct-horse-battery",
	}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("no access token on login")
	}

	_, _, err = env.auth.Login(ctx, models.LoginRequest{Email: "host@example.com", Password: "wrong-password"}, "", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", err)
	}

	// Unknown account must be indistinguishable from a wrong password.
	_, _, err = env.auth.Login(ctx, models.LoginRequest{Email: "ghost@example.com", Password: "whatever-pass"}, "", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: want ErrInvalidCredentials, got %v", err)
	}
}

func TestThirdLoginEvictsOldestSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, firstPair := registerTestUser(t, env, "host@example.com", models.RoleHost)

	login := func() *models.TokenPairResponse {
		env.clock.Advance(time.Minute)
		_, pair, err := env.auth.Login(ctx, models.LoginRequest{
			Email:    "host@example.com",
			Password: "correct-horse-battery",
		}, "", "")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		return pair
	}

	secondPair := login()
	thirdPair := login()

	sessions, err := env.sessions.GetActiveSessions(ctx, user.ID)
	if err != nil || len(sessions) != 2 {
		t.Fatalf("want 2 active sessions, got %d (%v)", len(sessions), err)
	}

	// The registration session was the oldest; its refresh token is dead.
	if _, err := env.auth.Refresh(ctx, firstPair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("evicted refresh token: want ErrTokenInvalid, got %v", err)
	}
	if _, err := env.auth.Refresh(ctx, secondPair.RefreshToken); err != nil {
		t.Fatalf("second session refresh failed: %v", err)
	}
	if _, err := env.auth.Refresh(ctx, thirdPair.RefreshToken); err != nil {
		t.Fatalf("third session refresh failed: %v", err)
	}
}

func TestRefreshUpdatesLastAccessed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, pair := registerTestUser(t, env, "host@example.com", models.RoleHost)

	env.clock.Advance(2 * time.Hour)

	accessToken, err := env.auth.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if userID, role, err := env.tokens.Verify(accessToken, TokenClassAccess); err != nil || userID != user.ID || role != models.RoleHost {
		t.Fatalf("refreshed access token bad: %s/%s/%v", userID, role, err)
	}

	sessions, _ := env.sessions.GetActiveSessions(ctx, user.ID)
	if len(sessions) != 1 || !sessions[0].LastAccessedAt.Equal(env.clock.Now()) {
		t.Fatalf("last accessed not bumped: %+v", sessions)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, pair := registerTestUser(t, env, "host@example.com", models.RoleHost)

	env.clock.Advance(31 * 24 * time.Hour)

	if _, err := env.auth.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, pair := registerTestUser(t, env, "host@example.com", models.RoleHost)

	if err := env.auth.Logout(ctx, pair.RefreshToken, pair.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	sessions, _ := env.sessions.GetActiveSessions(ctx, user.ID)
	if len(sessions) != 0 {
		t.Fatalf("session survived logout: %d", len(sessions))
	}
	if _, _, err := env.tokens.VerifyAccessToken(ctx, pair.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("access token survived logout: %v", err)
	}

	// Logging out the same session again is a soft no-op.
	if err := env.auth.Logout(ctx, pair.RefreshToken, ""); err != nil {
		t.Fatalf("repeat logout: %v", err)
	}
}

func TestChangePasswordInvalidatesSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, pair := registerTestUser(t, env, "host@example.com", models.RoleHost)

	err := env.auth.ChangePassword(ctx, user.ID, "wrong-password", "new-long-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}

	if err := env.auth.ChangePassword(ctx, user.ID, "correct-horse-battery", "new-long-password"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	sessions, _ := env.sessions.GetActiveSessions(ctx, user.ID)
	if len(sessions) != 0 {
		t.Fatal("sessions must be revoked after password change")
	}
	if _, err := env.auth.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("old refresh token still works: %v", err)
	}

	if _, _, err := env.auth.Login(ctx, models.LoginRequest{Email: "host@example.com", Password: "new-long-password"}, "", ""); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, pair := registerTestUser(t, env, "host@example.com", models.RoleHost)

	err := env.auth.DeleteAccount(ctx, user.ID, "wrong-password", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}

	if err := env.auth.DeleteAccount(ctx, user.ID, "correct-horse-battery", pair.AccessToken); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	if _, err := env.storage.GetUserByID(ctx, user.ID); !errors.Is(err, storage.ErrUserNotFound) {
		t.Fatalf("user survived deletion: %v", err)
	}
	if _, err := env.storage.GetProfile(ctx, user.ID); !errors.Is(err, storage.ErrUserNotFound) {
		t.Fatalf("profile survived deletion: %v", err)
	}
	if _, err := env.auth.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("refresh token survived deletion: %v", err)
	}
	if _, _, err := env.tokens.VerifyAccessToken(ctx, pair.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("access token survived deletion: %v", err)
	}

	// The email is free again.
	if _, _, err := env.auth.Register(ctx, models.RegisterRequest{
		Email:    "host@example.com",
		Password: "correct-horse-battery",
		Role:     models.RoleGifter,
	}, "", ""); err != nil {
		t.Fatalf("re-register after deletion: %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerTestUser(t, env, "host@example.com", models.RoleHost)

	// Unknown email leaks nothing.
	token, err := env.auth.RequestPasswordReset(ctx, "ghost@example.com")
	if err != nil || token != "" {
		t.Fatalf("unknown email: token=%q err=%v", token, err)
	}

	token, err = env.auth.RequestPasswordReset(ctx, "host@example.com")
	if err != nil || token == "" {
		t.Fatalf("reset token not issued: %v", err)
	}

	if err := env.auth.ResetPassword(ctx, token, "brand-new-password"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, _, err := env.auth.Login(ctx, models.LoginRequest{Email: "host@example.com", Password: "brand-new-password"}, "", ""); err != nil {
		t.Fatalf("login after reset: %v", err)
	}

	// Reset tokens are single-use.
	if err := env.auth.ResetPassword(ctx, token, "yet-another-password"); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("reset token reused: %v", err)
	}
}

func TestResetTokenClassIsEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, pair := registerTestUser(t, env, "host@example.com", models.RoleHost)

	// A refresh token must not work as a reset token.
	if err := env.auth.ResetPassword(ctx, pair.RefreshToken, "brand-new-password"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("refresh token accepted for reset: %v", err)
	}
}
