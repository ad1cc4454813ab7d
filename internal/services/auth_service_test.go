package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
)

func newAuthService() (AuthService, *memUserStore, *memSessionStore, *time.Time) {
	users := newMemUserStore()
	sessions := newMemSessionStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := AuthService{
		Users:    users,
		Sessions: sessions,
		Config: AuthConfig{
			Secret:          []byte("test-secret"),
			TTL:             time.Hour,
			DefaultUsername: "admin",
			DefaultPassword: "admin123",
			DefaultEmail:    "admin@zoomgorides.com",
		},
		Now: func() time.Time { return now },
	}
	return svc, users, sessions, &now
}

func TestLoginCreatesDefaultAdminAndAuthenticates(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()

	res, err := svc.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Token == "" || !res.User.IsAdmin || res.User.Email != "admin@zoomgorides.com" {
		t.Fatalf("unexpected login result %+v", res)
	}
	stored, _ := users.GetByUsername(ctx, "admin")
	if stored.PasswordHash == "admin123" {
		t.Fatalf("password must be stored hashed")
	}

	rc, user, err := svc.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if rc.Username != "admin" || user.ID != stored.ID {
		t.Fatalf("unexpected request context %+v", rc)
	}

	if _, err := svc.Login(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("second login error: %v", err)
	}
	if len(users.users) != 1 {
		t.Fatalf("default admin created twice")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, sessions, _ := newAuthService()
	ctx := context.Background()

	if _, err := svc.Login(ctx, "", "x"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Login(ctx, "admin", "wrong"); !domain.IsAuth(err) {
		t.Fatalf("expected auth error for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost", "admin123"); !domain.IsAuth(err) {
		t.Fatalf("expected auth error for unknown user, got %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("failed logins must not open sessions")
	}
}

func TestLoginRefusesNonAdmin(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	_ = users.Create(ctx, &models.User{Username: "clerk", PasswordHash: string(hash)})

	if _, err := svc.Login(ctx, "clerk", "pw"); !domain.IsAuth(err) || domain.IsForbidden(err) {
		t.Fatalf("expected plain auth error, got %v", err)
	}
}

func TestAuthenticateRejectsMissingAndForgedTokens(t *testing.T) {
	svc, _, _, _ := newAuthService()
	ctx := context.Background()

	if _, _, err := svc.Authenticate(ctx, ""); !domain.IsAuth(err) || domain.IsForbidden(err) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}

	res, _ := svc.Login(ctx, "admin", "admin123")
	other := svc
	other.Config.Secret = []byte("another-secret")
	if _, _, err := other.Authenticate(ctx, res.Token); !domain.IsAuth(err) {
		t.Fatalf("expected forged token to be rejected, got %v", err)
	}
}

func TestAuthenticateAfterExpiryAndLogout(t *testing.T) {
	svc, _, _, now := newAuthService()
	ctx := context.Background()

	res, _ := svc.Login(ctx, "admin", "admin123")
	*now = now.Add(2 * time.Hour)
	if _, _, err := svc.Authenticate(ctx, res.Token); !domain.IsAuth(err) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}

	*now = now.Add(-2 * time.Hour)
	res, _ = svc.Login(ctx, "admin", "admin123")
	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, res.Token); !domain.IsAuth(err) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
	if err := svc.Logout(ctx, "garbage"); err != nil {
		t.Fatalf("Logout with garbage token should succeed, got %v", err)
	}
}

func TestAuthenticateForbiddenForDemotedUser(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()

	res, _ := svc.Login(ctx, "admin", "admin123")
	u := users.users[1]
	u.IsAdmin = false
	users.users[1] = u

	if _, _, err := svc.Authenticate(ctx, res.Token); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
