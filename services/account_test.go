package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestRegisterTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "A", "a@x.com")

	_, err := env.accounts.Register(ctx, RegisterParams{Name: "A2", Email: " A@X.com ", Password: "other"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected %v, got %v", ErrEmailTaken, err)
	}
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	env := newTestEnv(t)

	user := env.register(t, "A", "a@x.com")
	if user.PasswordHash == "" || user.PasswordHash == "secret123" {
		t.Fatalf("expected a password hash, got %q", user.PasswordHash)
	}
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "A", "a@x.com")

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", email: "a@x.com", password: "secret123"},
		{name: "email case and spaces ignored", email: "  A@x.COM", password: "secret123"},
		{name: "wrong password", email: "a@x.com", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "z@x.com", password: "secret123", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.accounts.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("authenticate: %v", err)
			}
			id, err := env.accounts.Resolve(res.Token)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if id != user.ID {
				t.Fatalf("expected token for %s, got %s", user.ID, id)
			}
		})
	}
}

func TestProfileUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.accounts.Profile(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected %v, got %v", ErrUserNotFound, err)
	}
}

func TestUpdateFCMToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "A", "a@x.com")

	if err := env.accounts.UpdateFCMToken(ctx, user.ID, "device-1"); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := env.accounts.Profile(ctx, user.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got.FCMToken != "device-1" {
		t.Fatalf("expected token device-1, got %q", got.FCMToken)
	}

	if err := env.accounts.UpdateFCMToken(ctx, "missing", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected %v, got %v", ErrUserNotFound, err)
	}
}

func TestTokenIssuerResolve(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", "studyplan", time.Hour)
	issuer.now = func() time.Time { return now }

	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	t.Run("valid", func(t *testing.T) {
		id, err := issuer.Resolve(token)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if id != "user-1" {
			t.Fatalf("expected user-1, got %s", id)
		}
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenIssuer("secret", "studyplan", time.Hour)
		later.now = func() time.Time { return now.Add(2 * time.Hour) }
		if _, err := later.Resolve(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected %v, got %v", ErrInvalidToken, err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("other", "studyplan", time.Hour)
		other.now = issuer.now
		if _, err := other.Resolve(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected %v, got %v", ErrInvalidToken, err)
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenIssuer("secret", "someone-else", time.Hour)
		other.now = issuer.now
		if _, err := other.Resolve(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected %v, got %v", ErrInvalidToken, err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := issuer.Resolve("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected %v, got %v", ErrInvalidToken, err)
		}
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "studyplan",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := issuer.Resolve(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected %v, got %v", ErrInvalidToken, err)
		}
	})

	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected a compact JWS, got %q", token)
	}
}
