package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/exam-engine/internal/config"
	"github.com/stemsi/exam-engine/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	_, rdb := newTestRedis(t)
	auth := NewAuthService(testConfig(), rdb)
	user := model.NewID()

	token, expiresAt, err := auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Fatalf("expiry too soon: %v", expiresAt)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user || claims.Subject != user.String() || claims.ID == "" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	_, rdb := newTestRedis(t)
	cfg := testConfig()
	auth := NewAuthService(cfg, rdb)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour}, rdb)
		token, _, _ := other.GenerateToken(model.NewID())
		if _, err := auth.ValidateToken(token); err == nil {
			t.Fatal("token signed with another secret accepted")
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewAuthService(&config.Config{JWTSecret: cfg.JWTSecret, JWTExpiry: -time.Minute}, rdb)
		token, _, _ := expired.GenerateToken(model.NewID())
		if _, err := auth.ValidateToken(token); err == nil {
			t.Fatal("expired token accepted")
		}
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			UserID:           model.NewID(),
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := auth.ValidateToken(signed); err == nil {
			t.Fatal("unsigned token accepted")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := auth.ValidateToken("not-a-token"); err == nil {
			t.Fatal("garbage accepted")
		}
	})
}

func TestRevokeToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	auth := NewAuthService(testConfig(), rdb)
	ctx := context.Background()

	token, _, _ := auth.GenerateToken(model.NewID())
	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if err := auth.CheckNotRevoked(ctx, claims.ID); err != nil {
		t.Fatalf("fresh token revoked: %v", err)
	}
	if err := auth.Revoke(ctx, claims); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := auth.CheckNotRevoked(ctx, claims.ID); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("err = %v, want ErrTokenRevoked", err)
	}

	ttl := mr.TTL(config.CacheKey.RevokedTokenKey(claims.ID))
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("revocation ttl = %v", ttl)
	}
}

func TestUserServiceRegisterAndAuthenticate(t *testing.T) {
	_, rdb := newTestRedis(t)
	users := NewUserService(newFakeUserStore(), NewAuthService(testConfig(), rdb), zerolog.Nop())
	ctx := context.Background()

	u, err := users.Register(ctx, "Ada", "  Ada@Example.com ", "correct-horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "ada@example.com" || u.PasswordHash == "correct-horse" {
		t.Fatalf("user = %+v", u)
	}

	if _, err := users.Register(ctx, "Ada again", "ADA@example.com", "whatever1"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate err = %v", err)
	}

	got, err := users.Authenticate(ctx, "ada@EXAMPLE.com", "correct-horse")
	if err != nil || got.ID != u.ID {
		t.Fatalf("authenticate = %+v, %v", got, err)
	}
	if _, err := users.Authenticate(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := users.Authenticate(ctx, "nobody@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}

	if _, err := users.GetByID(ctx, model.NewID()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
}

func TestRegisterRejectsPasswordsBcryptCannotHash(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := newFakeUserStore()
	users := NewUserService(store, NewAuthService(testConfig(), rdb), zerolog.Nop())
	ctx := context.Background()

	tooLong := map[string]string{
		"ascii":     strings.Repeat("a", 100),
		"multibyte": strings.Repeat("é", 40), // 40 runes, 80 bytes
	}
	for name, password := range tooLong {
		if _, err := users.Register(ctx, "Long", name+"@example.com", password); !errors.Is(err, ErrPasswordTooLong) {
			t.Fatalf("%s: err = %v, want ErrPasswordTooLong", name, err)
		}
	}

	limit := strings.Repeat("b", model.MaxPasswordBytes)
	if _, err := users.Register(ctx, "Edge", "edge@example.com", limit); err != nil {
		t.Fatalf("72-byte password rejected: %v", err)
	}
	if _, err := users.Authenticate(ctx, "edge@example.com", limit); err != nil {
		t.Fatalf("72-byte password login: %v", err)
	}
}
