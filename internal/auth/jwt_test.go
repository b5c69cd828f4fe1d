package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTGenerateValidate(t *testing.T) {
	manager := NewJWTManager("secret")
	jwtToken, err := manager.Generate("user-1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := manager.Validate(jwtToken)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != TokenTTL {
		t.Fatalf("expected %s lifetime, got %s", TokenTTL, got)
	}
}

func TestJWTGenerateInvalid(t *testing.T) {
	manager := NewJWTManager("secret")
	if _, err := manager.Generate(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestJWTGenerateMissingSecret(t *testing.T) {
	manager := NewJWTManager("")
	if _, err := manager.Generate("user-1"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestJWTValidateMissing(t *testing.T) {
	manager := NewJWTManager("secret")
	if _, err := manager.Validate(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestJWTValidateRejects(t *testing.T) {
	manager := NewJWTManager("secret")

	expired := NewJWTManager("secret")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Generate("user-1")
	if err != nil {
		t.Fatalf("generate expired token: %v", err)
	}

	forgedToken, err := NewJWTManager("other-secret").Generate("user-1")
	if err != nil {
		t.Fatalf("generate forged token: %v", err)
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	valid, err := manager.Generate("user-1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign without exp: %v", err)
	}

	cases := map[string]string{
		"expired":   expiredToken,
		"forged":    forgedToken,
		"wrong alg": hs512,
		"alg none":  noneToken,
		"no expiry": noExpiry,
		"garbage":   "not.a.token",
		"truncated": valid[:len(valid)-4],
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected invalid token error, got %v", err)
			}
		})
	}
}

func TestJWTValidateEmptySecretFailsClosed(t *testing.T) {
	// A token signed with an empty key must not validate against an empty secret.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte{})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewJWTManager("").Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestTokenFromHeader(t *testing.T) {
	for _, header := range []string{"", "nope", "Bearer", "Basic abc", "Bearer a b", "bearer token"} {
		if _, err := TokenFromHeader(header); !errors.Is(err, ErrMissingToken) {
			t.Fatalf("header %q: expected missing token error, got %v", header, err)
		}
	}
	if token, err := TokenFromHeader("Bearer token"); err != nil || token != "token" {
		t.Fatalf("expected token, got %s err %v", token, err)
	}
}
