package auth

import (
	"testing"
	"time"

	"github.com/taskcourse/apiserver/internal/apperr"
	"github.com/taskcourse/apiserver/types"
)

func TestHashAndVerifyPassword(t *testing.T) {
	creds := NewCredentials("secret", time.Hour)

	hashed, err := creds.HashPassword("Secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hashed == "Secret1" {
		t.Fatalf("password stored in plaintext")
	}
	if !creds.VerifyPassword("Secret1", hashed) {
		t.Fatalf("correct password did not verify")
	}
	if creds.VerifyPassword("Wrong1", hashed) {
		t.Fatalf("wrong password verified")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	creds := NewCredentials("secret", time.Hour)

	token, err := creds.IssueToken(Claims{UserID: 42, Email: "alice@example.com", Role: types.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := creds.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "alice@example.com" || claims.Role != types.RoleStudent {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyTokenFailures(t *testing.T) {
	creds := NewCredentials("secret", time.Hour)

	token, err := creds.IssueToken(Claims{UserID: 1, Email: "a@b.co", Role: types.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"tampered", token + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := creds.VerifyToken(tt.token)
			if apperr.KindOf(err) != apperr.Unauthorized {
				t.Fatalf("kind = %v, want Unauthorized", apperr.KindOf(err))
			}
			if apperr.MessageOf(err) != "Invalid token" {
				t.Fatalf("message = %q, want %q", apperr.MessageOf(err), "Invalid token")
			}
		})
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	issuer := NewCredentials("secret-a", time.Hour)
	verifier := NewCredentials("secret-b", time.Hour)

	token, err := issuer.IssueToken(Claims{UserID: 1, Email: "a@b.co", Role: types.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.VerifyToken(token); apperr.KindOf(err) != apperr.Unauthorized {
		t.Fatalf("kind = %v, want Unauthorized", apperr.KindOf(err))
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	creds := NewCredentials("secret", -time.Minute)

	token, err := creds.IssueToken(Claims{UserID: 1, Email: "a@b.co", Role: types.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := creds.VerifyToken(token); apperr.KindOf(err) != apperr.Unauthorized {
		t.Fatalf("kind = %v, want Unauthorized", apperr.KindOf(err))
	}
}
