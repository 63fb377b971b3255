package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := NewSessionToken("secret", "training-management-api", time.Minute, Claims{
		UserID:      "pilot-7",
		Name:        "Jane Doe",
		Role:        "Trainer",
		Permissions: []string{"view_dashboard"},
		Source:      "airline",
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "pilot-7" || claims.Role != "Trainer" || claims.Subject != "pilot-7" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(claims.Permissions) != 1 {
		t.Errorf("Expected 1 permission, got %d", len(claims.Permissions))
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := NewSessionToken("secret", "issuer", time.Minute, Claims{UserID: "u"})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("other", token); err == nil {
		t.Error("Expected error for wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := NewSessionToken("secret", "issuer", -time.Minute, Claims{UserID: "u"})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Error("Expected error for expired token")
	}
}

func TestAdminCredential(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-admin"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	tests := []struct {
		name       string
		cred       *AdminCredential
		candidate  string
		configured bool
		want       bool
	}{
		{"plaintext match", NewAdminCredential("admin-key", ""), "admin-key", true, true},
		{"plaintext mismatch", NewAdminCredential("admin-key", ""), "admin-kez", true, false},
		{"hash match", NewAdminCredential("", string(hash)), "hashed-admin", true, true},
		{"hash mismatch", NewAdminCredential("", string(hash)), "admin-key", true, false},
		{"not configured", NewAdminCredential("", ""), "anything", false, false},
		{"empty candidate", NewAdminCredential("admin-key", ""), "", true, false},
		{"nil credential", nil, "admin-key", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.Configured(); got != tt.configured {
				t.Errorf("Configured() = %v, want %v", got, tt.configured)
			}
			if got := tt.cred.Matches(tt.candidate); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestHashCredential(t *testing.T) {
	a := HashCredential("key-1")
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(a))
	}
	if a != HashCredential("key-1") {
		t.Error("Hash should be deterministic")
	}
	if a == HashCredential("key-2") {
		t.Error("Different credentials should hash differently")
	}
}
