package auth

import (
	"testing"
	"time"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, err := manager.GenerateToken(Identity{Subject: "user-1", Email: "user@example.com", Role: "admin", TenantID: "gym-42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "user@example.com" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TenantID != "gym-42" {
		t.Fatalf("expected tenant gym-42, got %q", claims.TenantID)
	}

	if _, err := manager.ParseToken(token + "tampered"); err == nil {
		t.Fatalf("expected parse error for tampered token")
	}
}

func TestJWTManager_EmptySecret(t *testing.T) {
	manager := NewJWTManager("", time.Hour)
	if _, err := manager.GenerateToken(Identity{Subject: "user", Email: "user@example.com", Role: "user"}); err == nil {
		t.Fatalf("expected error when secret is empty")
	}
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	issuer := NewJWTManager("issuer-secret", time.Hour)
	verifier := NewJWTManager("other-secret", time.Hour)

	token, err := issuer.GenerateToken(Identity{Subject: "user-1", TenantID: "t1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatalf("expected signature verification to fail")
	}
}
