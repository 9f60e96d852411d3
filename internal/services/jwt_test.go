package services

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.GenerateToken("u1", "tester", true)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.UserID != "u1" || claims.Username != "tester" || !claims.IsAdmin {
		t.Errorf("claims = %+v, want u1/tester/admin", claims)
	}
	if claims.SessionID == "" {
		t.Error("session id not set")
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Hour).GenerateToken("u1", "tester", false)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := NewJWTService("secret-b", time.Hour).ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret validated")
	}
}

func TestJWTExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)

	token, err := svc.GenerateToken("u1", "tester", false)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expired token validated")
	}
}
