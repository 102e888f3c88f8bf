package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	manager := NewManager("test-secret", time.Minute)

	token, err := manager.Issue("user_1", "Sarah", "sarah@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user_1" || claims.Name != "Sarah" || claims.Email != "sarah@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Minute).Issue("user_1", "Sarah", "sarah@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewManager("secret-b", time.Minute).Parse(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := NewManager("test-secret", -time.Minute).Issue("user_1", "Sarah", "sarah@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewManager("test-secret", -time.Minute).Parse(token); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := NewManager("test-secret", time.Minute).Parse("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
