package auth

import (
	"strings"
	"testing"
	"time"
)

func TestTokenIssuer(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token issuer: %v", err)
	}

	token, err := issuer.IssueSessionToken("session-abc")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	// Verify token format (should have 3 parts)
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Errorf("Invalid JWT format: expected 3 parts, got %d", len(parts))
	}

	sessionID, err := issuer.VerifySessionToken(token)
	if err != nil {
		t.Errorf("Failed to verify token: %v", err)
	}
	if sessionID != "session-abc" {
		t.Errorf("Expected session-abc, got %s", sessionID)
	}

	// Test with a tampered token
	if _, err := issuer.VerifySessionToken(token + "x"); err == nil {
		t.Error("Expected verification to fail for tampered token")
	}

	// Test with a token from a different secret
	other, err := NewTokenIssuer("other-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token issuer: %v", err)
	}
	foreign, err := other.IssueSessionToken("session-abc")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	if _, err := issuer.VerifySessionToken(foreign); err == nil {
		t.Error("Expected verification to fail for foreign token")
	}
}

func TestTokenIssuerRandomSecret(t *testing.T) {
	issuer, err := NewTokenIssuer("", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token issuer: %v", err)
	}

	token, err := issuer.IssueSessionToken("session-xyz")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	sessionID, err := issuer.VerifySessionToken(token)
	if err != nil {
		t.Errorf("Failed to verify token: %v", err)
	}
	if sessionID != "session-xyz" {
		t.Errorf("Expected session-xyz, got %s", sessionID)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token issuer: %v", err)
	}
	issuer.ttl = -time.Minute

	token, err := issuer.IssueSessionToken("session-abc")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	if _, err := issuer.VerifySessionToken(token); err == nil {
		t.Error("Expected verification to fail for expired token")
	}
}
