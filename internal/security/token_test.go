package security

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	const secret = "jwt-test-secret"

	signed, err := GenerateAccessToken(secret, "user-1", "sess-1", "superadmin", time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(signed, secret)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", claims.SessionID)
	}
	if claims.Role != "superadmin" {
		t.Errorf("Role = %q, want superadmin", claims.Role)
	}
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	signed, err := GenerateAccessToken("right-secret", "user-1", "sess-1", "admin", time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(signed, "wrong-secret"); err == nil {
		t.Fatal("ParseAccessToken accepted a token signed with another secret")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	const secret = "jwt-test-secret"

	signed, err := GenerateAccessToken(secret, "user-1", "sess-1", "admin", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(signed, secret); err == nil {
		t.Fatal("ParseAccessToken accepted an expired token")
	}
}
