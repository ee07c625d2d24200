package tokens

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateSessionToken_ValidAndClaims(t *testing.T) {
	secret := "test-secret-32-bytes-should-be-long-enough"
	tokenStr, err := GenerateSessionToken(secret, "session-123", 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}

	parsed, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if !parsed.Valid {
		t.Fatalf("token should be valid")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims type assertion failed")
	}
	if claims["sid"] != "session-123" {
		t.Fatalf("unexpected sid claim: got=%v", claims["sid"])
	}
}

func TestGenerateSessionToken_NoSecret(t *testing.T) {
	if _, err := GenerateSessionToken("", "s", time.Minute); err != ErrNoSecret {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}
}

func TestVerifier_RoundTrip(t *testing.T) {
	secret := "verifier-secret-32-bytes-xxxxxxxxx"
	tokenStr, err := GenerateSessionToken(secret, "s-1", time.Minute)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}
	tok, err := NewVerifier(secret).Verify(context.Background(), tokenStr)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		t.Fatalf("Claims error: %v", err)
	}
	if claims["sid"] != "s-1" {
		t.Fatalf("unexpected sid claim: %v", claims["sid"])
	}

	var typed struct {
		SID string `json:"sid"`
	}
	if err := tok.Claims(&typed); err != nil || typed.SID != "s-1" {
		t.Fatalf("typed claims: %+v %v", typed, err)
	}
}

func TestVerifier_Expired(t *testing.T) {
	secret := "another-secret-32-bytes-longgggg"
	tokenStr, err := GenerateSessionToken(secret, "s2", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}
	if _, err := NewVerifier(secret).Verify(context.Background(), tokenStr); err == nil {
		t.Fatalf("expected expired token to fail verification")
	}
}

func TestVerifier_WrongSecretFails(t *testing.T) {
	tokenStr, err := GenerateSessionToken("secret-one-32-bytes-xxxxxxxxxxxxxxxx", "s3", 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}
	if _, err := NewVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tokenStr); err == nil {
		t.Fatalf("expected verification to fail with wrong secret")
	}
}

func TestVerifier_Malformed(t *testing.T) {
	if _, err := NewVerifier("x").Verify(context.Background(), "not.a.jwt"); err == nil {
		t.Fatalf("expected verification to fail for malformed token")
	}
}

// Rejected when alg=none (unsigned token)
func TestVerifier_AlgNoneRejected(t *testing.T) {
	headerEnc := new(jwt.Token).EncodeSegment([]byte(`{"alg":"none"}`))
	payloadEnc := new(jwt.Token).EncodeSegment([]byte(`{"sid":"s-none","exp":9999999999}`))
	tok := headerEnc + "." + payloadEnc + "."
	if _, err := NewVerifier("x").Verify(context.Background(), tok); err == nil {
		t.Fatalf("expected alg=none token to be rejected")
	}
}

// Tampering with payload must fail signature verification
func TestVerifier_TamperedPayload(t *testing.T) {
	secret := "tamper-test-secret-32-bytes-xxxxxxx"
	tokenStr, err := GenerateSessionToken(secret, "session-t", 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	payloadBytes, _ := jwt.NewParser().DecodeSegment(parts[1])
	parts[1] = new(jwt.Token).EncodeSegment([]byte(strings.Replace(string(payloadBytes), "session-t", "session-x", 1)))
	if _, err := NewVerifier(secret).Verify(context.Background(), strings.Join(parts, ".")); err == nil {
		t.Fatalf("expected signature verification to fail for tampered token")
	}
}
