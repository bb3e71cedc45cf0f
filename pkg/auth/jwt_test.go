package auth

import (
	"strings"
	"testing"
	"time"
)

func newTestAuth(t *testing.T) *JWTAuth {
	t.Helper()

	a, err := NewJWTAuth("test-secret-key", time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewJWTAuth failed: %v", err)
	}
	return a
}

func TestGenerateAndVerifyTokens(t *testing.T) {
	a := newTestAuth(t)

	access, refresh, tokenID, err := a.GenerateTokens(42, "dev@test.com", "rpa_developer")
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}
	if access == refresh {
		t.Error("access and refresh tokens are identical")
	}

	claims, err := a.VerifyToken(access)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "dev@test.com" || claims.Role != "rpa_developer" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.TokenID != tokenID {
		t.Error("access token jti does not match the returned token id")
	}

	refreshClaims, err := a.VerifyToken(refresh)
	if err != nil {
		t.Fatalf("VerifyToken(refresh) failed: %v", err)
	}
	if refreshClaims.TokenID != tokenID {
		t.Error("refresh token jti does not match; the pair must share a session")
	}
}

func TestVerifyTokenRejectsWrongKey(t *testing.T) {
	a := newTestAuth(t)
	other, _ := NewJWTAuth("different-secret", time.Hour, 24*time.Hour)

	access, _, _, err := a.GenerateTokens(1, "x@test.com", "admin")
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}

	if _, err := other.VerifyToken(access); err == nil {
		t.Error("token verified with the wrong key")
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	a, _ := NewJWTAuth("test-secret-key", -time.Hour, 24*time.Hour)

	access, _, _, err := a.GenerateTokens(1, "x@test.com", "admin")
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}

	if _, err := a.VerifyToken(access); err == nil {
		t.Error("expired token verified")
	}
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc123")
	if err != nil || token != "abc123" {
		t.Errorf("ExtractToken = %q, %v", token, err)
	}

	if _, err := ExtractToken(""); err == nil {
		t.Error("empty header accepted")
	}
	if _, err := ExtractToken("abc123"); err == nil {
		t.Error("bare token without scheme accepted")
	}
	if _, err := ExtractToken("Basic abc123"); err == nil {
		t.Error("wrong scheme accepted")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "argon2id$") {
		t.Errorf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword(hash, "Sup3rSecret")
	if err != nil || !ok {
		t.Errorf("correct password rejected: %v", err)
	}

	ok, err = VerifyPassword(hash, "WrongPassword1")
	if err != nil {
		t.Fatalf("VerifyPassword errored on wrong password: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	h1, _ := HashPassword("Sup3rSecret")
	h2, _ := HashPassword("Sup3rSecret")
	if h1 == h2 {
		t.Error("two hashes of the same password are identical; salt is not random")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		wantErr  bool
	}{
		{"Password1", false},
		{"short1A", true},
		{"alllowercase1", true},
		{"ALLUPPERCASE1", true},
		{"NoNumbersHere", true},
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidatePassword(%q) = %v, wantErr %v", tc.password, err, tc.wantErr)
		}
	}
}
