package services

import (
	"context"
	"testing"
	"time"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/pkg/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *UserService) {
	t.Helper()

	db := testDB(t)
	jwtAuth, err := auth.NewJWTAuth("test-secret-key", time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewJWTAuth failed: %v", err)
	}
	userSvc := NewUserService(db)
	return NewAuthService(db, jwtAuth, userSvc), userSvc
}

func TestLoginAndSessionLifecycle(t *testing.T) {
	authSvc, userSvc := newTestAuthService(t)

	_, err := userSvc.Create(context.Background(), &models.CreateUserRequest{
		Email:    "login@test.com",
		FullName: "Login User",
		Password: "Password1",
		Role:     models.RoleRPADeveloper,
	})
	if err != nil {
		t.Fatalf("user create failed: %v", err)
	}

	resp, err := authSvc.Login(context.Background(), &models.LoginRequest{
		Email:    "login@test.com",
		Password: "Password1",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("token pair missing from login response")
	}
	if resp.User.PasswordHash != "" {
		t.Error("password hash leaked in login response")
	}

	claims, err := authSvc.jwtAuth.VerifyToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}

	if err := authSvc.ValidateSession(context.Background(), claims.TokenID); err != nil {
		t.Fatalf("fresh session invalid: %v", err)
	}

	// Logout revokes the session even though the JWT is still unexpired
	if err := authSvc.Logout(context.Background(), claims.TokenID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := authSvc.ValidateSession(context.Background(), claims.TokenID); err == nil {
		t.Error("session still valid after logout")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	authSvc, userSvc := newTestAuthService(t)

	userSvc.Create(context.Background(), &models.CreateUserRequest{
		Email:    "login@test.com",
		FullName: "Login User",
		Password: "Password1",
		Role:     models.RoleRPADeveloper,
	})

	if _, err := authSvc.Login(context.Background(), &models.LoginRequest{
		Email:    "login@test.com",
		Password: "WrongPassword1",
	}); err == nil {
		t.Error("wrong password accepted")
	}

	if _, err := authSvc.Login(context.Background(), &models.LoginRequest{
		Email:    "nobody@test.com",
		Password: "Password1",
	}); err == nil {
		t.Error("unknown email accepted")
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	authSvc, userSvc := newTestAuthService(t)

	userSvc.Create(context.Background(), &models.CreateUserRequest{
		Email:    "refresh@test.com",
		FullName: "Refresh User",
		Password: "Password1",
		Role:     models.RoleRPADeveloper,
	})

	resp, err := authSvc.Login(context.Background(), &models.LoginRequest{
		Email:    "refresh@test.com",
		Password: "Password1",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	oldClaims, _ := authSvc.jwtAuth.VerifyToken(resp.RefreshToken)

	newResp, err := authSvc.Refresh(context.Background(), resp.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if newResp.User.PasswordHash != "" {
		t.Error("password hash leaked in refresh response")
	}

	// The old session is gone; the new one works
	if err := authSvc.ValidateSession(context.Background(), oldClaims.TokenID); err == nil {
		t.Error("old session survived rotation")
	}
	newClaims, _ := authSvc.jwtAuth.VerifyToken(newResp.AccessToken)
	if err := authSvc.ValidateSession(context.Background(), newClaims.TokenID); err != nil {
		t.Errorf("new session invalid: %v", err)
	}

	// A replayed refresh token must fail
	if _, err := authSvc.Refresh(context.Background(), resp.RefreshToken); err == nil {
		t.Error("replayed refresh token accepted")
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	authSvc, userSvc := newTestAuthService(t)

	user, _ := userSvc.Create(context.Background(), &models.CreateUserRequest{
		Email:    "expired@test.com",
		FullName: "Expired User",
		Password: "Password1",
		Role:     models.RoleRPADeveloper,
	})

	// One live and one expired session
	authSvc.db.Exec(`INSERT INTO user_sessions (id, user_id, token_hash, expires_at) VALUES (?, ?, ?, ?)`,
		"live", user.ID, "hash-live", time.Now().Add(time.Hour))
	authSvc.db.Exec(`INSERT INTO user_sessions (id, user_id, token_hash, expires_at) VALUES (?, ?, ?, ?)`,
		"stale", user.ID, "hash-stale", time.Now().Add(-time.Hour))

	n, err := authSvc.DeleteExpiredSessions(context.Background())
	if err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d sessions, want 1", n)
	}

	var remaining int
	authSvc.db.QueryRow("SELECT COUNT(*) FROM user_sessions").Scan(&remaining)
	if remaining != 1 {
		t.Errorf("remaining sessions = %d, want 1", remaining)
	}
}
