package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/pkg/auth"
)

// AuthService handles login, logout and server-side sessions. Sessions back
// JWT revocation: a token whose session row is gone no longer authenticates,
// even if the JWT itself has not expired.
type AuthService struct {
	db       *database.DB
	jwtAuth  *auth.JWTAuth
	userSvc  *UserService
}

// NewAuthService creates a new auth service
func NewAuthService(db *database.DB, jwtAuth *auth.JWTAuth, userSvc *UserService) *AuthService {
	return &AuthService{db: db, jwtAuth: jwtAuth, userSvc: userSvc}
}

// Login verifies credentials and opens a session
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userSvc.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		// Constant-shape response to prevent email enumeration
		time.Sleep(200 * time.Millisecond)
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil || !valid {
		log.Printf("⚠️ Failed login attempt for user: %s", req.Email)
		GetMetrics().RecordLogin("failure")
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	accessToken, refreshToken, tokenID, err := s.jwtAuth.GenerateTokens(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	expiresAt := time.Now().Add(s.jwtAuth.RefreshTokenExpiry)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_sessions (id, user_id, token_hash, expires_at)
		VALUES (?, ?, ?, ?)
	`, uuid.New().String(), user.ID, hashTokenID(tokenID), expiresAt)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	GetMetrics().RecordLogin("success")
	log.Printf("✅ User logged in: %s (%d)", user.Email, user.ID)

	// The hash never leaves this service
	user.PasswordHash = ""

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		ExpiresIn:    int(s.jwtAuth.AccessTokenExpiry.Seconds()),
	}, nil
}

// ValidateSession checks that the token's session row still exists and has
// not expired.
func (s *AuthService) ValidateSession(ctx context.Context, tokenID string) error {
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT expires_at FROM user_sessions WHERE token_hash = ?", hashTokenID(tokenID)).Scan(&expiresAt)
	if err == sql.ErrNoRows {
		return apperrors.Unauthorized("Session has been revoked")
	}
	if err != nil {
		return apperrors.FromStore(err)
	}
	if time.Now().After(expiresAt) {
		return apperrors.Unauthorized("Session has expired")
	}
	return nil
}

// Logout revokes the session behind the given token id
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM user_sessions WHERE token_hash = ?", hashTokenID(tokenID))
	if err != nil {
		return apperrors.FromStore(err)
	}
	return nil
}

// Refresh exchanges a valid refresh token for a new token pair and rotates
// the session row.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	claims, err := s.jwtAuth.VerifyToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired refresh token")
	}

	if err := s.ValidateSession(ctx, claims.TokenID); err != nil {
		return nil, err
	}

	user, err := s.userSvc.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("User no longer exists")
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("Account is deactivated")
	}

	accessToken, newRefreshToken, tokenID, err := s.jwtAuth.GenerateTokens(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	expiresAt := time.Now().Add(s.jwtAuth.RefreshTokenExpiry)
	err = s.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM user_sessions WHERE token_hash = ?", hashTokenID(claims.TokenID)); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO user_sessions (id, user_id, token_hash, expires_at)
			VALUES (?, ?, ?, ?)
		`, uuid.New().String(), user.ID, hashTokenID(tokenID), expiresAt)
		return err
	})
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	user.PasswordHash = ""

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		User:         user,
		ExpiresIn:    int(s.jwtAuth.AccessTokenExpiry.Seconds()),
	}, nil
}

// DeleteExpiredSessions removes sessions past their expiry. Run by the
// cleanup job.
func (s *AuthService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_sessions WHERE expires_at < ?", time.Now())
	if err != nil {
		return 0, apperrors.FromStore(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func hashTokenID(tokenID string) string {
	sum := sha256.Sum256([]byte(tokenID))
	return hex.EncodeToString(sum[:])
}
