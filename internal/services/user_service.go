package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/pkg/auth"
)

// UserService handles user accounts
type UserService struct {
	db *database.DB
}

// NewUserService creates a new user service
func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = "id, email, full_name, password_hash, role, is_active, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var active int
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.IsActive = active == 1
	return &u, nil
}

// Create adds a new user account. Email is normalized to lower case.
func (s *UserService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, apperrors.Validation("A valid email address is required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, apperrors.Validation("Full name is required")
	}
	if !models.IsValidRole(req.Role) {
		return nil, apperrors.Validation("Unknown role: " + req.Role)
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	existing, err := s.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("A user with this email already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, full_name, password_hash, role)
		VALUES (?, ?, ?, ?)
	`, req.Email, req.FullName, hash, req.Role)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	id, _ := res.LastInsertId()
	return s.GetByID(ctx, int(id))
}

// GetByID returns a user by id, or a NOT_FOUND error
func (s *UserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return u, nil
}

// GetByEmail returns a user by email, or nil when no such user exists
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", strings.ToLower(email))
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return u, nil
}

// List returns all users, active first
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY is_active DESC, full_name")
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.FromStore(err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Count returns the number of user accounts
func (s *UserService) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, apperrors.FromStore(err)
	}
	return n, nil
}

// Update patches the mutable user fields
func (s *UserService) Update(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
		if u.FullName == "" {
			return nil, apperrors.Validation("Full name cannot be empty")
		}
	}
	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			return nil, apperrors.Validation("Unknown role: " + *req.Role)
		}
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE users SET full_name = ?, role = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, u.FullName, u.Role, boolToInt(u.IsActive), id)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	return s.GetByID(ctx, id)
}

// UpdatePassword replaces a user's password hash
func (s *UserService) UpdatePassword(ctx context.Context, id int, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.Validation(err.Error())
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal(err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", hash, id)
	if err != nil {
		return apperrors.FromStore(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("User not found")
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
