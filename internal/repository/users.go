package repository

import (
	"context"
	"database/sql"

	"maitred/internal/database"
	"maitred/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT user_id, email, password_hash, first_name, surname, role, is_active, registered_at
		FROM users
		WHERE email = $1`

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.UserID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.Surname,
		&user.Role,
		&user.IsActive,
		&user.RegisteredAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}
