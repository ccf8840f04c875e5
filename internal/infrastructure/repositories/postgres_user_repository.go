package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"rescue-coordination-system/internal/domain"
)

// PostgresUserRepository імплементує UserRepository для PostgreSQL
type PostgresUserRepository struct {
	db *sql.DB
}

// NewPostgresUserRepository створює новий екземпляр PostgresUserRepository
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

func (r *PostgresUserRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
        INSERT INTO users (id, email, display_name, role, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return err
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
        SELECT id, email, display_name, role, is_active, created_at, updated_at
        FROM users
        WHERE id = $1
    `

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *PostgresUserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	query := `
        SELECT id, email, display_name, role, is_active, created_at, updated_at
        FROM users
        ORDER BY created_at
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.DisplayName,
			&user.Role,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
        UPDATE users
        SET email = $1, display_name = $2, role = $3, is_active = $4, updated_at = NOW()
        WHERE id = $5
    `

	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Email,
		user.DisplayName,
		user.Role,
		user.IsActive,
		user.ID,
	)

	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, user.ID)
	}

	return nil
}
