package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reisekosten/reisekosten/internal/common"
	"github.com/reisekosten/reisekosten/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	AssignController(ctx context.Context, employeeID uuid.UUID, controllerID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewUserRepository(pool *pgxpool.Pool, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &userRepository{pool: pool, logger: logger}
}

const userColumns = `id, email, name, role, company, department, cost_center,
	is_active, controller_id, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Company, &u.Department,
		&u.CostCenter, &u.IsActive, &u.ControllerID, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(err, "scan user")
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, company, department, cost_center,
			is_active, controller_id, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		user.Email, user.Name, user.Role, user.Company, user.Department,
		user.CostCenter, user.IsActive, user.ControllerID, user.PasswordHash)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		r.logger.Error("failed to create user", "email", user.Email, "error", err)
		return common.WrapError(err, "create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *userRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		r.logger.Error("failed to list users", "error", err)
		return nil, common.WrapError(err, "list users")
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET email = $2, name = $3, role = $4, company = $5,
			department = $6, cost_center = $7, is_active = $8,
			controller_id = $9, password_hash = $10, updated_at = now()
		WHERE id = $1`,
		user.ID, user.Email, user.Name, user.Role, user.Company, user.Department,
		user.CostCenter, user.IsActive, user.ControllerID, user.PasswordHash)
	if err != nil {
		r.logger.Error("failed to update user", "user_id", user.ID, "error", err)
		return common.WrapError(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *userRepository) AssignController(ctx context.Context, employeeID uuid.UUID, controllerID *uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET controller_id = $2, updated_at = now() WHERE id = $1`,
		employeeID, controllerID)
	if err != nil {
		r.logger.Error("failed to assign controller", "employee_id", employeeID, "error", err)
		return common.WrapError(err, "assign controller")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("failed to delete user", "user_id", id, "error", err)
		return common.WrapError(err, "delete user")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}
