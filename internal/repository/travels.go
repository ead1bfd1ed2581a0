package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reisekosten/reisekosten/constants"
	"github.com/reisekosten/reisekosten/internal/common"
	"github.com/reisekosten/reisekosten/internal/entity"
)

type TravelRepository interface {
	Create(ctx context.Context, travel *entity.Travel) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Travel, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*entity.Travel, error)
	// ListForController returns non-draft travels of the employees assigned
	// to the given controller.
	ListForController(ctx context.Context, controllerID uuid.UUID) ([]*entity.Travel, error)
	ListAll(ctx context.Context) ([]*entity.Travel, error)
	Update(ctx context.Context, travel *entity.Travel) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.TravelStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type travelRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewTravelRepository(pool *pgxpool.Pool, logger *slog.Logger) TravelRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &travelRepository{pool: pool, logger: logger}
}

const travelColumns = `t.id, t.employee_id, u.name, t.start_at, t.end_at,
	t.destination_city, t.destination_country, t.purpose, t.cost_center,
	t.status, t.created_at, t.updated_at`

func scanTravel(row pgx.Row) (*entity.Travel, error) {
	var t entity.Travel
	err := row.Scan(&t.ID, &t.EmployeeID, &t.EmployeeName, &t.StartAt, &t.EndAt,
		&t.DestinationCity, &t.DestinationCountry, &t.Purpose, &t.CostCenter,
		&t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(err, "scan travel")
	}
	return &t, nil
}

func (r *travelRepository) Create(ctx context.Context, travel *entity.Travel) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO travels (employee_id, start_at, end_at, destination_city,
			destination_country, purpose, cost_center, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		travel.EmployeeID, travel.StartAt, travel.EndAt, travel.DestinationCity,
		travel.DestinationCountry, travel.Purpose, travel.CostCenter, travel.Status)
	if err := row.Scan(&travel.ID, &travel.CreatedAt, &travel.UpdatedAt); err != nil {
		r.logger.Error("failed to create travel", "employee_id", travel.EmployeeID, "error", err)
		return common.WrapError(err, "create travel")
	}
	return nil
}

func (r *travelRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Travel, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+travelColumns+`
		FROM travels t JOIN users u ON u.id = t.employee_id
		WHERE t.id = $1`, id)
	return scanTravel(row)
}

func (r *travelRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*entity.Travel, error) {
	return r.list(ctx, `
		SELECT `+travelColumns+`
		FROM travels t JOIN users u ON u.id = t.employee_id
		WHERE t.employee_id = $1
		ORDER BY t.start_at DESC`, employeeID)
}

func (r *travelRepository) ListForController(ctx context.Context, controllerID uuid.UUID) ([]*entity.Travel, error) {
	return r.list(ctx, `
		SELECT `+travelColumns+`
		FROM travels t JOIN users u ON u.id = t.employee_id
		WHERE u.controller_id = $1 AND t.status <> 'draft'
		ORDER BY t.start_at DESC`, controllerID)
}

func (r *travelRepository) ListAll(ctx context.Context) ([]*entity.Travel, error) {
	return r.list(ctx, `
		SELECT `+travelColumns+`
		FROM travels t JOIN users u ON u.id = t.employee_id
		ORDER BY t.start_at DESC`)
}

func (r *travelRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Travel, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list travels", "error", err)
		return nil, common.WrapError(err, "list travels")
	}
	defer rows.Close()

	var travels []*entity.Travel
	for rows.Next() {
		t, err := scanTravel(rows)
		if err != nil {
			return nil, err
		}
		travels = append(travels, t)
	}
	return travels, rows.Err()
}

func (r *travelRepository) Update(ctx context.Context, travel *entity.Travel) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE travels SET start_at = $2, end_at = $3, destination_city = $4,
			destination_country = $5, purpose = $6, cost_center = $7,
			updated_at = now()
		WHERE id = $1`,
		travel.ID, travel.StartAt, travel.EndAt, travel.DestinationCity,
		travel.DestinationCountry, travel.Purpose, travel.CostCenter)
	if err != nil {
		r.logger.Error("failed to update travel", "travel_id", travel.ID, "error", err)
		return common.WrapError(err, "update travel")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *travelRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.TravelStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE travels SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Error("failed to update travel status", "travel_id", id, "status", status, "error", err)
		return common.WrapError(err, "update travel status")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *travelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM travels WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("failed to delete travel", "travel_id", id, "error", err)
		return common.WrapError(err, "delete travel")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}
