package repository

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reisekosten/reisekosten/internal/common"
)

// schema is applied at startup; every statement is idempotent so repeated
// boots against the same database are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'employee',
		company VARCHAR(255) NOT NULL DEFAULT '',
		department VARCHAR(255),
		cost_center VARCHAR(100),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		controller_id UUID REFERENCES users(id),
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS travels (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		employee_id UUID NOT NULL REFERENCES users(id),
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ NOT NULL,
		destination_city VARCHAR(255) NOT NULL,
		destination_country VARCHAR(255) NOT NULL,
		purpose TEXT NOT NULL DEFAULT '',
		cost_center VARCHAR(100),
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS receipts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		travel_id UUID NOT NULL REFERENCES travels(id) ON DELETE CASCADE,
		file_path VARCHAR(512),
		original_filename VARCHAR(255),
		file_size BIGINT,
		mime_type VARCHAR(100),
		amount NUMERIC(10,2),
		currency VARCHAR(3),
		receipt_date TIMESTAMPTZ,
		vat NUMERIC(10,2),
		vat_rate NUMERIC(5,2),
		merchant VARCHAR(255),
		merchant_address TEXT,
		merchant_tax_id VARCHAR(50),
		category VARCHAR(50),
		invoice_number VARCHAR(100),
		payment_method VARCHAR(50),
		notes TEXT,
		parsing_status VARCHAR(20),
		parsing_confidence NUMERIC(5,2),
		parsed_at TIMESTAMPTZ,
		ocr_text TEXT,
		extracted_json JSONB,
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_travels_employee ON travels(employee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_travels_status ON travels(status)`,
	`CREATE INDEX IF NOT EXISTS idx_receipts_travel ON receipts(travel_id)`,
	`CREATE INDEX IF NOT EXISTS idx_receipts_parsing_status ON receipts(parsing_status)`,
	`CREATE INDEX IF NOT EXISTS idx_users_controller ON users(controller_id)`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	logger.Info("applying database schema")
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			logger.Error("schema statement failed", "error", err)
			return common.WrapError(err, "apply schema")
		}
	}
	logger.Info("database schema up to date")
	return nil
}
