// Package postgres implements the record store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicworks/ehr-system/internal/core/ports"
)

func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// NewRecordStore exposes pool through the repository ports.
func NewRecordStore(pool *pgxpool.Pool) ports.RecordStore {
	return ports.RecordStore{
		Users:         &userRepo{pool: pool},
		Patients:      &patientRepo{pool: pool},
		Encounters:    &encounterRepo{pool: pool},
		Prescriptions: &prescriptionRepo{pool: pool},
		Audit:         &auditRepo{pool: pool},
		Ping:          pool.Ping,
		Close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}
}
