package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clinicworks/ehr-system/internal/core/ports"
	"github.com/clinicworks/ehr-system/internal/infrastructure/db/memory"
	"github.com/clinicworks/ehr-system/internal/infrastructure/db/mongo"
	"github.com/clinicworks/ehr-system/internal/infrastructure/db/postgres"
	"github.com/clinicworks/ehr-system/internal/pkg/config"
)

// openStore connects the record store selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.RecordStore, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns, cfg.Postgres.MinConns)
		if err != nil {
			return ports.RecordStore{}, err
		}
		log.Info().Msg("connected to postgres")
		return postgres.NewRecordStore(pool), nil

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return ports.RecordStore{}, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
		return mongo.NewRecordStore(client, db), nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory record store; data is lost on restart")
		return memory.New().RecordStore(), nil
	}
	return ports.RecordStore{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
