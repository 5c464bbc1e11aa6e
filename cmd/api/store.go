package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"companyapi/internal/config"
	"companyapi/internal/database"
	"companyapi/internal/database/migration"
	"companyapi/internal/model"
	"companyapi/internal/repository"
	"companyapi/internal/repository/memory"
	"companyapi/internal/repository/objectstore"
	"companyapi/internal/repository/postgres"
	"companyapi/internal/repository/redisstore"
	"companyapi/internal/storage"
)

func noopClose() error { return nil }

// newRepository builds the repository selected by cfg.StoreBackend. Errors
// are returned only for unusable configuration; a store that cannot be
// reached at startup is logged and still returned so that requests fail
// individually.
func newRepository(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (repository.CompanyRepository, func() error, error) {
	log = log.With(zap.String("backend", cfg.StoreBackend))

	switch cfg.StoreBackend {
	case config.BackendMemory:
		var seed []model.Company
		if cfg.SeedSampleData {
			seed = model.SampleCompanies()
		}
		return memory.NewCompanyMemory(seed...), noopClose, nil

	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewCompanyPostgres(db, postgres.WithSchema(func(ctx context.Context) error {
			return migration.EnsureMigrated(ctx, db, log)
		}))
		if err := database.Ping(ctx, db); err != nil {
			log.Error("error connecting to database", zap.Error(err))
		} else {
			log.Info("connected to database")
			migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := repo.EnsureSchema(migrateCtx); err != nil {
				log.Error("database migration failed", zap.Error(err))
			}
		}
		return repo, db.Close, nil

	case config.BackendMinIO:
		objStore, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return nil, nil, err
		}
		repo := objectstore.NewCompanyObjectStore(objStore)
		bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := repo.Ping(bucketCtx); err != nil {
			log.Error("error connecting to object storage", zap.Error(err))
		} else {
			log.Info("connected to object storage", zap.String("bucket", cfg.MinIO.Bucket))
		}
		return repo, noopClose, nil

	case config.BackendRedis:
		client, err := redisstore.NewClient(cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		repo := redisstore.NewCompanyRedis(client)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := repo.Ping(pingCtx); err != nil {
			log.Error("error connecting to redis", zap.Error(err))
		} else {
			log.Info("connected to redis")
		}
		return repo, client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
