package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/boostlab/internal/bleveindex"
	"github.com/kailas-cloud/boostlab/internal/config"
	"github.com/kailas-cloud/boostlab/internal/dataset"
	"github.com/kailas-cloud/boostlab/internal/db"
	dbRedis "github.com/kailas-cloud/boostlab/internal/db/redis"
	"github.com/kailas-cloud/boostlab/internal/domain"
	domdoc "github.com/kailas-cloud/boostlab/internal/domain/document"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
	"github.com/kailas-cloud/boostlab/internal/repository/corpus"
	"github.com/kailas-cloud/boostlab/internal/repository/profile"
	searchrepo "github.com/kailas-cloud/boostlab/internal/repository/search"
	"github.com/kailas-cloud/boostlab/internal/textindex"
	"github.com/kailas-cloud/boostlab/internal/usecase/evaluation"
	healthuc "github.com/kailas-cloud/boostlab/internal/usecase/health"
	searchuc "github.com/kailas-cloud/boostlab/internal/usecase/search"
)

// app is the composition root shared by all subcommands.
type app struct {
	cfg     config.Config
	env     string
	logger  *zap.Logger
	schema  schema.Schema
	store   db.Store
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// redisStore opens the Redis connection once and waits for readiness.
func (a *app) redisStore(ctx context.Context) (db.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if len(a.cfg.Database.Addrs) == 0 {
		return nil, domain.Configf("database.addrs is required")
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    a.cfg.Database.Addrs,
		Password: a.cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	timeout := time.Duration(a.cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	a.logger.Info("Connected to database", zap.Strings("addrs", a.cfg.Database.Addrs))
	a.store = store
	a.closers = append(a.closers, store.Close)
	return store, nil
}

func (a *app) documents() ([]domdoc.Document, error) {
	docs, err := dataset.LoadDocuments(a.cfg.Evaluation.Documents, a.schema)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Documents loaded",
		zap.String("path", a.cfg.Evaluation.Documents),
		zap.Int("count", len(docs)),
	)
	return docs, nil
}

func (a *app) groundTruth() ([]evaluation.Record, error) {
	records, err := dataset.LoadGroundTruth(a.cfg.Evaluation.GroundTruth)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Ground truth loaded",
		zap.String("path", a.cfg.Evaluation.GroundTruth),
		zap.Int("count", len(records)),
	)
	return records, nil
}

func (a *app) constantFilter() (filter.Expression, error) {
	f, err := filter.FromMap(a.cfg.Backend.ConstantFilter)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("%w: backend.constant_filter: %w", domain.ErrConfiguration, err)
	}
	return f, nil
}

func (a *app) corpusRepo(ctx context.Context) (*corpus.Repo, error) {
	store, err := a.redisStore(ctx)
	if err != nil {
		return nil, err
	}
	return corpus.New(store, a.cfg.Database.Collection, a.schema).
		WithBatchSize(a.cfg.Database.IngestBatchSize), nil
}

func (a *app) profileRepo(ctx context.Context) (*profile.Repo, error) {
	store, err := a.redisStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile store: %w", err)
	}
	return profile.New(store), nil
}

// backend builds the configured search backend and its readiness check.
func (a *app) backend(ctx context.Context) (searchuc.Backend, healthuc.IndexChecker, error) {
	constant, err := a.constantFilter()
	if err != nil {
		return nil, nil, err
	}

	switch a.cfg.Backend.Name {
	case config.BackendMemory:
		if !constant.IsEmpty() {
			a.logger.Warn("backend.constant_filter is ignored by the memory backend")
		}
		docs, err := a.documents()
		if err != nil {
			return nil, nil, err
		}
		idx := textindex.New(a.schema)
		if err := idx.Fit(docs); err != nil {
			return nil, nil, err
		}
		return idx, readyWhenFitted(idx.Len), nil

	case config.BackendBleve:
		docs, err := a.documents()
		if err != nil {
			return nil, nil, err
		}
		idx := bleveindex.New(a.schema).WithConstantFilter(constant)
		if err := idx.Fit(docs); err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = idx.Close() })
		return idx, readyWhenFitted(idx.Len), nil

	case config.BackendRedis:
		store, err := a.redisStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		repo, err := a.corpusRepo(ctx)
		if err != nil {
			return nil, nil, err
		}
		ready := healthuc.IndexCheckFunc(func(ctx context.Context) error {
			ok, err := repo.Exists(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrIndexNotFitted
			}
			return nil
		})
		return searchrepo.New(store, a.cfg.Database.Collection, a.schema).WithConstantFilter(constant), ready, nil
	}
	return nil, nil, domain.Configf("unknown backend %q", a.cfg.Backend.Name)
}

func (a *app) searchService(ctx context.Context) (*searchuc.Service, healthuc.IndexChecker, error) {
	backend, ready, err := a.backend(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := searchuc.New(backend, a.cfg.Backend.Name, a.schema).
		WithLogger(a.logger.Named("search"))
	return svc, ready, nil
}

func readyWhenFitted(size func() int) healthuc.IndexChecker {
	return healthuc.IndexCheckFunc(func(context.Context) error {
		if size() == 0 {
			return domain.ErrIndexNotFitted
		}
		return nil
	})
}

// isNotFound reports a missing profile or key.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// isIndexExists reports an FT.CREATE on an existing index.
func isIndexExists(err error) bool {
	return errors.Is(err, db.ErrIndexExists)
}
