package main

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-fitcircle/internal/appstore"
	"github.com/tbourn/go-fitcircle/internal/config"
	"github.com/tbourn/go-fitcircle/internal/docstore"
	"github.com/tbourn/go-fitcircle/internal/localstorage"
	"github.com/tbourn/go-fitcircle/internal/repo"
	"github.com/tbourn/go-fitcircle/internal/services"
)

// app holds the process-wide handles. Close releases them in reverse order.
type app struct {
	cfg     config.Config
	db      *gorm.DB
	store   docstore.Store
	docs    *services.DocumentService
	closers []func()
}

// openApp opens the SQLite database (always: it holds idempotency records
// and the sqlite state backend) and the configured remote document store.
func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBPath, err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	switch cfg.RemoteBackend {
	case "firestore":
		client, err := firestore.NewClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.store = docstore.NewFirestore(client, log.Logger)
		// Firestore keeps no collection statistics for ETags.
		a.docs = services.NewDocumentService(a.store, nil, cfg.BindingTimeout)
	default:
		a.store = docstore.NewSQLStore(db, docstore.WithSQLLogger(log.Logger))
		a.docs = services.NewDocumentService(a.store, db, cfg.BindingTimeout)
	}
	return a, nil
}

// storage returns the durable key-value backend for the application store.
func (a *app) storage() (localstorage.Storage, error) {
	switch a.cfg.StateBackend {
	case "memory":
		return localstorage.NewMemory(), nil
	case "sqlite":
		return localstorage.NewSQL(a.db, 5*time.Second), nil
	default:
		f, err := localstorage.NewFile(a.cfg.StatePath)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// openState builds the application store. Background activity only runs
// when withActivity is set; one-shot commands leave it off.
func (a *app) openState(withActivity bool) (*appstore.Store, error) {
	st, err := a.storage()
	if err != nil {
		return nil, fmt.Errorf("state storage: %w", err)
	}
	activity := a.cfg.ActivityInterval
	if !withActivity || activity <= 0 {
		activity = -1
	}
	s := appstore.New(st,
		appstore.WithKey(a.cfg.StateKey),
		appstore.WithToastTTL(a.cfg.ToastTTL),
		appstore.WithActivityInterval(activity),
		appstore.WithLogger(log.Logger),
	)
	a.closers = append(a.closers, s.Close)
	return s, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
