package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/evtracker/internal/dbx"
	"github.com/dmitrijs2005/evtracker/internal/migrations"
	"github.com/dmitrijs2005/evtracker/internal/repositories/cars"
	"github.com/dmitrijs2005/evtracker/internal/repositories/expenses"
	"github.com/dmitrijs2005/evtracker/internal/repositories/maintenance"
	"github.com/dmitrijs2005/evtracker/internal/repositories/notifications"
	"github.com/dmitrijs2005/evtracker/internal/repositories/settings"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Store bundles the per-table repositories over one database handle.
type Store struct {
	db *sql.DB

	Cars          cars.Repository
	Expenses      expenses.Repository
	Maintenance   maintenance.Repository
	Notifications notifications.Repository
	Settings      settings.Repository
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{
		db:            db,
		Cars:          cars.NewSQLiteRepository(db),
		Expenses:      expenses.NewSQLiteRepository(db),
		Maintenance:   maintenance.NewSQLiteRepository(db),
		Notifications: notifications.NewSQLiteRepository(db),
		Settings:      settings.NewSQLiteRepository(db),
	}
}

// Open opens the database at path, creating its directory if needed, and
// applies pending migrations. A path starting with "file:" is passed to the
// driver unchanged.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection also keeps transactions
	// and plain statements from waiting on each other.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the migration version recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	return migrations.Version(ctx, s.db)
}

// DeleteAllData empties cars, expenses, planned_maintenance and
// delayed_notifications. user_settings is left alone.
func (s *Store) DeleteAllData(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range []string{"delayed_notifications", "planned_maintenance", "expenses", "cars"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("failed to wipe %s: %w", table, err)
			}
		}
		return nil
	})
}

// DeleteCar removes a car with its expenses and planned maintenance.
// Delayed notifications of the car stay in place; they are only removed
// per maintenance record or by DeleteAllData.
func (s *Store) DeleteCar(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := expenses.NewSQLiteRepository(tx).DeleteAllForCar(ctx, id); err != nil {
			return err
		}
		if _, err := maintenance.NewSQLiteRepository(tx).DeleteAllForCar(ctx, id); err != nil {
			return err
		}
		return cars.NewSQLiteRepository(tx).Delete(ctx, id)
	})
}
