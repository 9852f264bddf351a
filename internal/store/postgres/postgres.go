// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/sensehel/senselog/internal/model"
	"github.com/sensehel/senselog/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateToken(ctx context.Context, token *model.Token) error {
	return queryCreateToken(ctx, s.db, token)
}

func (s *PostgresStore) DeleteToken(ctx context.Context, token string) error {
	return queryDeleteToken(ctx, s.db, token)
}

func (s *PostgresStore) ListTokens(ctx context.Context) ([]*model.Token, error) {
	return queryListTokens(ctx, s.db)
}

func (s *PostgresStore) TokenExists(ctx context.Context, token string) (bool, error) {
	return queryTokenExists(ctx, s.db, token)
}

func (s *PostgresStore) GetOrCreateAttribute(ctx context.Context, uri, description string) (*model.SensorAttribute, error) {
	return queryGetOrCreateAttribute(ctx, s.db, uri, description)
}

func (s *PostgresStore) ListAttributes(ctx context.Context) ([]*model.SensorAttribute, error) {
	return queryListAttributes(ctx, s.db)
}

func (s *PostgresStore) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	return queryCreateSubscription(ctx, s.db, sub)
}

func (s *PostgresStore) CreateAttributeSubscription(ctx context.Context, attr *model.AttributeSubscription) error {
	return queryCreateAttributeSubscription(ctx, s.db, attr)
}

func (s *PostgresStore) GetSubscription(ctx context.Context, uuid string) (*model.Subscription, error) {
	return queryGetSubscription(ctx, s.db, uuid)
}

func (s *PostgresStore) ListSubscriptions(ctx context.Context) ([]*model.Subscription, error) {
	return queryListSubscriptions(ctx, s.db)
}

func (s *PostgresStore) DeleteSubscription(ctx context.Context, uuid string) error {
	return queryDeleteSubscription(ctx, s.db, uuid)
}

func (s *PostgresStore) CreateValue(ctx context.Context, value *model.Value) error {
	return queryCreateValue(ctx, s.db, value)
}

func (s *PostgresStore) GetValues(ctx context.Context, attributeSubscriptionID int64, since *time.Time) ([]*model.Value, error) {
	return queryGetValues(ctx, s.db, attributeSubscriptionID, since)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateToken(ctx context.Context, token *model.Token) error {
	return queryCreateToken(ctx, s.tx, token)
}

func (s *txStore) DeleteToken(ctx context.Context, token string) error {
	return queryDeleteToken(ctx, s.tx, token)
}

func (s *txStore) ListTokens(ctx context.Context) ([]*model.Token, error) {
	return queryListTokens(ctx, s.tx)
}

func (s *txStore) TokenExists(ctx context.Context, token string) (bool, error) {
	return queryTokenExists(ctx, s.tx, token)
}

func (s *txStore) GetOrCreateAttribute(ctx context.Context, uri, description string) (*model.SensorAttribute, error) {
	return queryGetOrCreateAttribute(ctx, s.tx, uri, description)
}

func (s *txStore) ListAttributes(ctx context.Context) ([]*model.SensorAttribute, error) {
	return queryListAttributes(ctx, s.tx)
}

func (s *txStore) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	return queryCreateSubscription(ctx, s.tx, sub)
}

func (s *txStore) CreateAttributeSubscription(ctx context.Context, attr *model.AttributeSubscription) error {
	return queryCreateAttributeSubscription(ctx, s.tx, attr)
}

func (s *txStore) GetSubscription(ctx context.Context, uuid string) (*model.Subscription, error) {
	return queryGetSubscription(ctx, s.tx, uuid)
}

func (s *txStore) ListSubscriptions(ctx context.Context) ([]*model.Subscription, error) {
	return queryListSubscriptions(ctx, s.tx)
}

func (s *txStore) DeleteSubscription(ctx context.Context, uuid string) error {
	return queryDeleteSubscription(ctx, s.tx, uuid)
}

func (s *txStore) CreateValue(ctx context.Context, value *model.Value) error {
	return queryCreateValue(ctx, s.tx, value)
}

func (s *txStore) GetValues(ctx context.Context, attributeSubscriptionID int64, since *time.Time) ([]*model.Value, error) {
	return queryGetValues(ctx, s.tx, attributeSubscriptionID, since)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
