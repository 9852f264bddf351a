package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/sensehel/senselog/internal/model"
	"github.com/sensehel/senselog/internal/store"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// mapConflict converts unique-violation errors to store.ErrConflict.
func mapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return store.ErrConflict
	}
	return err
}

func queryCreateToken(ctx context.Context, db executor, t *model.Token) error {
	err := db.QueryRowContext(ctx, `
		INSERT INTO tokens (token)
		VALUES ($1)
		RETURNING id, created_at`,
		t.Token,
	).Scan(&t.ID, &t.CreatedAt)
	return mapConflict(err)
}

func queryDeleteToken(ctx context.Context, db executor, token string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryListTokens(ctx context.Context, db executor) ([]*model.Token, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, token, created_at
		FROM tokens
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTokens(rows)
}

func queryTokenExists(ctx context.Context, db executor, token string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM tokens WHERE token = $1)`,
		token,
	).Scan(&exists)
	return exists, err
}

// queryGetOrCreateAttribute inserts a catalog row for uri unless one exists.
// The uri unique index arbitrates concurrent first-time inserts; on conflict
// the existing row is re-read, so the first writer's description wins.
func queryGetOrCreateAttribute(ctx context.Context, db executor, uri, description string) (*model.SensorAttribute, error) {
	row := db.QueryRowContext(ctx, `
		INSERT INTO sensor_attributes (uri, description)
		VALUES ($1, $2)
		ON CONFLICT (uri) DO NOTHING
		RETURNING id, uri, description`,
		uri, description,
	)
	attr, err := scanAttribute(row)
	if errors.Is(err, sql.ErrNoRows) {
		row = db.QueryRowContext(ctx, `
			SELECT id, uri, description
			FROM sensor_attributes
			WHERE uri = $1`,
			uri,
		)
		return scanAttribute(row)
	}
	return attr, err
}

func queryListAttributes(ctx context.Context, db executor) ([]*model.SensorAttribute, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, uri, description
		FROM sensor_attributes
		ORDER BY uri ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttributes(rows)
}

func queryCreateSubscription(ctx context.Context, db executor, sub *model.Subscription) error {
	err := db.QueryRowContext(ctx, `
		INSERT INTO subscriptions (uuid)
		VALUES ($1)
		RETURNING id, created_at`,
		sub.UUID,
	).Scan(&sub.ID, &sub.CreatedAt)
	return mapConflict(err)
}

func queryCreateAttributeSubscription(ctx context.Context, db executor, attr *model.AttributeSubscription) error {
	err := db.QueryRowContext(ctx, `
		INSERT INTO attribute_subscriptions (subscription_id, attribute_type_id, attribute_id)
		VALUES ($1, $2, $3)
		RETURNING id`,
		attr.SubscriptionID, attr.AttributeTypeID, attr.AttributeID,
	).Scan(&attr.ID)
	return mapConflict(err)
}

func queryGetSubscription(ctx context.Context, db executor, uuid string) (*model.Subscription, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, uuid, created_at
		FROM subscriptions
		WHERE uuid = $1`,
		uuid,
	)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, err
	}

	attrs, err := queryGetAttributeSubscriptions(ctx, db, sub.ID)
	if err != nil {
		return nil, err
	}
	sub.Attributes = attrs

	return sub, nil
}

func queryListSubscriptions(ctx context.Context, db executor) ([]*model.Subscription, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, uuid, created_at
		FROM subscriptions
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs, err := scanSubscriptions(rows)
	if err != nil {
		return nil, err
	}

	for _, sub := range subs {
		attrs, err := queryGetAttributeSubscriptions(ctx, db, sub.ID)
		if err != nil {
			return nil, err
		}
		sub.Attributes = attrs
	}
	return subs, nil
}

// queryGetAttributeSubscriptions loads the attribute subscriptions of one
// subscription with their catalog uri/description denormalized in.
func queryGetAttributeSubscriptions(ctx context.Context, db executor, subscriptionID int64) ([]*model.AttributeSubscription, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT a.id, a.subscription_id, a.attribute_type_id, a.attribute_id, t.uri, t.description
		FROM attribute_subscriptions a
		JOIN sensor_attributes t ON t.id = a.attribute_type_id
		WHERE a.subscription_id = $1
		ORDER BY a.attribute_id ASC`,
		subscriptionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttributeSubscriptions(rows)
}

func queryDeleteSubscription(ctx context.Context, db executor, uuid string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM subscriptions WHERE uuid = $1`, uuid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryCreateValue(ctx context.Context, db executor, v *model.Value) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO sensor_values (attribute_subscription_id, value, timestamp)
		VALUES ($1, $2, $3)
		RETURNING id`,
		v.AttributeSubscriptionID, v.Value, v.Timestamp,
	).Scan(&v.ID)
}

func queryGetValues(ctx context.Context, db executor, attributeSubscriptionID int64, since *time.Time) ([]*model.Value, error) {
	query := `
		SELECT id, attribute_subscription_id, value, timestamp
		FROM sensor_values
		WHERE attribute_subscription_id = $1`
	args := []any{attributeSubscriptionID}

	if since != nil {
		query += ` AND timestamp > $2`
		args = append(args, *since)
	}
	query += ` ORDER BY timestamp ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanValues(rows)
}
