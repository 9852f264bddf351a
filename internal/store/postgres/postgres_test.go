package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/sensehel/senselog/internal/model"
	"github.com/sensehel/senselog/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

const testUUID = "6c6a0e1c-2b0f-4a5e-9d2e-3a9d1d2b4f6a"

var attributeColumns = []string{"id", "uri", "description"}

var attributeSubscriptionColumns = []string{
	"id", "subscription_id", "attribute_type_id", "attribute_id", "uri", "description",
}

var valueColumns = []string{"id", "attribute_subscription_id", "value", "timestamp"}

func TestQueryCreateToken(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO tokens").WithArgs("tk-secret").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))

	tok := &model.Token{Token: "tk-secret"}
	if err := queryCreateToken(context.Background(), db, tok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.ID != 1 || !tok.CreatedAt.Equal(now) {
		t.Errorf("token not populated: %+v", tok)
	}
}

func TestQueryCreateToken_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("INSERT INTO tokens").WithArgs("tk-secret").
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := queryCreateToken(context.Background(), db, &model.Token{Token: "tk-secret"})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected store.ErrConflict, got %v", err)
	}
}

func TestQueryDeleteToken_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM tokens WHERE token = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteToken(context.Background(), db, "nonexistent"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryTokenExists(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("tk-secret").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("tk-wrong").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := queryTokenExists(context.Background(), db, "tk-secret")
	if err != nil || !ok {
		t.Fatalf("TokenExists(tk-secret) = %v, %v", ok, err)
	}
	ok, err = queryTokenExists(context.Background(), db, "tk-wrong")
	if err != nil || ok {
		t.Fatalf("TokenExists(tk-wrong) = %v, %v", ok, err)
	}
}

func TestQueryGetOrCreateAttribute_Creates(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("INSERT INTO sensor_attributes").WithArgs("urn:temp", "temperature").
		WillReturnRows(sqlmock.NewRows(attributeColumns).AddRow(7, "urn:temp", "temperature"))

	attr, err := queryGetOrCreateAttribute(context.Background(), db, "urn:temp", "temperature")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attr.ID != 7 || attr.URI != "urn:temp" {
		t.Errorf("got %+v", attr)
	}
}

func TestQueryGetOrCreateAttribute_ReusesExisting(t *testing.T) {
	db, mock := newMockDB(t)
	// ON CONFLICT DO NOTHING returns no row; the existing entry is re-read
	// and its stored description wins over the caller's.
	mock.ExpectQuery("INSERT INTO sensor_attributes").WithArgs("urn:temp", "other description").
		WillReturnRows(sqlmock.NewRows(attributeColumns))
	mock.ExpectQuery("SELECT id, uri, description FROM sensor_attributes WHERE uri = \\$1").
		WithArgs("urn:temp").
		WillReturnRows(sqlmock.NewRows(attributeColumns).AddRow(7, "urn:temp", "temperature"))

	attr, err := queryGetOrCreateAttribute(context.Background(), db, "urn:temp", "other description")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attr.ID != 7 || attr.Description != "temperature" {
		t.Errorf("got %+v", attr)
	}
}

func TestQueryCreateSubscription(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO subscriptions").WithArgs(testUUID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(3, now))

	sub := &model.Subscription{UUID: testUUID}
	if err := queryCreateSubscription(context.Background(), db, sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.ID != 3 {
		t.Errorf("id not populated: %+v", sub)
	}
}

func TestQueryCreateSubscription_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("INSERT INTO subscriptions").WithArgs(testUUID).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := queryCreateSubscription(context.Background(), db, &model.Subscription{UUID: testUUID})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected store.ErrConflict, got %v", err)
	}
}

func TestQueryGetSubscription(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, uuid, created_at FROM subscriptions WHERE uuid = \\$1").
		WithArgs(testUUID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "created_at"}).AddRow(3, testUUID, now))
	mock.ExpectQuery("SELECT a.id, .+ FROM attribute_subscriptions a").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(attributeSubscriptionColumns).
			AddRow(11, 3, 7, 1, "urn:temp", "temperature"))

	sub, err := queryGetSubscription(context.Background(), db, testUUID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.UUID != testUUID || len(sub.Attributes) != 1 {
		t.Fatalf("got %+v", sub)
	}
	attr := sub.Attributes[0]
	if attr.AttributeID != 1 || attr.URI != "urn:temp" || attr.Description != "temperature" {
		t.Errorf("got attribute %+v", attr)
	}
}

func TestQueryGetSubscription_NoAttributes(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, uuid, created_at FROM subscriptions WHERE uuid = \\$1").
		WithArgs(testUUID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "created_at"}).AddRow(3, testUUID, now))
	mock.ExpectQuery("SELECT a.id, .+ FROM attribute_subscriptions a").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(attributeSubscriptionColumns))

	sub, err := queryGetSubscription(context.Background(), db, testUUID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// An empty slice, not nil, so the JSON body carries "attributes":[].
	if sub.Attributes == nil || len(sub.Attributes) != 0 {
		t.Fatalf("attributes = %#v, want empty non-nil slice", sub.Attributes)
	}
}

func TestQueryGetSubscription_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT id, uuid, created_at FROM subscriptions WHERE uuid = \\$1").
		WithArgs("unknown").
		WillReturnError(sql.ErrNoRows)

	_, err := queryGetSubscription(context.Background(), db, "unknown")
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryDeleteSubscription(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM subscriptions WHERE uuid = \\$1").WithArgs(testUUID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryDeleteSubscription(context.Background(), db, testUUID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryDeleteSubscription_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM subscriptions WHERE uuid = \\$1").WithArgs("unknown").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteSubscription(context.Background(), db, "unknown"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryCreateValue(t *testing.T) {
	db, mock := newMockDB(t)
	ts := time.Date(2020, 2, 26, 12, 29, 5, 59173000, time.UTC)
	mock.ExpectQuery("INSERT INTO sensor_values").
		WithArgs(int64(11), "22.3", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(99))

	v := &model.Value{
		AttributeSubscriptionID: 11,
		Value:                   223,
		Timestamp:               model.NewTimestamp(ts),
	}
	if err := queryCreateValue(context.Background(), db, v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ID != 99 {
		t.Errorf("id not populated: %+v", v)
	}
}

func TestQueryGetValues(t *testing.T) {
	db, mock := newMockDB(t)
	ts := time.Date(2020, 2, 26, 12, 29, 5, 0, time.UTC)
	mock.ExpectQuery("SELECT id, attribute_subscription_id, value, timestamp\\s+FROM sensor_values\\s+WHERE attribute_subscription_id = \\$1\\s+ORDER BY timestamp ASC").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(valueColumns).
			AddRow(99, 11, []byte("22.3"), ts))

	values, err := queryGetValues(context.Background(), db, 11, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 1 {
		t.Fatalf("got %d values", len(values))
	}
	if values[0].Value.String() != "22.3" {
		t.Errorf("value = %s", values[0].Value)
	}
	if !values[0].Timestamp.Time().Equal(ts) {
		t.Errorf("timestamp = %v", values[0].Timestamp.Time())
	}
}

func TestQueryGetValues_SinceFilter(t *testing.T) {
	db, mock := newMockDB(t)
	since := time.Date(2020, 2, 26, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("AND timestamp > \\$2").
		WithArgs(int64(11), since).
		WillReturnRows(sqlmock.NewRows(valueColumns))

	values, err := queryGetValues(context.Background(), db, 11, &since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("got %d values, want 0", len(values))
	}
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO subscriptions").WithArgs(testUUID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(3, time.Now()))
	mock.ExpectCommit()

	s := &PostgresStore{db: db}
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.CreateSubscription(context.Background(), &model.Subscription{UUID: testUUID})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunInTransaction_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO subscriptions").WithArgs(testUUID).
		WillReturnError(&pq.Error{Code: uniqueViolation})
	mock.ExpectRollback()

	s := &PostgresStore{db: db}
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.CreateSubscription(context.Background(), &model.Subscription{UUID: testUUID})
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected store.ErrConflict, got %v", err)
	}
}
