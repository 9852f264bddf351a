package store

import (
	"context"
	"errors"
	"time"

	"github.com/sensehel/senselog/internal/model"
)

// ErrConflict is returned when an insert violates a uniqueness constraint,
// e.g. creating a subscription with a uuid that already exists. Not-found is
// reported as sql.ErrNoRows throughout.
var ErrConflict = errors.New("store: conflict")

// Store defines the persistence interface for the senselog service.
type Store interface {
	// Tokens
	CreateToken(ctx context.Context, token *model.Token) error
	DeleteToken(ctx context.Context, token string) error
	ListTokens(ctx context.Context) ([]*model.Token, error)
	TokenExists(ctx context.Context, token string) (bool, error)

	// Attribute catalog. GetOrCreateAttribute is atomic under concurrent
	// first-time use of the same URI: the uri unique index decides the
	// winner and everyone else reuses that row, keeping its description.
	GetOrCreateAttribute(ctx context.Context, uri, description string) (*model.SensorAttribute, error)
	ListAttributes(ctx context.Context) ([]*model.SensorAttribute, error)

	// Subscriptions. CreateSubscription returns ErrConflict on a duplicate
	// uuid. GetSubscription loads attribute subscriptions but not values;
	// DeleteSubscription cascades to attribute subscriptions and values.
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	CreateAttributeSubscription(ctx context.Context, attr *model.AttributeSubscription) error
	GetSubscription(ctx context.Context, uuid string) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]*model.Subscription, error)
	DeleteSubscription(ctx context.Context, uuid string) error

	// Values. GetValues returns values for one attribute subscription,
	// ascending by timestamp, optionally restricted to timestamp > since.
	CreateValue(ctx context.Context, value *model.Value) error
	GetValues(ctx context.Context, attributeSubscriptionID int64, since *time.Time) ([]*model.Value, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
