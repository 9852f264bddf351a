// Package model defines the domain types for the senselog service.
package model

import "time"

// Token is a shared-secret credential issued to the SenseHel platform.
// Tokens are created and removed out-of-band by an administrator and are
// valid until deleted; the service only ever answers membership queries.
type Token struct {
	ID        int64     `json:"-"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// SensorAttribute is a catalog entry describing one measurable quantity,
// e.g. temperature. Entries are deduplicated by URI: the first subscription
// referencing a new URI creates the entry, later subscriptions reuse it and
// their description is ignored. Entries are never deleted by the service.
type SensorAttribute struct {
	ID          int64  `json:"-"`
	URI         string `json:"uri"`
	Description string `json:"description"`
}

// Subscription is a registration, keyed by an externally supplied UUID, for
// one or more attribute data feeds. The UUID doubles as the read capability:
// anyone who knows it may fetch the subscription.
type Subscription struct {
	ID        int64     `json:"-"`
	UUID      string    `json:"uuid"`
	CreatedAt time.Time `json:"-"`

	Attributes []*AttributeSubscription `json:"attributes"`
}

// AttributeSubscription binds a subscription to one catalog entry. The
// AttributeID is assigned by the SenseHel platform and is unique only within
// its owning subscription; two subscriptions may reuse the same number for
// unrelated attribute types. URI and Description are denormalized from the
// linked catalog entry for serialization.
type AttributeSubscription struct {
	ID              int64 `json:"-"`
	SubscriptionID  int64 `json:"-"`
	AttributeTypeID int64 `json:"-"`

	AttributeID int    `json:"id"`
	URI         string `json:"uri"`
	Description string `json:"description"`

	Values []*Value `json:"values"`
}

// Value is one timestamped measurement belonging to an attribute
// subscription. Values are immutable once stored and are only removed when
// their subscription is deleted.
type Value struct {
	ID                      int64 `json:"-"`
	AttributeSubscriptionID int64 `json:"-"`

	Timestamp Timestamp `json:"timestamp"`
	Value     Decimal   `json:"value"`
}
