// Package events defines the notification topics the service emits and the
// Publisher interface used to emit them. Publishing is best-effort: report
// consumers (dashboards, alerting) may listen, but no domain operation
// depends on delivery.
package events

import (
	"context"

	"github.com/sensehel/senselog/internal/model"
)

// Event topic constants
const (
	TopicSubscriptionCreated = "senselog.subscription.created"
	TopicSubscriptionDeleted = "senselog.subscription.deleted"
	TopicValuesSubmitted     = "senselog.values.submitted"
)

// Event types

type SubscriptionCreated struct {
	Subscription *model.Subscription `json:"subscription"`
}

type SubscriptionDeleted struct {
	UUID string `json:"uuid"`
}

type SubmittedValue struct {
	Attribute int             `json:"attribute"`
	Timestamp model.Timestamp `json:"timestamp"`
	Value     model.Decimal   `json:"value"`
}

type ValuesSubmitted struct {
	UUID   string           `json:"uuid"`
	Values []SubmittedValue `json:"values"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
