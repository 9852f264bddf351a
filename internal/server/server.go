// Package server implements the HTTP API of the senselog service.
package server

import (
	"context"
	"log/slog"

	"github.com/sensehel/senselog/internal/events"
	"github.com/sensehel/senselog/internal/metric"
	"github.com/sensehel/senselog/internal/store"
)

// LogServer handles the SenseHel platform's subscription and value traffic.
type LogServer struct {
	store     store.Store
	publisher events.Publisher
	metrics   *metric.Metrics
}

// NewLogServer returns a new LogServer backed by the given store and publisher.
func NewLogServer(s store.Store, p events.Publisher, m *metric.Metrics) *LogServer {
	return &LogServer{
		store:     s,
		publisher: p,
		metrics:   m,
	}
}

// publish emits an event best-effort; failures are logged but never surfaced
// to the platform.
func (s *LogServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// inputError indicates invalid input from the platform; handlers map it to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
