package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sensehel/senselog/internal/events"
	"github.com/sensehel/senselog/internal/model"
	"github.com/sensehel/senselog/internal/store"
)

// subscriptionAttributeInput is one attribute entry of a creation request.
// ID is the platform-assigned numeric id, scoped to this subscription.
type subscriptionAttributeInput struct {
	ID          int    `json:"id"`
	URI         string `json:"uri"`
	Description string `json:"description"`
}

// createSubscriptionInput is the body of POST /v1/subscriptions.
type createSubscriptionInput struct {
	UUID       string                       `json:"uuid"`
	Attributes []subscriptionAttributeInput `json:"attributes"`
	AuthToken  string                       `json:"auth_token"`
}

// handleCreateSubscription handles POST /v1/subscriptions.
func (s *LogServer) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var in createSubscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !s.requireAuth(w, r, in.AuthToken) {
		return
	}

	sub, err := s.createSubscription(r.Context(), in)
	if err != nil {
		var ie inputError
		switch {
		case errors.As(err, &ie):
			writeError(w, http.StatusBadRequest, ie.Error())
		case errors.Is(err, store.ErrConflict):
			writeError(w, http.StatusConflict, "subscription "+in.UUID+" already exists")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create subscription")
		}
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

// createSubscription validates the request and persists the subscription with
// its attribute subscriptions in one transaction, creating catalog entries for
// unseen attribute URIs along the way. Returns store.ErrConflict when the
// uuid is already registered.
func (s *LogServer) createSubscription(ctx context.Context, in createSubscriptionInput) (*model.Subscription, error) {
	sub := &model.Subscription{
		UUID:       in.UUID,
		Attributes: make([]*model.AttributeSubscription, 0, len(in.Attributes)),
	}
	for _, a := range in.Attributes {
		sub.Attributes = append(sub.Attributes, &model.AttributeSubscription{
			AttributeID: a.ID,
			URI:         a.URI,
			Description: a.Description,
		})
	}

	if err := model.ValidateSubscription(sub); err != nil {
		return nil, inputError(err.Error())
	}

	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateSubscription(ctx, sub); err != nil {
			return err
		}
		for _, attr := range sub.Attributes {
			// First writer wins: an existing catalog entry keeps its stored
			// description and the one supplied here is ignored.
			attrType, err := tx.GetOrCreateAttribute(ctx, attr.URI, attr.Description)
			if err != nil {
				return fmt.Errorf("resolve attribute %q: %w", attr.URI, err)
			}
			attr.SubscriptionID = sub.ID
			attr.AttributeTypeID = attrType.ID
			attr.URI = attrType.URI
			attr.Description = attrType.Description
			attr.Values = []*model.Value{}

			if err := tx.CreateAttributeSubscription(ctx, attr); err != nil {
				return fmt.Errorf("create attribute subscription %d: %w", attr.AttributeID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicSubscriptionCreated, events.SubscriptionCreated{Subscription: sub})

	return sub, nil
}

// handleGetSubscription handles GET /v1/subscriptions/{uuid}. No auth: any
// caller who knows the uuid may read. The optional values_timestamp_gt query
// parameter restricts values to timestamps strictly after it.
func (s *LogServer) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")
	if uuid == "" {
		writeError(w, http.StatusBadRequest, "uuid is required")
		return
	}

	var since *time.Time
	if v := r.URL.Query().Get("values_timestamp_gt"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid values_timestamp_gt")
			return
		}
		since = &t
	}

	sub, err := s.store.GetSubscription(r.Context(), uuid)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get subscription")
		return
	}

	for _, attr := range sub.Attributes {
		values, err := s.store.GetValues(r.Context(), attr.ID, since)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to get values")
			return
		}
		attr.Values = values
	}

	writeJSON(w, http.StatusOK, sub)
}

// unsubscribeInput is the body of POST /v1/subscriptions/unsubscribe.
type unsubscribeInput struct {
	UUID      string `json:"uuid"`
	AuthToken string `json:"auth_token"`
}

// handleUnsubscribe handles POST /v1/subscriptions/unsubscribe. Deleting the
// subscription cascades to its attribute subscriptions and their values;
// catalog entries stay behind for future subscriptions.
func (s *LogServer) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var in unsubscribeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !s.requireAuth(w, r, in.AuthToken) {
		return
	}

	if err := s.store.DeleteSubscription(r.Context(), in.UUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}

	s.publish(r.Context(), events.TopicSubscriptionDeleted, events.SubscriptionDeleted{UUID: in.UUID})

	w.WriteHeader(http.StatusNoContent)
}
