package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sensehel/senselog/internal/events"
	"github.com/sensehel/senselog/internal/model"
	"github.com/sensehel/senselog/internal/store"
)

// submitValueInput is one measurement of a submission. Attribute is the
// platform's numeric attribute id within the target subscription.
type submitValueInput struct {
	Attribute int             `json:"attribute"`
	Timestamp model.Timestamp `json:"timestamp"`
	Value     model.Decimal   `json:"value"`
}

// submitValuesInput is the body of POST /v1/values.
type submitValuesInput struct {
	UUID      string             `json:"uuid"`
	Values    []submitValueInput `json:"values"`
	AuthToken string             `json:"auth_token"`
}

// submitValuesResponse echoes the accepted values back to the platform.
type submitValuesResponse struct {
	UUID   string             `json:"uuid"`
	Values []submitValueInput `json:"values"`
}

// unknownAttributeError marks a submission referencing an attribute id the
// subscription never registered. Handlers map it to 404.
type unknownAttributeError struct {
	uuid      string
	attribute int
}

func (e *unknownAttributeError) Error() string {
	return fmt.Sprintf("attribute %d is not subscribed under %s", e.attribute, e.uuid)
}

// handleSubmitValues handles POST /v1/values.
func (s *LogServer) handleSubmitValues(w http.ResponseWriter, r *http.Request) {
	var in submitValuesInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if !s.requireAuth(w, r, in.AuthToken) {
		return
	}

	if err := s.submitValues(r.Context(), in); err != nil {
		var uae *unknownAttributeError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "subscription not found")
		case errors.As(err, &uae):
			writeError(w, http.StatusNotFound, uae.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to submit values")
		}
		return
	}

	s.metrics.ValuesIngested.Add(float64(len(in.Values)))

	values := in.Values
	if values == nil {
		values = []submitValueInput{}
	}
	writeJSON(w, http.StatusCreated, submitValuesResponse{
		UUID:   in.UUID,
		Values: values,
	})
}

// submitValues stores all measurements of one submission in a single
// transaction: a submission naming an unknown subscription or attribute id
// commits nothing.
func (s *LogServer) submitValues(ctx context.Context, in submitValuesInput) error {
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		sub, err := tx.GetSubscription(ctx, in.UUID)
		if err != nil {
			return err
		}

		attrsByID := make(map[int]*model.AttributeSubscription, len(sub.Attributes))
		for _, attr := range sub.Attributes {
			attrsByID[attr.AttributeID] = attr
		}

		for _, v := range in.Values {
			attr, ok := attrsByID[v.Attribute]
			if !ok {
				return &unknownAttributeError{uuid: in.UUID, attribute: v.Attribute}
			}
			value := &model.Value{
				AttributeSubscriptionID: attr.ID,
				Timestamp:               v.Timestamp,
				Value:                   v.Value,
			}
			if err := tx.CreateValue(ctx, value); err != nil {
				return fmt.Errorf("create value for attribute %d: %w", v.Attribute, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	event := events.ValuesSubmitted{UUID: in.UUID, Values: make([]events.SubmittedValue, 0, len(in.Values))}
	for _, v := range in.Values {
		event.Values = append(event.Values, events.SubmittedValue{
			Attribute: v.Attribute,
			Timestamp: v.Timestamp,
			Value:     v.Value,
		})
	}
	s.publish(ctx, events.TopicValuesSubmitted, event)

	return nil
}
