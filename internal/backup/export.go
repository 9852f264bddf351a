package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sensehel/senselog/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version           string    `json:"version"`
	Type              string    `json:"type"`
	Timestamp         time.Time `json:"timestamp"`
	TokenCount        int       `json:"token_count"`
	AttributeCount    int       `json:"attribute_count"`
	SubscriptionCount int       `json:"subscription_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// exportedToken carries a token record including fields the API never
// serializes. Exports are for restore, so the raw token is included.
type exportedToken struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// exportedValue carries a value with its attribute subscription restored
// inline, since the public wire shape omits the linkage.
type exportedValue struct {
	Attribute int    `json:"attribute"`
	Timestamp string `json:"timestamp"`
	Value     string `json:"value"`
}

// exportedSubscription is one subscription with all its values embedded.
type exportedSubscription struct {
	UUID       string              `json:"uuid"`
	CreatedAt  time.Time           `json:"created_at"`
	Attributes []exportedAttribute `json:"attributes"`
}

type exportedAttribute struct {
	ID          int             `json:"id"`
	URI         string          `json:"uri"`
	Description string          `json:"description"`
	Values      []exportedValue `json:"values"`
}

// ExportJSONL writes all tokens, catalog attributes, and subscriptions
// (with their full value history) from the store as JSONL to w.
// Subscriptions are sorted by uuid.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	tokens, err := s.ListTokens(ctx)
	if err != nil {
		return fmt.Errorf("list tokens: %w", err)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Token < tokens[j].Token
	})

	attrs, err := s.ListAttributes(ctx)
	if err != nil {
		return fmt.Errorf("list attributes: %w", err)
	}

	subs, err := s.ListSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].UUID < subs[j].UUID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:           "1",
		Type:              "header",
		Timestamp:         time.Now().UTC(),
		TokenCount:        len(tokens),
		AttributeCount:    len(attrs),
		SubscriptionCount: len(subs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, t := range tokens {
		data := exportedToken{Token: t.Token, CreatedAt: t.CreatedAt}
		if err := enc.Encode(record{Type: "token", Data: data}); err != nil {
			return fmt.Errorf("encode token: %w", err)
		}
	}

	for _, a := range attrs {
		if err := enc.Encode(record{Type: "attribute", Data: a}); err != nil {
			return fmt.Errorf("encode attribute %s: %w", a.URI, err)
		}
	}

	for _, sub := range subs {
		out := exportedSubscription{
			UUID:       sub.UUID,
			CreatedAt:  sub.CreatedAt,
			Attributes: make([]exportedAttribute, 0, len(sub.Attributes)),
		}
		for _, attr := range sub.Attributes {
			values, err := s.GetValues(ctx, attr.ID, nil)
			if err != nil {
				return fmt.Errorf("get values for %s attribute %d: %w", sub.UUID, attr.AttributeID, err)
			}
			ea := exportedAttribute{
				ID:          attr.AttributeID,
				URI:         attr.URI,
				Description: attr.Description,
				Values:      make([]exportedValue, 0, len(values)),
			}
			for _, v := range values {
				ea.Values = append(ea.Values, exportedValue{
					Attribute: attr.AttributeID,
					Timestamp: v.Timestamp.String(),
					Value:     v.Value.String(),
				})
			}
			out.Attributes = append(out.Attributes, ea)
		}
		if err := enc.Encode(record{Type: "subscription", Data: out}); err != nil {
			return fmt.Errorf("encode subscription %s: %w", sub.UUID, err)
		}
	}

	return nil
}
