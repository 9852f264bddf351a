package model

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateUUID checks that s is a well-formed RFC 4122 UUID. Subscription
// identifiers are supplied by the platform and must parse on create;
// lookups treat them as opaque keys instead.
func ValidateUUID(s string) error {
	if s == "" {
		return fmt.Errorf("uuid is required")
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("invalid uuid %q", s)
	}
	return nil
}

// ValidateSubscription checks a subscription before it is persisted.
func ValidateSubscription(sub *Subscription) error {
	if err := ValidateUUID(sub.UUID); err != nil {
		return err
	}
	seen := make(map[int]struct{}, len(sub.Attributes))
	for _, attr := range sub.Attributes {
		if attr.URI == "" {
			return fmt.Errorf("attribute %d: uri is required", attr.AttributeID)
		}
		if _, dup := seen[attr.AttributeID]; dup {
			return fmt.Errorf("duplicate attribute id %d", attr.AttributeID)
		}
		seen[attr.AttributeID] = struct{}{}
	}
	return nil
}
