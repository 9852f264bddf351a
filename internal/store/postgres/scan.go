package postgres

import (
	"github.com/sensehel/senselog/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// rowIterator is the subset of *sql.Rows used by the multi-row scanners.
type rowIterator interface {
	scannable
	Next() bool
	Err() error
}

func scanToken(row scannable) (*model.Token, error) {
	var t model.Token
	if err := row.Scan(&t.ID, &t.Token, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTokens(rows rowIterator) ([]*model.Token, error) {
	var tokens []*model.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func scanAttribute(row scannable) (*model.SensorAttribute, error) {
	var a model.SensorAttribute
	if err := row.Scan(&a.ID, &a.URI, &a.Description); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAttributes(rows rowIterator) ([]*model.SensorAttribute, error) {
	var attrs []*model.SensorAttribute
	for rows.Next() {
		a, err := scanAttribute(rows)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

func scanSubscription(row scannable) (*model.Subscription, error) {
	var s model.Subscription
	if err := row.Scan(&s.ID, &s.UUID, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSubscriptions(rows rowIterator) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func scanAttributeSubscription(row scannable) (*model.AttributeSubscription, error) {
	var a model.AttributeSubscription
	err := row.Scan(
		&a.ID,
		&a.SubscriptionID,
		&a.AttributeTypeID,
		&a.AttributeID,
		&a.URI,
		&a.Description,
	)
	if err != nil {
		return nil, err
	}
	a.Values = []*model.Value{}
	return &a, nil
}

func scanAttributeSubscriptions(rows rowIterator) ([]*model.AttributeSubscription, error) {
	attrs := []*model.AttributeSubscription{}
	for rows.Next() {
		a, err := scanAttributeSubscription(rows)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

func scanValue(row scannable) (*model.Value, error) {
	var v model.Value
	if err := row.Scan(&v.ID, &v.AttributeSubscriptionID, &v.Value, &v.Timestamp); err != nil {
		return nil, err
	}
	return &v, nil
}

func scanValues(rows rowIterator) ([]*model.Value, error) {
	values := []*model.Value{}
	for rows.Next() {
		v, err := scanValue(rows)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
