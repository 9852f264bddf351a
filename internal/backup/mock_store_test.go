package backup

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/sensehel/senselog/internal/model"
	"github.com/sensehel/senselog/internal/store"
)

// mockStore is an in-memory store.Store for backup tests. Only the read
// paths the exporter uses are fully wired; writes mutate the maps directly.
type mockStore struct {
	tokens map[string]*model.Token
	attrs  map[string]*model.SensorAttribute
	subs   map[string]*model.Subscription
	values map[int64][]*model.Value
}

func newMockStore() *mockStore {
	return &mockStore{
		tokens: make(map[string]*model.Token),
		attrs:  make(map[string]*model.SensorAttribute),
		subs:   make(map[string]*model.Subscription),
		values: make(map[int64][]*model.Value),
	}
}

func (m *mockStore) CreateToken(_ context.Context, t *model.Token) error {
	m.tokens[t.Token] = t
	return nil
}

func (m *mockStore) DeleteToken(_ context.Context, token string) error {
	if _, ok := m.tokens[token]; !ok {
		return sql.ErrNoRows
	}
	delete(m.tokens, token)
	return nil
}

func (m *mockStore) ListTokens(_ context.Context) ([]*model.Token, error) {
	var out []*model.Token
	for _, t := range m.tokens {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockStore) TokenExists(_ context.Context, token string) (bool, error) {
	_, ok := m.tokens[token]
	return ok, nil
}

func (m *mockStore) GetOrCreateAttribute(_ context.Context, uri, description string) (*model.SensorAttribute, error) {
	if a, ok := m.attrs[uri]; ok {
		return a, nil
	}
	a := &model.SensorAttribute{ID: int64(len(m.attrs) + 1), URI: uri, Description: description}
	m.attrs[uri] = a
	return a, nil
}

func (m *mockStore) ListAttributes(_ context.Context) ([]*model.SensorAttribute, error) {
	var out []*model.SensorAttribute
	for _, a := range m.attrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out, nil
}

func (m *mockStore) CreateSubscription(_ context.Context, sub *model.Subscription) error {
	m.subs[sub.UUID] = sub
	return nil
}

func (m *mockStore) CreateAttributeSubscription(_ context.Context, _ *model.AttributeSubscription) error {
	return nil
}

func (m *mockStore) GetSubscription(_ context.Context, uuid string) (*model.Subscription, error) {
	sub, ok := m.subs[uuid]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return sub, nil
}

func (m *mockStore) ListSubscriptions(_ context.Context) ([]*model.Subscription, error) {
	var out []*model.Subscription
	for _, sub := range m.subs {
		out = append(out, sub)
	}
	return out, nil
}

func (m *mockStore) DeleteSubscription(_ context.Context, uuid string) error {
	if _, ok := m.subs[uuid]; !ok {
		return sql.ErrNoRows
	}
	delete(m.subs, uuid)
	return nil
}

func (m *mockStore) CreateValue(_ context.Context, v *model.Value) error {
	m.values[v.AttributeSubscriptionID] = append(m.values[v.AttributeSubscriptionID], v)
	return nil
}

func (m *mockStore) GetValues(_ context.Context, attrSubID int64, since *time.Time) ([]*model.Value, error) {
	out := []*model.Value{}
	for _, v := range m.values[attrSubID] {
		if since != nil && !v.Timestamp.After(*since) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }

var _ store.Store = (*mockStore)(nil)
