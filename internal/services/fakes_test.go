package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rtb-12/StorySentinel-sub000/internal/data/repos"
	"github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/story"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/yakoa"
)

type fakeYakoa struct {
	mu          sync.Mutex
	registerErr error
	registered  []domain.RegistrationPayload
	tokens      map[string]*yakoa.Token
	getCalls    int
	getErrFor   map[string]error
}

func (f *fakeYakoa) RegisterToken(_ context.Context, payload domain.RegistrationPayload) (*yakoa.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, payload)
	return &yakoa.Token{ID: payload.ID, CreatorID: payload.CreatorID}, nil
}

func (f *fakeYakoa) GetToken(_ context.Context, tokenID string) (*yakoa.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if err := f.getErrFor[tokenID]; err != nil {
		return nil, err
	}
	if tok, ok := f.tokens[tokenID]; ok {
		return tok, nil
	}
	return &yakoa.Token{ID: tokenID, Infringements: &yakoa.Infringements{Status: "succeeded"}}, nil
}

type fakeStory struct {
	assets   map[string]*story.IPAsset
	disputes map[string]*story.Dispute
}

func (f *fakeStory) GetIPAsset(_ context.Context, ipID string) (*story.IPAsset, error) {
	if a, ok := f.assets[ipID]; ok {
		return a, nil
	}
	return nil, story.ErrNotFound
}

func (f *fakeStory) GetDispute(_ context.Context, id string) (*story.Dispute, error) {
	if d, ok := f.disputes[id]; ok {
		return d, nil
	}
	return nil, story.ErrNotFound
}

// memCache mirrors the redis cache contract without a server.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Ping(context.Context) error { return nil }

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) Close() error { return nil }

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// memAssets and memAlerts back the concurrent refresh tests, where an
// in-memory SQLite database would serialize on table locks.
type memAssets struct {
	mu     sync.Mutex
	assets map[string]*domain.IPAsset
}

func (m *memAssets) Upsert(_ context.Context, _ *gorm.DB, a *domain.IPAsset) (*domain.IPAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[a.AssetID] = a
	return a, nil
}

func (m *memAssets) GetByAssetID(_ context.Context, _ *gorm.DB, id string) (*domain.IPAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.assets[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", repos.ErrAssetNotFound, id)
}

func (m *memAssets) ListByCreator(context.Context, *gorm.DB, string, int) ([]*domain.IPAsset, error) {
	return nil, errors.New("not implemented")
}

func (m *memAssets) UpdateStatus(context.Context, *gorm.DB, string, string, string, string) error {
	return nil
}

type memAlerts struct {
	mu       sync.Mutex
	upserted int
}

func (m *memAlerts) UpsertBySource(_ context.Context, _ *gorm.DB, alerts []*domain.InfringementAlert) ([]*domain.InfringementAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted += len(alerts)
	return alerts, nil
}

func (m *memAlerts) GetByID(context.Context, *gorm.DB, uuid.UUID) (*domain.InfringementAlert, error) {
	return nil, repos.ErrAlertNotFound
}

func (m *memAlerts) List(context.Context, *gorm.DB, repos.AlertFilter) ([]*domain.InfringementAlert, error) {
	return nil, nil
}

func (m *memAlerts) UpdateStatus(context.Context, *gorm.DB, uuid.UUID, string) error {
	return nil
}
