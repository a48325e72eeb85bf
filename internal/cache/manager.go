package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/place-analyzer/internal/config"
)

// Manager coordinates the two tiers. Reads check the local LRU first and fall
// through to the blob store, repopulating the LRU on a second-tier hit. Store
// failures are logged and treated as misses so a broken cache never blocks an
// analysis.
type Manager struct {
	local *LRU
	store BlobStore
	cfg   config.CacheConfig
}

// NewManager wires the local tier and the given blob store. A nil store
// disables the second tier.
func NewManager(store BlobStore, cfg config.CacheConfig) *Manager {
	return &Manager{
		local: NewLRU(cfg.LocalCapacity, cfg.LocalTTL),
		store: store,
		cfg:   cfg,
	}
}

// Get returns the cached payload for key, or false on a miss from both tiers.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool) {
	if value, ok := m.local.Get(key); ok {
		log.Debug().Str("key", key).Msg("Cache hit in local tier")
		return value, true
	}

	if m.store == nil {
		return nil, false
	}

	value, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("Shared cache read failed, treating as miss")
		}
		return nil, false
	}

	log.Debug().Str("key", key).Msg("Cache hit in shared tier")
	m.local.Add(key, value, m.cfg.LocalTTL)
	return value, true
}

// Put stores the payload in both tiers with a confidence-tiered TTL.
func (m *Manager) Put(ctx context.Context, key string, value []byte, confidence float64) {
	ttl := m.TTLFor(confidence)
	m.local.Add(key, value, ttl)

	if m.store == nil {
		return
	}
	if err := m.store.Set(ctx, key, value, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Shared cache write failed, entry kept locally only")
		return
	}
	log.Debug().Str("key", key).Dur("ttl", ttl).Float64("confidence", confidence).Msg("Cached analysis result")
}

// Invalidate removes the key from both tiers.
func (m *Manager) Invalidate(ctx context.Context, key string) {
	m.local.Remove(key)
	if m.store == nil {
		return
	}
	if err := m.store.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Shared cache delete failed")
	}
}

// TTLFor maps a final confidence score to its expiry tier. Low-confidence
// results expire quickly so a later re-analysis gets a chance to improve them.
func (m *Manager) TTLFor(confidence float64) time.Duration {
	switch {
	case confidence < m.cfg.LowThreshold:
		return m.cfg.LowTTL
	case confidence < m.cfg.HighThreshold:
		return m.cfg.MidTTL
	default:
		return m.cfg.HighTTL
	}
}
