package keyring

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"jobforge/pkg/utils"
)

// ResetGate ensures expired quota entries are cleared at most once per
// calendar day per provider. Managers for the same provider share a gate
// so concurrent pipelines do not race the daily sweep.
type ResetGate struct {
	mu   sync.Mutex
	last map[string]string // provider -> last swept quota day
}

// NewResetGate returns an empty gate.
func NewResetGate() *ResetGate {
	return &ResetGate{last: make(map[string]string)}
}

// shouldSweep reports whether the provider has not yet been swept on the
// given quota day, and records the sweep.
func (g *ResetGate) shouldSweep(provider, day string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last[provider] == day {
		return false
	}
	g.last[provider] = day
	return true
}

// Manager rotates through a pool of API key slots for one provider. Each
// slot is the name of an environment variable holding a key. Failed slots
// are remembered for the session only; quota-exhausted slots are persisted
// with the quota day they ran out on and become usable again the next day.
type Manager struct {
	provider string
	slots    []string
	store    StateStore
	gate     *ResetGate

	mu     sync.Mutex
	failed map[string]bool
	quota  map[string]string // slot -> quota day exhausted on

	now func() time.Time
	log *logrus.Logger
}

// NewManager builds a manager for the given slot pool and loads persisted
// quota state. The provider is inferred from the primary slot name.
func NewManager(ctx context.Context, primary string, backups []string, store StateStore, gate *ResetGate) (*Manager, error) {
	if primary == "" {
		return nil, fmt.Errorf("primary key env name is required")
	}
	if gate == nil {
		gate = NewResetGate()
	}

	m := &Manager{
		provider: ProviderForSlot(primary),
		slots:    append([]string{primary}, backups...),
		store:    store,
		gate:     gate,
		failed:   make(map[string]bool),
		quota:    make(map[string]string),
		now:      time.Now,
		log:      utils.GetLogger(),
	}

	if store != nil {
		state, err := store.Load(ctx)
		if err != nil {
			m.log.WithError(err).Warn("Failed to load key rotation state, starting fresh")
		} else {
			for slot, day := range state.QuotaExhaustedKeys {
				m.quota[slot] = day
			}
		}
	}

	return m, nil
}

// SetNow overrides the clock, for tests.
func (m *Manager) SetNow(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Provider returns the inferred provider name for this pool.
func (m *Manager) Provider() string {
	return m.provider
}

// NextAvailableSlot returns the first slot that is not failed, not
// exhausted for the current quota day, and has a non-empty key in the
// environment. Expired quota entries are swept lazily, once per day.
func (m *Manager) NextAvailableSlot(ctx context.Context) (slot, key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	today := QuotaDay(m.provider, m.now())
	m.sweepExpiredLocked(ctx, today)

	for _, s := range m.slots {
		if m.failed[s] {
			continue
		}
		if day, ok := m.quota[s]; ok && day >= today {
			continue
		}
		val := os.Getenv(s)
		if val == "" {
			continue
		}
		return s, val, nil
	}

	return "", "", fmt.Errorf("no usable API key for %s: %d slot(s) failed, %d quota-exhausted",
		m.provider, len(m.failed), len(m.quota))
}

// sweepExpiredLocked drops quota entries from past days. Gated so the
// store is rewritten at most once per provider per day.
func (m *Manager) sweepExpiredLocked(ctx context.Context, today string) {
	if !m.gate.shouldSweep(m.provider, today) {
		return
	}

	changed := false
	for slot, day := range m.quota {
		if day < today {
			delete(m.quota, slot)
			changed = true
			m.log.WithFields(logrus.Fields{
				"provider": m.provider,
				"slot":     slot,
				"day":      day,
			}).Info("Quota day rolled over, key slot available again")
		}
	}
	if changed {
		m.persistLocked(ctx)
	}
}

// HandleError classifies an upstream error and updates slot state
// accordingly. Returns the classification so the caller can decide
// between backing off and rotating.
func (m *Manager) HandleError(ctx context.Context, slot string, err error) ErrorKind {
	kind := Classify(err)

	switch kind {
	case KindQuotaExhausted:
		m.MarkQuotaExhausted(ctx, slot, err)
	case KindFailed:
		m.MarkFailed(slot)
	}

	return kind
}

// MarkQuotaExhausted records that the slot has no quota left for the
// current day and persists the fact. OpenRouter errors that carry a reset
// timestamp pin the exhaustion to the day before the reset instant.
func (m *Manager) MarkQuotaExhausted(ctx context.Context, slot string, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	day := QuotaDay(m.provider, m.now())
	if m.provider == "openrouter" && cause != nil {
		if reset, ok := ParseOpenRouterReset(cause.Error()); ok {
			day = reset.AddDate(0, 0, -1).Format("2006-01-02")
		}
	}

	m.quota[slot] = day
	m.log.WithFields(logrus.Fields{
		"provider": m.provider,
		"slot":     slot,
		"day":      day,
	}).Warn("Key slot quota exhausted")

	m.persistLocked(ctx)
}

// MarkFailed removes the slot from rotation for the rest of the session.
func (m *Manager) MarkFailed(slot string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failed[slot] = true
	m.log.WithFields(logrus.Fields{
		"provider": m.provider,
		"slot":     slot,
	}).Warn("Key slot marked failed for this session")
}

// Reset clears session failure state. Persisted quota exhaustion is kept.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = make(map[string]bool)
}

// QuotaStatus returns a copy of the current quota bookkeeping, keyed by
// slot name.
func (m *Manager) QuotaStatus() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.quota))
	for slot, day := range m.quota {
		out[slot] = day
	}
	return out
}

// persistLocked writes this manager's slots into the shared state without
// clobbering entries owned by other managers on the same store.
func (m *Manager) persistLocked(ctx context.Context) {
	if m.store == nil {
		return
	}

	state, err := m.store.Load(ctx)
	if err != nil {
		state = NewState()
	}
	for _, slot := range m.slots {
		delete(state.QuotaExhaustedKeys, slot)
	}
	for slot, day := range m.quota {
		state.QuotaExhaustedKeys[slot] = day
	}
	state.LastUpdated = m.now().UTC().Format(time.RFC3339)

	if err := m.store.Save(ctx, state); err != nil {
		m.log.WithError(err).Warn("Failed to persist key rotation state")
	}
}
