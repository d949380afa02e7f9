package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobforge/internal/config"
	"jobforge/internal/llm/keyring"
	"jobforge/pkg/models"
	"jobforge/pkg/utils"
)

const (
	primarySlotA  = "CLIENTTEST_KEY"
	primarySlotB  = "CLIENTTEST_KEY_BACKUP"
	fallbackSlotA = "CLIENTTEST_FALLBACK_KEY"
)

// slotScript plays a provider bound to one API key: the scripted errors
// are consumed call by call, then every later call succeeds with out.
type slotScript struct {
	errs  []error
	out   string
	calls int
}

func (s *slotScript) Invoke(_ context.Context, _ string, _ []models.ChatMessage) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return s.out, nil
}

func (s *slotScript) Name() string { return "scripted" }

// newTestClient wires a client whose provider factory hands out scripted
// providers by API key and whose sleeps are recorded instead of slept.
func newTestClient(t *testing.T, scripts map[string]*slotScript, maxRetries int, sleeps *[]time.Duration) *Client {
	t.Helper()
	t.Setenv(primarySlotA, "pk-a")
	t.Setenv(primarySlotB, "pk-b")
	t.Setenv(fallbackSlotA, "fb-a")

	ctx := context.Background()
	primaryKeys, err := keyring.NewManager(ctx, primarySlotA, []string{primarySlotB}, nil, keyring.NewResetGate())
	require.NoError(t, err)
	fallbackKeys, err := keyring.NewManager(ctx, fallbackSlotA, nil, nil, keyring.NewResetGate())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LLM.Primary = config.ModelConfig{Provider: "gemini", Model: "primary-model", KeyEnv: primarySlotA}
	cfg.LLM.Fallback = config.ModelConfig{Provider: "claude", Model: "fallback-model", KeyEnv: fallbackSlotA}
	cfg.LLM.MaxRetries = maxRetries
	cfg.LLM.RetryDelay = 10 * time.Millisecond

	return &Client{
		cfg:      cfg,
		primary:  &modelRunner{model: cfg.LLM.Primary, keys: primaryKeys},
		fallback: &modelRunner{model: cfg.LLM.Fallback, keys: fallbackKeys},
		newProvider: func(_ context.Context, _ config.ModelConfig, apiKey string, _ int, _ float32) (Provider, error) {
			script, ok := scripts[apiKey]
			if !ok {
				return nil, errors.New("no script for key " + apiKey)
			}
			return script, nil
		},
		sleep: func(_ context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return nil
		},
		log: utils.GetLogger(),
	}
}

func TestClientRateLimitBackoff(t *testing.T) {
	var sleeps []time.Duration
	rl := errors.New("429 too many requests")
	scripts := map[string]*slotScript{
		"pk-a": {errs: []error{rl, rl}, out: "hello"},
	}
	c := newTestClient(t, scripts, 3, &sleeps)

	text, err := c.Invoke(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 3, scripts["pk-a"].calls)

	// Exponential backoff on the same slot: base, then doubled.
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, sleeps)
}

func TestClientFallsBackWhenStillThrottled(t *testing.T) {
	var sleeps []time.Duration
	rl := errors.New("429 too many requests")
	scripts := map[string]*slotScript{
		"pk-a": {errs: []error{rl, rl}, out: "primary recovered"},
		"pk-b": {out: "never reached"},
		"fb-a": {out: "from fallback"},
	}
	c := newTestClient(t, scripts, 2, &sleeps)

	// Still throttled after all retries: the error re-raises past the
	// primary pool so the fallback model gets its turn. The backup slot
	// is not tried; throttling says nothing about the other keys.
	text, err := c.Invoke(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "from fallback", text)
	assert.Equal(t, 2, scripts["pk-a"].calls)
	assert.Equal(t, 0, scripts["pk-b"].calls)
	assert.Len(t, sleeps, 1)
}

func TestClientThrottledSlotStaysInRotation(t *testing.T) {
	var sleeps []time.Duration
	rl := errors.New("429 too many requests")
	scripts := map[string]*slotScript{
		"pk-a": {errs: []error{rl, rl}, out: "primary recovered"},
		"pk-b": {out: "from backup"},
		"fb-a": {out: "from fallback"},
	}
	c := newTestClient(t, scripts, 2, &sleeps)

	text, err := c.Invoke(context.Background(), "prompt", nil)
	require.NoError(t, err)
	require.Equal(t, "from fallback", text)

	// The throttling was transient; the next call lands on the recovered
	// primary slot, not on a backup or the fallback model.
	text, err = c.Invoke(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "primary recovered", text)
}

func TestClientRotatesImmediatelyOnQuota(t *testing.T) {
	var sleeps []time.Duration
	scripts := map[string]*slotScript{
		"pk-a": {errs: []error{errors.New("exceeded your current quota")}},
		"pk-b": {out: "from backup"},
	}
	c := newTestClient(t, scripts, 3, &sleeps)

	text, err := c.Invoke(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "from backup", text)
	assert.Empty(t, sleeps) // quota never backs off

	// The exhausted slot is out for the day.
	assert.Contains(t, c.QuotaStatus(), primarySlotA)
}

func TestClientFallsBackWhenPrimaryExhausted(t *testing.T) {
	var sleeps []time.Duration
	scripts := map[string]*slotScript{
		"pk-a": {errs: []error{errors.New("401 unauthorized")}},
		"pk-b": {errs: []error{errors.New("401 unauthorized")}},
		"fb-a": {out: "from fallback"},
	}
	c := newTestClient(t, scripts, 3, &sleeps)

	text, err := c.Invoke(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "from fallback", text)
}

func TestClientExhaustionError(t *testing.T) {
	var sleeps []time.Duration
	scripts := map[string]*slotScript{
		"pk-a": {errs: []error{errors.New("401 unauthorized")}},
		"pk-b": {errs: []error{errors.New("exceeded your current quota")}},
		"fb-a": {errs: []error{errors.New("invalid key")}},
	}
	c := newTestClient(t, scripts, 3, &sleeps)

	_, err := c.Invoke(context.Background(), "prompt", nil)
	require.Error(t, err)

	var exhaustion *ExhaustionError
	require.ErrorAs(t, err, &exhaustion)
	assert.Error(t, exhaustion.PrimaryErr)
	assert.Error(t, exhaustion.FallbackErr)
	assert.Contains(t, err.Error(), "all LLM options exhausted")
}

func TestClientContextCancellation(t *testing.T) {
	var sleeps []time.Duration
	scripts := map[string]*slotScript{
		"pk-a": {out: "never reached"},
	}
	c := newTestClient(t, scripts, 3, &sleeps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Invoke(ctx, "prompt", nil)
	assert.Error(t, err)
}

func TestClientBackoffCap(t *testing.T) {
	var sleeps []time.Duration
	rl := errors.New("429 too many requests")
	scripts := map[string]*slotScript{
		"pk-a": {errs: []error{rl, rl, rl, rl}, out: "eventually"},
	}
	c := newTestClient(t, scripts, 5, &sleeps)
	c.cfg.LLM.RetryDelay = 20 * time.Second

	text, err := c.Invoke(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "eventually", text)

	require.Len(t, sleeps, 4)
	for _, d := range sleeps[1:] {
		assert.Equal(t, maxBackoff, d)
	}
}
