package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"jobforge/internal/config"
	"jobforge/internal/llm/keyring"
	"jobforge/pkg/models"
	"jobforge/pkg/utils"
)

// maxBackoff caps the exponential backoff between rate-limit retries.
const maxBackoff = 30 * time.Second

// providerFactory builds a Provider for a model/key pair. Swappable in
// tests so no network client is constructed.
type providerFactory func(ctx context.Context, mc config.ModelConfig, apiKey string, maxTokens int, temperature float32) (Provider, error)

// modelRunner pairs one configured model with the key pool that serves it.
type modelRunner struct {
	model config.ModelConfig
	keys  *keyring.Manager
}

// Client is the retrying, key-rotating front door to the LLM providers.
// Every pipeline phase calls through here; phases never see a concrete
// provider or credential.
//
// Policy per call: take the next usable key slot for the primary model and
// invoke. On a rate limit, back off exponentially on the same slot up to
// the configured retry count; a slot still throttled after that re-raises
// without leaving rotation, since throttling is transient. On quota
// exhaustion or hard failure, rotate to the next slot and start the
// backoff count over. When the primary model runs out of slots or stays
// throttled, fall back once to the independently-configured fallback model
// with the same policy. If that fails too, surface an ExhaustionError
// carrying both causes.
type Client struct {
	cfg      *config.Config
	primary  *modelRunner
	fallback *modelRunner
	limiter  *rate.Limiter

	newProvider providerFactory
	sleep       func(ctx context.Context, d time.Duration) error
	log         *logrus.Logger
}

// NewClient builds a client from configuration. Both models' key pools
// share the given state store and reset gate so quota bookkeeping is
// consistent across concurrent pipeline runs.
func NewClient(ctx context.Context, cfg *config.Config, store keyring.StateStore, gate *keyring.ResetGate) (*Client, error) {
	primaryKeys, err := keyring.NewManager(ctx, cfg.LLM.Primary.KeyEnv, cfg.LLM.Primary.BackupKeyEnvs, store, gate)
	if err != nil {
		return nil, fmt.Errorf("failed to set up primary key pool: %w", err)
	}
	fallbackKeys, err := keyring.NewManager(ctx, cfg.LLM.Fallback.KeyEnv, cfg.LLM.Fallback.BackupKeyEnvs, store, gate)
	if err != nil {
		return nil, fmt.Errorf("failed to set up fallback key pool: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.LLM.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.LLM.RateLimit)/60.0), 1)
	}

	return &Client{
		cfg:      cfg,
		primary:  &modelRunner{model: cfg.LLM.Primary, keys: primaryKeys},
		fallback: &modelRunner{model: cfg.LLM.Fallback, keys: fallbackKeys},
		limiter:  limiter,
		newProvider: func(ctx context.Context, mc config.ModelConfig, apiKey string, maxTokens int, temperature float32) (Provider, error) {
			return NewProvider(ctx, mc, apiKey, maxTokens, temperature)
		},
		sleep: sleepCtx,
		log:   utils.GetLogger(),
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Invoke runs one prompt through the primary model, falling back once to
// the fallback model when the primary is exhausted.
func (c *Client) Invoke(ctx context.Context, prompt string, history []models.ChatMessage) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait cancelled: %w", err)
		}
	}

	text, primaryErr := c.runModel(ctx, c.primary, prompt, history)
	if primaryErr == nil {
		return text, nil
	}

	c.log.WithFields(logrus.Fields{
		"model": c.primary.model.Model,
		"error": primaryErr.Error(),
	}).Warn("Primary model exhausted, trying fallback")

	text, fallbackErr := c.runModel(ctx, c.fallback, prompt, history)
	if fallbackErr == nil {
		return text, nil
	}

	return "", &ExhaustionError{PrimaryErr: primaryErr, FallbackErr: fallbackErr}
}

// runModel rotates through the model's key slots until one call succeeds
// or the pool is empty. Each rotation resets the backoff counter.
func (c *Client) runModel(ctx context.Context, r *modelRunner, prompt string, history []models.ChatMessage) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		slot, key, err := r.keys.NextAvailableSlot(ctx)
		if err != nil {
			return "", err
		}

		provider, err := c.newProvider(ctx, r.model, key, c.cfg.LLM.MaxTokens, c.cfg.LLM.Temperature)
		if err != nil {
			r.keys.MarkFailed(slot)
			continue
		}

		text, rotate, err := c.invokeSlot(ctx, r, provider, slot, prompt, history)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil || !rotate {
			return "", err
		}
		// Slot state was already updated; rotate to the next one.
	}
}

// invokeSlot calls one provider on one slot, absorbing rate limits with
// exponential backoff up to the configured retry count. rotate reports
// whether the caller should move to the next slot: true when this slot was
// taken out of rotation (quota, auth), false when the error should
// propagate to the fallback policy. Rate limiting is transient and never
// benches the slot; a slot still throttled after all retries re-raises so
// the fallback model gets its turn, and the slot stays usable later.
func (c *Client) invokeSlot(ctx context.Context, r *modelRunner, provider Provider, slot, prompt string, history []models.ChatMessage) (text string, rotate bool, err error) {
	for attempt := 0; ; attempt++ {
		text, err := provider.Invoke(ctx, prompt, history)
		if err == nil {
			return text, false, nil
		}

		kind := r.keys.HandleError(ctx, slot, err)
		c.log.WithFields(logrus.Fields{
			"model":   r.model.Model,
			"slot":    slot,
			"kind":    kind.String(),
			"attempt": attempt,
			"error":   utils.Truncate(err.Error(), 200),
		}).Warn("LLM call failed")

		if kind != keyring.KindRateLimited {
			return "", true, err
		}
		if attempt+1 >= c.cfg.LLM.MaxRetries {
			return "", false, fmt.Errorf("slot %s still rate limited after %d attempts: %w", slot, attempt+1, err)
		}

		delay := c.cfg.LLM.RetryDelay * (1 << attempt)
		if delay > maxBackoff {
			delay = maxBackoff
		}
		if err := c.sleep(ctx, delay); err != nil {
			return "", false, err
		}
	}
}

// QuotaStatus reports persisted quota exhaustion for both key pools,
// keyed by slot name. Used by the health endpoint.
func (c *Client) QuotaStatus() map[string]string {
	out := c.primary.keys.QuotaStatus()
	for slot, day := range c.fallback.keys.QuotaStatus() {
		out[slot] = day
	}
	return out
}
