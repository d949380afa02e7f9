package keyring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil error", nil, KindNone},
		{"quota wording", errors.New("429 RESOURCE_EXHAUSTED: quota exceeded for this project"), KindQuotaExhausted},
		{"openrouter daily free tier", errors.New("Rate limit exceeded: free-models-per-day"), KindQuotaExhausted},
		{"billing problem", errors.New("your billing account is suspended"), KindQuotaExhausted},
		{"plain 429", errors.New("HTTP 429 Too Many Requests"), KindRateLimited},
		{"overloaded", errors.New("the model is overloaded, please retry"), KindRateLimited},
		{"invalid key", errors.New("401 Unauthorized: invalid key provided"), KindFailed},
		{"permission denied", errors.New("403 permission denied"), KindFailed},
		{"unknown error defaults to failed", errors.New("connection reset by peer"), KindFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}

	t.Run("quota wins over rate limit wording", func(t *testing.T) {
		err := errors.New("429 too many requests: you have exceeded your current quota")
		assert.Equal(t, KindQuotaExhausted, Classify(err))
	})
}

func TestParseOpenRouterReset(t *testing.T) {
	t.Run("extracts the millisecond epoch", func(t *testing.T) {
		msg := "Rate limit exceeded, headers: {'X-RateLimit-Limit': '50', 'X-RateLimit-Reset': '1735689600000'}"
		reset, ok := ParseOpenRouterReset(msg)
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), reset)
	})

	t.Run("no header present", func(t *testing.T) {
		_, ok := ParseOpenRouterReset("rate limit exceeded, try again later")
		assert.False(t, ok)
	})
}

func TestProviderForSlot(t *testing.T) {
	assert.Equal(t, "openrouter", ProviderForSlot("OPENROUTER_API_KEY"))
	assert.Equal(t, "google", ProviderForSlot("GOOGLE_API_KEY_BACKUP2"))
	assert.Equal(t, "google", ProviderForSlot("GEMINI_KEY"))
	assert.Equal(t, "anthropic", ProviderForSlot("ANTHROPIC_API_KEY"))
	assert.Equal(t, "anthropic", ProviderForSlot("CLAUDE_KEY"))
	assert.Equal(t, "openai", ProviderForSlot("OPENAI_API_KEY"))
	assert.Equal(t, "default", ProviderForSlot("SOME_OTHER_KEY"))
}

func TestQuotaDay(t *testing.T) {
	t.Run("non-google providers use UTC days", func(t *testing.T) {
		at := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)
		assert.Equal(t, "2025-06-15", QuotaDay("anthropic", at))
		assert.Equal(t, "2025-06-15", QuotaDay("default", at))
	})

	t.Run("google day rolls at midnight Pacific in summer", func(t *testing.T) {
		// 06:30 UTC on June 15 is 23:30 June 14 at UTC-7.
		at := time.Date(2025, 6, 15, 6, 30, 0, 0, time.UTC)
		assert.Equal(t, "2025-06-14", QuotaDay("google", at))
		assert.Equal(t, "2025-06-15", QuotaDay("anthropic", at))
	})

	t.Run("google uses UTC-8 outside March through October", func(t *testing.T) {
		// 07:30 UTC on January 15 is 23:30 January 14 at UTC-8.
		at := time.Date(2025, 1, 15, 7, 30, 0, 0, time.UTC)
		assert.Equal(t, "2025-01-14", QuotaDay("google", at))
	})
}
