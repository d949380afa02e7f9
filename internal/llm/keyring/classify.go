package keyring

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrorKind buckets a provider error for rotation purposes.
type ErrorKind int

const (
	// KindNone means the error is not a provider credential problem.
	KindNone ErrorKind = iota
	// KindQuotaExhausted means the key has no quota left for the day.
	KindQuotaExhausted
	// KindRateLimited means the key is temporarily throttled and worth
	// retrying on the same slot after a backoff.
	KindRateLimited
	// KindFailed means the key is unusable for this session (revoked,
	// invalid, permission denied).
	KindFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindQuotaExhausted:
		return "quota_exhausted"
	case KindRateLimited:
		return "rate_limited"
	case KindFailed:
		return "failed"
	default:
		return "none"
	}
}

var quotaIndicators = []string{
	"quota",
	"resource_exhausted",
	"resource has been exhausted",
	"insufficient_quota",
	"exceeded your current quota",
	"billing",
	"daily limit",
	"free-models-per-day",
	"credits",
}

var rateLimitIndicators = []string{
	"rate limit",
	"rate_limit",
	"rate-limit",
	"too many requests",
	"429",
	"overloaded",
	"try again later",
	"please retry",
}

var authIndicators = []string{
	"api key",
	"api_key",
	"unauthorized",
	"invalid key",
	"permission denied",
	"401",
	"403",
	"authentication",
}

// Classify inspects an upstream error and decides how the current key slot
// should be treated. Quota wins over rate limiting because providers often
// phrase daily-quota rejections as 429s.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	msg := strings.ToLower(err.Error())

	for _, s := range quotaIndicators {
		if strings.Contains(msg, s) {
			return KindQuotaExhausted
		}
	}
	for _, s := range rateLimitIndicators {
		if strings.Contains(msg, s) {
			return KindRateLimited
		}
	}
	for _, s := range authIndicators {
		if strings.Contains(msg, s) {
			return KindFailed
		}
	}
	return KindFailed
}

// openRouterResetRe matches the reset timestamp OpenRouter embeds in its
// rate-limit error payloads, a millisecond epoch in single quotes.
var openRouterResetRe = regexp.MustCompile(`'X-RateLimit-Reset':\s*'(\d+)'`)

// ParseOpenRouterReset extracts the quota reset instant from an OpenRouter
// error message. Returns false when the message carries no reset header.
func ParseOpenRouterReset(errMsg string) (time.Time, bool) {
	m := openRouterResetRe.FindStringSubmatch(errMsg)
	if m == nil {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// ProviderForSlot infers which provider a key environment variable belongs
// to from its name. Unknown names fall back to "default" and use UTC days.
func ProviderForSlot(slotEnv string) string {
	name := strings.ToLower(slotEnv)
	switch {
	case strings.Contains(name, "openrouter"):
		return "openrouter"
	case strings.Contains(name, "google") || strings.Contains(name, "gemini"):
		return "google"
	case strings.Contains(name, "anthropic") || strings.Contains(name, "claude"):
		return "anthropic"
	case strings.Contains(name, "openai"):
		return "openai"
	default:
		return "default"
	}
}

// QuotaDay returns the calendar date string (YYYY-MM-DD) that quota
// accounting uses for the given provider at instant t. Google resets its
// free-tier quotas at midnight Pacific, so its day is computed in Pacific
// time with a coarse DST rule (UTC-7 from March through October, UTC-8
// otherwise). Everyone else resets on UTC days.
func QuotaDay(provider string, t time.Time) string {
	u := t.UTC()
	if provider == "google" {
		offset := -8
		if m := u.Month(); m >= time.March && m <= time.October {
			offset = -7
		}
		u = u.Add(time.Duration(offset) * time.Hour)
	}
	return u.Format("2006-01-02")
}
