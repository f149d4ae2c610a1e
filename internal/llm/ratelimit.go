package llm

import (
	"context"
	"sync"
	"time"

	"github.com/rootagent/rmk/internal/config"
	rmkerr "github.com/rootagent/rmk/internal/errors"
	"github.com/rootagent/rmk/internal/logging"
	"golang.org/x/time/rate"
)

// TokenEstimator estimates token counts for rate limiting
type TokenEstimator struct{}

// NewTokenEstimator creates a new token estimator
func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{}
}

// EstimateTokens uses chars/4 plus a 20% buffer.
func (e *TokenEstimator) EstimateTokens(text string) int {
	baseEstimate := len(text) / 4
	return int(float64(baseEstimate) * 1.2)
}

// EstimateMessages estimates tokens for a slice of messages, including tool
// call arguments and a small per-message overhead.
func (e *TokenEstimator) EstimateMessages(messages []Message) int {
	total := 0
	for _, msg := range messages {
		total += 4
		total += e.EstimateTokens(msg.Content)
		for _, tc := range msg.ToolCalls {
			total += e.EstimateTokens(tc.Name) + e.EstimateTokens(tc.Arguments)
		}
	}
	return total
}

// WaitInfo describes one throttling pause.
type WaitInfo struct {
	Duration time.Duration
	Reason   string
}

// WaitCallback is invoked instead of sleeping when a pause is needed. It must
// block for the duration or return early with ctx's error.
type WaitCallback func(ctx context.Context, info WaitInfo) error

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	limiter *rate.Limiter
	mu      sync.Mutex
	onWait  WaitCallback
}

// NewTokenBucket creates a limiter refilling tokensPerMinute, with a burst of
// ten seconds worth (at least 1000).
func NewTokenBucket(tokensPerMinute int) *TokenBucket {
	tokensPerSecond := float64(tokensPerMinute) / 60.0
	burstSize := tokensPerMinute / 6
	if burstSize < 1000 {
		burstSize = 1000
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(tokensPerSecond), burstSize),
	}
}

// SetWaitCallback sets a callback to be invoked when waiting for tokens
func (tb *TokenBucket) SetWaitCallback(cb WaitCallback) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.onWait = cb
}

// Wait blocks until n tokens are available. Requests larger than the burst
// are clamped to the burst so they wait for a full bucket instead of failing.
func (tb *TokenBucket) Wait(ctx context.Context, n int) error {
	tb.mu.Lock()
	onWait := tb.onWait
	tb.mu.Unlock()

	if burst := tb.limiter.Burst(); n > burst {
		n = burst
	}
	reservation := tb.limiter.ReserveN(time.Now(), n)
	delay := reservation.Delay()
	if delay <= 0 {
		return nil
	}

	if onWait != nil {
		if err := onWait(ctx, WaitInfo{Duration: delay, Reason: "token bucket cooldown"}); err != nil {
			reservation.Cancel()
			return err
		}
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	}
}

// RateLimitedClient paces requests to an inner client. It never retries: a
// failed call is returned as is.
type RateLimitedClient struct {
	inner     LLMClient
	requests  *rate.Limiter
	tokens    *TokenBucket
	estimator *TokenEstimator
	log       *logging.Logger
}

// NewRateLimitedClient wraps inner according to cfg. A zero RequestsPerSecond
// or TokensPerMinute disables that dimension.
func NewRateLimitedClient(inner LLMClient, cfg config.RateLimitConfig) *RateLimitedClient {
	c := &RateLimitedClient{
		inner:     inner,
		estimator: NewTokenEstimator(),
		log:       logging.Global().WithPrefix("ratelimit"),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.requests = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	if cfg.TokensPerMinute > 0 {
		c.tokens = NewTokenBucket(cfg.TokensPerMinute)
	}
	return c
}

// SetWaitCallback forwards token bucket pauses to cb.
func (c *RateLimitedClient) SetWaitCallback(cb WaitCallback) {
	if c.tokens != nil {
		c.tokens.SetWaitCallback(cb)
	}
}

// Inner returns the wrapped client.
func (c *RateLimitedClient) Inner() LLMClient {
	return c.inner
}

// GetModel returns the inner client's model
func (c *RateLimitedClient) GetModel() string {
	return c.inner.GetModel()
}

// Chat waits for request and token budget, then delegates once.
func (c *RateLimitedClient) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Message, error) {
	if c.requests != nil {
		if err := c.requests.Wait(ctx); err != nil {
			return nil, rmkerr.RateLimited(err)
		}
	}
	if c.tokens != nil {
		estimated := c.estimator.EstimateMessages(messages) + len(tools)*100
		c.log.Event(logging.EventRateLimitWait, logging.F("estimated_tokens", estimated))
		if err := c.tokens.Wait(ctx, estimated); err != nil {
			return nil, rmkerr.RateLimited(err)
		}
	}
	return c.inner.Chat(ctx, messages, tools)
}
