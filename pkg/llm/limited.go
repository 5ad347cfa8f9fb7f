package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// limited wraps a Client with a request rate limit so a busy tick loop
// cannot hammer a provider.
type limited struct {
	inner   Client
	limiter *rate.Limiter
}

// Limited returns client throttled to perMinute requests per minute with a
// burst of one. perMinute <= 0 returns client unchanged.
func Limited(client Client, perMinute int) Client {
	if client == nil || perMinute <= 0 {
		return client
	}
	return &limited{
		inner:   client,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
	}
}

func (l *limited) Complete(ctx context.Context, system, user string, jsonMode bool) (*Response, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.inner.Complete(ctx, system, user, jsonMode)
}

func (l *limited) Stream(ctx context.Context, system, user string) (<-chan string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.inner.Stream(ctx, system, user)
}
