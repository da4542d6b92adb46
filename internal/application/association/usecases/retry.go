package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
)

// RetryPolicy bounds the retries of a write that lost an optimistic-lock race
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxTries: 3, InitialInterval: 20 * time.Millisecond}
}

func isVersionConflict(err error) bool {
	return errors.Is(err, device.ErrVersionConflict) || errors.Is(err, product.ErrVersionConflict)
}

// retryOnConflict reruns fn while it fails with a version conflict. Any other error stops at once.
func retryOnConflict(ctx context.Context, policy RetryPolicy, fn func() error) error {
	tries := policy.MaxTries
	if tries == 0 {
		tries = 1
	}

	b := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		b.InitialInterval = policy.InitialInterval
	}
	b.MaxInterval = 500 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := fn(); err != nil {
			if isVersionConflict(err) {
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
	return err
}
