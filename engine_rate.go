package authgate

import "context"

// TryAcquire counts one request against the key's fixed window and reports
// whether it fits the configured budget. Keys are caller-chosen (an
// identity, a client address); which routes invoke the limiter is a product
// decision, independent of the authentication path. Under FailOpen an
// unreachable store reads as "allowed".
func (e *Engine) TryAcquire(ctx context.Context, key string) (bool, error) {
	if e == nil || e.limiter == nil {
		return false, ErrEngineNotReady
	}

	sctx, cancel := e.storeContext(ctx)
	defer cancel()

	allowed, err := e.limiter.TryAcquire(sctx, key)
	if err != nil {
		if e.failOpen() {
			return true, nil
		}
		return false, e.wrapStoreError(err)
	}

	if allowed {
		e.metrics.inc(MetricRateAllowed)
	} else {
		e.metrics.inc(MetricRateLimited)
		e.emitAudit(ctx, EventRateLimited, false, key, ErrRateLimited)
	}
	return allowed, nil
}

// ResetRate deletes the key's window counter. Administrative override.
func (e *Engine) ResetRate(ctx context.Context, key string) error {
	if e == nil || e.limiter == nil {
		return ErrEngineNotReady
	}

	sctx, cancel := e.storeContext(ctx)
	defer cancel()

	if err := e.limiter.Reset(sctx, key); err != nil {
		return e.wrapStoreError(err)
	}
	return nil
}
