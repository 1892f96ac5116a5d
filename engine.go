package authgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orbitlms/authgate/internal/ledger"
	"github.com/orbitlms/authgate/internal/rate"
	"github.com/orbitlms/authgate/jwt"
	"github.com/orbitlms/authgate/password"
)

// Engine is the process-wide auth core. It owns the token manager, the
// attempt ledger, the rate limiter, and the audit dispatcher. Construct it
// through [Builder.Build]; after that every method is safe for concurrent
// use.
type Engine struct {
	config     Config
	jwtManager *jwt.Manager
	hasher     *password.Hasher
	ledger     *ledger.Ledger
	limiter    *rate.Limiter
	directory  IdentityDirectory
	audit      *auditDispatcher
	metrics    *Metrics
}

// Close stops the audit dispatcher after draining queued events. The Engine
// must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// TokenHeader returns the configured header name and scheme prefix the
// authentication gate reads tokens from.
func (e *Engine) TokenHeader() (header, scheme string) {
	return e.config.Token.Header, e.config.Token.Scheme
}

// MetricsSnapshot copies the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped returns how many audit events were dropped because the
// dispatcher queue was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// FailureCount returns the identity's current failed-login count. Intended
// for operational introspection; zero for unknown identities.
func (e *Engine) FailureCount(ctx context.Context, identity string) (int64, error) {
	if e == nil || e.ledger == nil {
		return 0, ErrEngineNotReady
	}
	sctx, cancel := e.storeContext(ctx)
	defer cancel()

	count, err := e.ledger.FailureCount(sctx, identity)
	if err != nil {
		if e.failOpen() {
			return 0, nil
		}
		return 0, e.wrapStoreError(err)
	}
	return count, nil
}

// storeContext bounds one counter-store round trip.
func (e *Engine) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, e.config.Store.OpTimeout)
}

func (e *Engine) failOpen() bool {
	return e.config.Store.OnFailure == FailOpen
}

func (e *Engine) wrapStoreError(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func (e *Engine) wrapDirectoryError(err error) error {
	if errors.Is(err, ErrDirectoryUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
}

func (e *Engine) metricInc(id int) {
	e.metrics.inc(MetricID(id))
}

func (e *Engine) emitAudit(ctx context.Context, event string, success bool, identity string, cause error) {
	ev := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: event,
		Identity:  identity,
		Success:   success,
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	e.audit.Emit(ctx, ev)
}
