package authgate

import (
	"errors"
	"time"
)

// FailurePolicy decides what happens when the counter store is unreachable.
type FailurePolicy uint8

const (
	// FailClosed surfaces ErrStoreUnavailable to the caller: lock checks
	// and rate acquisitions fail, and no login proceeds. Default.
	FailClosed FailurePolicy = iota
	// FailOpen treats an unreachable store as "not locked" and "not
	// limited". Brute-force and volume protection degrade to nothing
	// while Redis is down; logins keep working.
	FailOpen
)

// Config is the full Engine configuration. Zero values are filled from
// [DefaultConfig] equivalents during [Builder.Build]; only the token secret
// has no usable default.
type Config struct {
	Token    TokenConfig
	Attempts AttemptConfig
	Rate     RateConfig
	Store    StoreConfig
	Audit    AuditConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig drives token issuance and the authentication gate's header
// handling.
type TokenConfig struct {
	// Secret keys the HMAC. Loaded once at startup, never rotated.
	Secret []byte
	// TTL is the fixed lifetime of issued tokens.
	TTL time.Duration
	// Header is the request header carrying the token.
	Header string
	// Scheme is the prefix stripped from the header value, including any
	// trailing space.
	Scheme string
}

/*
====================================
ATTEMPT LEDGER CONFIG
====================================
*/

// AttemptConfig tunes the failed-login lockout ledger.
type AttemptConfig struct {
	// Threshold is the failure count at which the identity locks.
	Threshold int
	// Window is the rolling lock window. Every failure refreshes it; a
	// full window without failures expires the counter and unlocks the
	// identity with no explicit reset.
	Window time.Duration
	// KeyPrefix namespaces the Redis counters.
	KeyPrefix string
}

/*
====================================
RATE LIMITER CONFIG
====================================
*/

// RateConfig tunes the fixed-window rate limiter.
type RateConfig struct {
	// Max is the request budget per window.
	Max int
	// Window is the fixed window length, anchored at the first request
	// after the previous window expired. Boundary bursts of up to 2×Max
	// are accepted fixed-window behavior.
	Window time.Duration
	// KeyPrefix namespaces the Redis counters.
	KeyPrefix string
}

/*
====================================
STORE / AUDIT CONFIG
====================================
*/

// StoreConfig holds cross-cutting counter-store behavior.
type StoreConfig struct {
	// OnFailure picks the fail-open/fail-closed policy for store outages.
	OnFailure FailurePolicy
	// OpTimeout bounds every store round trip issued by the Engine.
	OpTimeout time.Duration
}

// AuditConfig tunes the asynchronous audit dispatcher.
type AuditConfig struct {
	// BufferSize is the dispatcher queue depth. Events beyond it are
	// dropped and counted, never blocked on.
	BufferSize int
}

// DefaultConfig returns the configuration the original deployment ran with:
// 12h tokens on the Authorization header, 5 failures / 5 minutes lockout,
// 10 requests / 60 seconds rate windows, fail-closed store policy.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:    12 * time.Hour,
			Header: "Authorization",
			Scheme: "Bearer ",
		},
		Attempts: AttemptConfig{
			Threshold: 5,
			Window:    5 * time.Minute,
			KeyPrefix: "login:fail:",
		},
		Rate: RateConfig{
			Max:       10,
			Window:    60 * time.Second,
			KeyPrefix: "rate_limit:",
		},
		Store: StoreConfig{
			OnFailure: FailClosed,
			OpTimeout: 2 * time.Second,
		},
		Audit: AuditConfig{
			BufferSize: 256,
		},
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.Token.Secret) < 32 {
		return errors.New("token secret must be at least 32 bytes")
	}
	if cfg.Token.TTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if cfg.Token.Header == "" || cfg.Token.Scheme == "" {
		return errors.New("token header and scheme must be set")
	}
	if cfg.Attempts.Threshold <= 0 || cfg.Attempts.Window <= 0 {
		return errors.New("attempt threshold and window must be positive")
	}
	if cfg.Rate.Max <= 0 || cfg.Rate.Window <= 0 {
		return errors.New("rate max and window must be positive")
	}
	if cfg.Store.OpTimeout <= 0 {
		return errors.New("store op timeout must be positive")
	}
	return nil
}

func fillConfigDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Token.TTL == 0 {
		cfg.Token.TTL = def.Token.TTL
	}
	if cfg.Token.Header == "" {
		cfg.Token.Header = def.Token.Header
	}
	if cfg.Token.Scheme == "" {
		cfg.Token.Scheme = def.Token.Scheme
	}
	if cfg.Attempts.Threshold == 0 {
		cfg.Attempts.Threshold = def.Attempts.Threshold
	}
	if cfg.Attempts.Window == 0 {
		cfg.Attempts.Window = def.Attempts.Window
	}
	if cfg.Attempts.KeyPrefix == "" {
		cfg.Attempts.KeyPrefix = def.Attempts.KeyPrefix
	}
	if cfg.Rate.Max == 0 {
		cfg.Rate.Max = def.Rate.Max
	}
	if cfg.Rate.Window == 0 {
		cfg.Rate.Window = def.Rate.Window
	}
	if cfg.Rate.KeyPrefix == "" {
		cfg.Rate.KeyPrefix = def.Rate.KeyPrefix
	}
	if cfg.Store.OpTimeout == 0 {
		cfg.Store.OpTimeout = def.Store.OpTimeout
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}
}
