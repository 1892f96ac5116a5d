package authgate

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/orbitlms/authgate/internal/ledger"
	"github.com/orbitlms/authgate/internal/rate"
	"github.com/orbitlms/authgate/jwt"
	"github.com/orbitlms/authgate/password"
)

// Builder assembles an [Engine]. Construction is allocation-only until
// Build; no I/O happens before the first Engine method call.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	directory IdentityDirectory
	auditSink AuditSink
	hasher    *password.Hasher
	built     bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the configuration. Zero fields are filled from
// defaults during Build; the token secret must be provided.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the counter-store client shared by the attempt ledger and
// the rate limiter.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDirectory sets the identity store consulted during login and
// principal resolution.
func (b *Builder) WithDirectory(dir IdentityDirectory) *Builder {
	b.directory = dir
	return b
}

// WithAuditSink sets the destination for audit events. Defaults to
// [NoOpSink].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithHasher overrides the credential verifier, e.g. to change the bcrypt
// cost in tests.
func (b *Builder) WithHasher(h *password.Hasher) *Builder {
	b.hasher = h
	return b
}

// Build validates the configuration, wires all components, and starts the
// audit dispatcher. A Builder builds at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.directory == nil {
		return nil, errors.New("identity directory is required")
	}

	cfg := b.config
	fillConfigDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		Secret: cfg.Token.Secret,
		TTL:    cfg.Token.TTL,
	})
	if err != nil {
		return nil, err
	}

	hasher := b.hasher
	if hasher == nil {
		hasher, err = password.NewHasher(0)
		if err != nil {
			return nil, err
		}
	}

	engine := &Engine{
		config:     cfg,
		jwtManager: jwtManager,
		hasher:     hasher,
		directory:  b.directory,
		metrics:    &Metrics{},
		ledger: ledger.New(b.redis, ledger.Config{
			Threshold: cfg.Attempts.Threshold,
			Window:    cfg.Attempts.Window,
			KeyPrefix: cfg.Attempts.KeyPrefix,
		}),
		limiter: rate.New(b.redis, rate.Config{
			Max:       cfg.Rate.Max,
			Window:    cfg.Rate.Window,
			KeyPrefix: cfg.Rate.KeyPrefix,
		}),
		audit: newAuditDispatcher(cfg.Audit, b.auditSink),
	}

	b.built = true
	return engine, nil
}
