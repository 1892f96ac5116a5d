package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed means the token cannot be parsed into the expected
	// three-part structure or its claims do not decode.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid means the recomputed MAC does not match the
	// embedded signature. Any single-byte change trips it.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrExpired means the token parsed and verified but its expiry
	// timestamp is in the past.
	ErrExpired = errors.New("token expired")
)

// Config holds the signing secret and fixed token lifetime. Configured once
// at startup and treated as immutable afterwards.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Leeway time.Duration
}

// Manager signs and verifies access tokens. Pure functions over the secret
// and the current time: no locks, no shared mutable state, safe for
// concurrent use.
type Manager struct {
	config Config
}

// Claims is the verified claim set of an access token. Role and UserID are
// informational copies of the identity at issuance time; authorization
// decisions re-read roles from the directory.
type Claims struct {
	Role   string `json:"role"`
	UserID int64  `json:"userId"`
	jwt.RegisteredClaims
}

// NewManager validates the configuration and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: empty secret")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("jwt: invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("jwt: invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// Issue builds, signs, and encodes a token for the subject. Deterministic
// given identical inputs and timestamp.
func (m *Manager) Issue(subject, role string, userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:   role,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(m.config.Secret)
}

// Parse verifies the signature and expiry and returns the claim set.
// Any failure discards all claims: callers get exactly one of
// [ErrMalformed], [ErrSignatureInvalid], or [ErrExpired].
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
