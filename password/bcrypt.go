package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const minPassBytes = 6

// Hasher hashes and verifies passwords with bcrypt. Stateless apart from
// the configured cost; safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. Cost 0 selects
// bcrypt's default.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("password: bcrypt cost out of range")
	}
	return &Hasher{cost: cost}, nil
}

// Hash derives a salted bcrypt hash of the password.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) < minPassBytes {
		return "", errors.New("password: too short")
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Matches reports whether the plaintext password corresponds to the stored
// hash. Verification failure is not an error: errors are reserved for
// malformed hashes.
func (h *Hasher) Matches(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
