// Package password wraps the one-way adaptive credential hash (bcrypt)
// behind a small Hasher type so the rest of the module never touches hash
// format internals.
package password
