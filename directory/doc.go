// Package directory provides IdentityDirectory implementations: a
// Postgres-backed store for production and an in-memory store for tests
// and examples.
package directory
