// Package authgate gates access to a multi-tenant API. It combines a
// stateless HMAC-signed access-token protocol, a Redis-backed failed-login
// lockout ledger, and a fixed-window request rate limiter behind a single
// [Engine].
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. The only in-process state the Engine shares across
// requests is the immutable signing secret and atomic metric counters; all
// cross-request coordination (attempt counters, rate windows) lives in Redis.
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config],
// [Principal], the [Policy] table, and the sentinel errors. Flow
// orchestration and the Redis counters live under internal/ and are never
// exported. Token signing is in the jwt subpackage, credential hashing in
// password, HTTP integration in middleware, and identity lookup behind the
// [IdentityDirectory] interface (see the directory subpackage for the
// Postgres and in-memory implementations).
//
// # What this package must NOT do
//
//   - Persist identities. The [IdentityDirectory] is read-only from the
//     Engine's point of view apart from the enabled/locked flags it inspects.
//   - Decide HTTP responses. Login and rate-limit outcomes surface as
//     sentinel errors; the caller maps them to status codes.
//   - Treat the role claim inside a token as authoritative. The gate
//     re-reads roles from the directory on every validated request.
package authgate
