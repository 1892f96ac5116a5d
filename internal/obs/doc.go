// Package obs holds the HTTP-facing observability pieces of the authd
// server: the JSON line logger, Prometheus request metrics, Sentry setup,
// and the generic request middleware (request IDs, logging, per-IP
// throttling).
package obs
