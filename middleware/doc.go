// Package middleware provides the HTTP integration of the auth core as
// standard func(http.Handler) http.Handler stages. The intended chain is
// composed once at startup and always ordered Gate → Authorize → handler;
// RateLimit is an independent stage any route may add.
package middleware
