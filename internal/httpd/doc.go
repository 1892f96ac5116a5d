// Package httpd assembles the authd HTTP surface: the route table, the
// policy table, the middleware chain (request ID → logging → CORS →
// metrics → authentication gate → authorization), and the thin handlers
// over the auth engine.
package httpd
