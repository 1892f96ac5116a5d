// Package ledger tracks failed login attempts per identity in Redis and
// derives the rolling brute-force lockout from the counter value.
package ledger
