// Package jwt issues and validates the compact signed access tokens the
// authentication gate trusts: HS512-signed claim sets carrying subject,
// role, and numeric user ID, verified without any server-side lookup.
package jwt
