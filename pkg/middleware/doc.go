// Package middleware provides the authentication and authorization layers
// that sit in front of protected HTTP handlers.
//
// Authenticator verifies the Bearer access token, consults the revocation
// registry, and stores the resulting identity in the request context. The
// Require* factories then gate individual routes on permissions or group
// membership resolved from the database on every request, so a grant
// revoked mid-session takes effect immediately.
package middleware
