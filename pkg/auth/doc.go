// Package auth provides credential verification and signed-token issuance
// for the warden service.
//
// # Overview
//
// Two token kinds exist, both HMAC-signed JWTs sharing one symmetric key:
//
// Access tokens are short-lived and stateless. Verification checks only the
// signature, the issuer, and the expiry; no storage lookup is made. Immediate
// invalidation (logout) is handled outside this package by the revocation
// registry, keyed on the SHA-256 hash of the token string.
//
// Refresh tokens are long-lived and stateful. Each one carries a unique
// tokenId, and a matching RefreshTokenRecord must exist in durable storage
// for the (tokenId, userId) pair; the signed string alone is necessary but
// not sufficient. The record is written before the token is ever returned to
// a caller, and rotation consumes it atomically, so every refresh token is
// single-use.
//
// # Issuance
//
//	svc := auth.NewTokenService(cfg, store)
//	access, err := svc.IssueAccessToken(user.ID, user.Email, user.Name)
//	refresh, err := svc.IssueRefreshToken(ctx, user.ID)
//
// # Verification
//
//	claims, err := svc.VerifyAccessToken(tokenString)
//	if errdefs.IsInvalidToken(err) { ... } // bad signature, expired, malformed
//
// Password hashing uses bcrypt with a deliberately high work factor. Compare
// failures surface as errdefs.ErrInvalidCredentials regardless of cause, so
// callers cannot distinguish "unknown user" from "wrong password".
//
// # Related Packages
//
//   - pkg/store: RefreshTokenStore implementation (Postgres)
//   - pkg/cache: revocation registry for blacklisted access tokens
//   - pkg/middleware: HTTP authentication middleware consuming this package
package auth
