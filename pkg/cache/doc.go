// Package cache provides the Redis-backed revocation registry.
//
// Access tokens are stateless, so logging out cannot invalidate them at
// the signing layer. Instead the registry records a hash of every revoked
// access token with a TTL equal to the token's remaining lifetime. The
// authentication middleware consults the registry on every request; once
// the entry expires the token has expired too, so the registry stays
// small without any sweeper.
package cache
