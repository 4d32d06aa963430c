// Package service implements the authentication flows: login, token
// refresh, logout, and profile lookup. It composes the password hasher,
// the token service, the user store, the permission resolver, and the
// revocation registry behind small interfaces so each flow can be tested
// without a database or Redis.
package service
