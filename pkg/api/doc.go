// Package api wires the HTTP surface: the auth endpoints, the user,
// group, and access level management APIs, and the middleware chain in
// front of them.
//
// Route layout:
//
//	POST /auth/login                public
//	POST /auth/refresh              public
//	POST /auth/logout               authenticated
//	GET  /auth/profile              authenticated
//	POST /auth/check-permission     authenticated
//	POST /auth/check-permissions    authenticated
//	POST /auth/check-any-permission authenticated
//	POST /auth/check-group          authenticated
//	/users, /groups, /access-levels authenticated + users.manage /
//	                                groups.manage / access-levels.manage
//
// Liveness, readiness, and metrics are served from a separate listener;
// see cmd/warden.
package api
