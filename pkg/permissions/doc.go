// Package permissions resolves the effective permission set of a user.
//
// Permissions are never attached to users directly. A user belongs to
// groups, each group references exactly one access level, and each access
// level carries a list of permission strings. The resolver walks that
// chain in a single query and unions the results, so a user's effective
// permissions are always computed from the current state of the database.
package permissions
