// Package store implements Postgres persistence for users, access levels,
// user groups, group memberships, and refresh token records.
//
// All queries run raw SQL through database/sql with the lib/pq driver.
// Unique-constraint violations surface as errdefs.ErrConflict and missing
// rows as errdefs.ErrNotFound, so callers never inspect driver errors.
package store
