// Package config loads and validates application configuration.
//
// Configuration comes from two layers. An optional YAML file (path in
// WARDEN_CONFIG) supplies the base values, and WARDEN_* environment
// variables override individual fields on top of it, so deployments can
// keep a checked-in file and inject only the secrets at runtime.
package config
