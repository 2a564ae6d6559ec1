// Package internal documents the election API server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem responses, and routing
// - domain: business logic and domain models
// - storage: database access and repositories (pgx + Postgres)
// - auth: OTP login and token stores
// - config, metrics: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
