// Package db wraps [github.com/jackc/pgx/v5/pgxpool] with connection retry,
// goose migrations over an embedded filesystem, a transaction helper, and a
// healthcheck function for readiness probes.
package db
