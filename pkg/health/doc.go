// Package health provides HTTP handlers for liveness and readiness probes,
// aggregating healthcheck closures from the db and redis packages.
package health
