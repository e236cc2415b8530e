// Package postgres implements the persistence layer on pgx with squirrel
// query building. All repositories share the error mapping in errors.go:
// pgx.ErrNoRows becomes domain.ErrNotFound and unique violations become
// domain.ErrDuplicate.
package postgres
