// Package handlers exposes the HTTP API: public subscription and reading
// endpoints, an authenticated admin surface for posts and newsletter sends,
// and the secret-guarded trigger for scheduled send processing.
package handlers
