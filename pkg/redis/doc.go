// Package redis opens go-redis clients with retrying connection setup, plus
// healthcheck and shutdown helpers. The application uses Redis for request
// rate limiting on the public subscribe endpoint.
package redis
