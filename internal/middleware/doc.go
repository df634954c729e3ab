// Package middleware provides HTTP middleware for the catalog API.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with picture ids collapsed out of the path label
//   - Configurable filtering for image endpoints and health checks
package middleware
