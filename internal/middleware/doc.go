// Package middleware provides HTTP middleware for the metrics endpoint.
//
// It includes:
//   - Request logging in W3C Extended Log Format at debug level
//   - Request counters and latency histograms per route
package middleware
