// Package server provides the HTTP surface for the transcription service:
// a Gin engine with HTTP/2 (h2c) support, graceful start/stop, a standard
// middleware stack, and the REST API for sessions, transcriptions, entries,
// and catalog lookups.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request ID generation and propagation
//   - CORS: cross-origin resource sharing configuration
//   - BodySize: request body size limits (audio uploads)
//   - RateLimit: sliding-window rate limiting on transcription uploads
//   - Logging: request/response logging with duration tracking
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: service and backend availability
//   - /info: application and build information
//   - /metrics: runtime memory and goroutine metrics
package server
