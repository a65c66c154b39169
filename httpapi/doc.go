// Package httpapi exposes the authentication service over HTTP.
//
// # Routes
//
//   - POST /auth/login    — credential exchange for a fresh token pair.
//   - POST /auth/refresh  — refresh-token rotation (guarded).
//   - POST /auth/logout   — session teardown (access-guarded, idempotent).
//   - GET  /auth/profile  — caller identity echo (access-guarded).
//   - GET  /healthz       — liveness probe.
//   - GET  /metrics       — Prometheus text exposition.
//
// # Architecture boundaries
//
// This package owns request decoding, response encoding, and status-code
// mapping. Every authentication decision is delegated to authkit.Service;
// handlers never touch tokens, hashes, or the credential store directly.
//
// # What this package must NOT do
//
//   - Verify passwords or parse JWTs.
//   - Leak internal error detail to clients in production mode.
//   - Bypass the middleware guards for protected routes.
package httpapi
