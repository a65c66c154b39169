// Package middleware exposes HTTP middleware adapters that gate handlers on
// authkit.Service verification: bearer access tokens, refresh tokens, and
// login credentials.
//
// # Guards
//
//   - [AccessGuard] — bearer access-token verification, injects the Principal.
//   - [RefreshGuard] — refresh-token structural + session verification.
//   - [CredentialGuard] — request-shape and credential verification for login.
//
// Each guard reads its input from the request, calls the matching Service
// operation, and injects the verified result into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Service calls. It does NOT
// implement authentication logic itself — all decisions are delegated to the
// Service.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to the Service).
//   - Touch the credential store (the Service handles I/O).
//   - Make authorization decisions beyond pass/reject from the Service.
package middleware
