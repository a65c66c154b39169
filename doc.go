// Package authkit implements credential authentication and a two-token
// (access/refresh) session lifecycle: password verification, JWT pair
// issuance, refresh-token rotation against a server-side hash, and logout.
//
// The package is designed for concurrent server workloads: Service methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Service], [Builder], [Config],
// the [CredentialStore] contract, and value types (User, TokenPair,
// Principal, MetricsSnapshot). Token signing lives in token/, password
// hashing in password/, store implementations in store/, request gating in
// middleware/, and the HTTP surface in httpapi/. Audit dispatch lives under
// internal/ and is never exported directly.
//
// # What this package must NOT do
//
//   - Expose password hashes or stored refresh-token hashes in any result.
//   - Create, update, or delete user records beyond the stored
//     refresh-token hash — user management is an external collaborator.
//   - Log or audit bearer token material in cleartext.
//
// # Session model
//
// Exactly one refresh-token hash is retained per identity. A new login or
// refresh overwrites the previous hash, which silently invalidates any
// older refresh token (single session per identity). Rotation is a
// compare-and-swap in the store, so concurrent refreshes presenting the
// same old token have exactly one winner.
package authkit
