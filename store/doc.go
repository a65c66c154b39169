// Package store provides CredentialStore implementations: a Redis-backed
// store for deployment and an in-memory store for tests and examples.
//
// # Rotation atomicity
//
// SwapRefreshHash is a compare-and-swap. The Redis implementation runs it
// as a Lua script so that concurrent refresh calls presenting the same
// old token hash have exactly one winner; the memory implementation holds
// a mutex across the compare and the write for the same guarantee.
//
// # Architecture boundaries
//
// This package owns persistence only. It never hashes tokens or
// passwords, and it never interprets a mismatch — callers decide what a
// failed swap means.
package store
