// Package token manages access- and refresh-token issuance and verification
// with two independent HS256 secrets and strict validation semantics.
package token
