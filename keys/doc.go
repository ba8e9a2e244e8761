// Package keys provides signer-key helpers for audit evidence.
//
// Pure, deterministic primitives (signer-key formatting, role-seed
// derivation, signing) are stable. The filesystem-backed KeyStore is a
// local-first convenience for the CLI and daemon and may change shape.
package keys
