package storage

import "errors"

// Sentinel errors shared by every archive backend. Callers branch with
// errors.Is; backends wrap these with backend-specific detail.
var (
	// ErrNotFound: no evidence document archived under the CID.
	ErrNotFound = errors.New("storage: not found")
	// ErrInvalidCID: the identifier does not parse as a CID.
	ErrInvalidCID = errors.New("storage: invalid cid")
	// ErrCIDMismatch: the archived bytes no longer hash to their CID;
	// the evidence has been corrupted or tampered with at rest.
	ErrCIDMismatch = errors.New("storage: cid mismatch")
	// ErrImmutable: a Put would overwrite an existing document with
	// different bytes, which the immutability contract forbids.
	ErrImmutable = errors.New("storage: immutable object mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
