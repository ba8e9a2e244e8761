package storage

import "github.com/ipfs/go-cid"

// CAS is the content-addressable archive interface for audit evidence.
//
// Evidence documents are canonical bytes; their CID is their identity, so
// an archived run can be fetched and re-verified by CID alone.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written (callers supply canonical audit bytes).
// - Get MUST return ErrNotFound when the CID is absent.
type CAS interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
