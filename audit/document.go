package audit

import (
	"fmt"

	"qproof.io/qpo/cidutil"
	"qproof.io/qpo/model"
)

// Document is a first-class audit evidence object.
//
// Bytes are canonical audit bytes; CID is derived from Bytes. Evidence is
// a document rather than ephemeral output so it can be archived, fetched
// by CID and re-verified later.
type Document struct {
	Bytes []byte
	CID   string
}

// NewDocumentFromBytes canonicalizes audit bytes and computes their CID.
func NewDocumentFromBytes(b []byte) (*Document, error) {
	canon, err := Canonicalize(b)
	if err != nil {
		return nil, err
	}
	return &Document{Bytes: canon, CID: cidutil.CIDv1RawSHA256(canon)}, nil
}

// RenderDocument renders a run into a canonical Document (bytes + CID).
func RenderDocument(run model.Run, opts RenderOptions) (*Document, error) {
	b, err := Render(run, opts)
	if err != nil {
		return nil, err
	}
	return NewDocumentFromBytes(b)
}

// CID returns an IPFS-compatible CIDv1 (raw + sha2-256) for audit bytes.
// Non-canonical input fails; the CID of repaired bytes would not match the
// CID of the original evidence.
func CID(b []byte) (string, error) {
	canon, err := Canonicalize(b)
	if err != nil {
		return "", fmt.Errorf("canonical audit document required: %w", err)
	}
	return cidutil.CIDv1RawSHA256(canon), nil
}
