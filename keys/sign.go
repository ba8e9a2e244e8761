package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// Evidence signatures are always over sha3-256 of the signed scope,
// matching the Hash-Alg line of the audit CRYPTO section.

// SignEd25519 returns a base64 ed25519 signature over sha3-256(message).
func SignEd25519(message []byte, privateKey ed25519.PrivateKey) string {
	digest := sha3.Sum256(message)
	sig := ed25519.Sign(privateKey, digest[:])
	return base64.StdEncoding.EncodeToString(sig)
}

// VerifyEd25519 reports whether the raw signature verifies over
// sha3-256(message).
func VerifyEd25519(message []byte, publicKey ed25519.PublicKey, sig []byte) bool {
	digest := sha3.Sum256(message)
	return ed25519.Verify(publicKey, digest[:], sig)
}

// SignDilithium3 returns a base64 dilithium3 signature over
// sha3-256(message).
func SignDilithium3(message []byte, privateKey *mode3.PrivateKey) (string, error) {
	if privateKey == nil {
		return "", errors.New("missing private key")
	}
	digest := sha3.Sum256(message)
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(privateKey, digest[:], sig)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyDilithium3 reports whether the raw signature verifies over
// sha3-256(message).
func VerifyDilithium3(message []byte, publicKey *mode3.PublicKey, sig []byte) bool {
	digest := sha3.Sum256(message)
	return mode3.Verify(publicKey, digest[:], sig)
}
