package audit

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"qproof.io/qpo/keys"
)

// VerifySignatures verifies the CRYPTO section of an audit document.
//
// Returns (true, nil) when every signature present verifies and the
// signature set matches the document's recorded security mode. Returns
// (false, nil) for an unsigned document (empty CRYPTO section). Returns
// (false, err) for malformed, non-canonical, incomplete or invalid
// signatures.
func VerifySignatures(docBytes []byte) (bool, error) {
	canon, err := Canonicalize(docBytes)
	if err != nil {
		return false, fmt.Errorf("canonical audit document required: %w", err)
	}

	body, err := sectionLines(canon, "CRYPTO")
	if err != nil {
		return false, err
	}
	if len(body) == 0 {
		return false, nil
	}

	sigAlg, _, err := fieldFromSection(canon, "CRYPTO", "Signature-Alg")
	if err != nil {
		return false, err
	}
	hAlg, _, err := fieldFromSection(canon, "CRYPTO", "Hash-Alg")
	if err != nil {
		return false, err
	}
	signerKey, _, err := fieldFromSection(canon, "CRYPTO", "Signer-Key")
	if err != nil {
		return false, err
	}
	sigB64, _, err := fieldFromSection(canon, "CRYPTO", "Signature")
	if err != nil {
		return false, err
	}
	if hAlg != hashAlg {
		return false, fmt.Errorf("CRYPTO: unsupported Hash-Alg %q", hAlg)
	}

	mode, _, err := fieldFromSection(canon, "RESULT", "Security-Mode")
	if err != nil {
		return false, err
	}

	scope, err := signatureScope(canon)
	if err != nil {
		return false, err
	}

	pqSigB64, hasPQ, err := fieldFromSection(canon, "CRYPTO", "PQ-Signature")
	if err != nil {
		return false, err
	}

	// The signature set must match the recorded posture: no downgrade by
	// re-signing a POST_QUANTUM run with a classical key.
	switch mode {
	case "NORMAL":
		if sigAlg != "ed25519" || hasPQ {
			return false, errors.New("CRYPTO: NORMAL evidence must carry exactly one ed25519 signature")
		}
	case "HYBRID":
		if sigAlg != "ed25519" || !hasPQ {
			return false, errors.New("CRYPTO: HYBRID evidence must carry ed25519 and dilithium3 signatures")
		}
	case "POST_QUANTUM":
		if sigAlg != "dilithium3" || hasPQ {
			return false, errors.New("CRYPTO: POST_QUANTUM evidence must carry exactly one dilithium3 signature")
		}
	default:
		return false, fmt.Errorf("RESULT: unknown Security-Mode %q", mode)
	}

	if err := verifyOne(sigAlg, signerKey, sigB64, scope); err != nil {
		return false, err
	}
	if hasPQ {
		pqAlg, _, err := fieldFromSection(canon, "CRYPTO", "PQ-Signature-Alg")
		if err != nil {
			return false, err
		}
		pqKey, _, err := fieldFromSection(canon, "CRYPTO", "PQ-Signer-Key")
		if err != nil {
			return false, err
		}
		if pqAlg != "dilithium3" {
			return false, fmt.Errorf("CRYPTO: unsupported PQ-Signature-Alg %q", pqAlg)
		}
		if err := verifyOne(pqAlg, pqKey, pqSigB64, scope); err != nil {
			return false, err
		}
	}
	return true, nil
}

// verifyOne checks a single signature against a "alg:base64" signer key.
func verifyOne(alg, signerKey, sigB64 string, scope []byte) error {
	keyAlg, keyB64, ok := strings.Cut(signerKey, ":")
	if !ok || keyAlg != alg {
		return fmt.Errorf("CRYPTO: signer key alg %q does not match signature alg %q", keyAlg, alg)
	}
	pub, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return fmt.Errorf("CRYPTO: invalid signer key encoding: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("CRYPTO: invalid signature encoding: %w", err)
	}

	switch alg {
	case "ed25519":
		if len(pub) != ed25519.PublicKeySize {
			return errors.New("CRYPTO: invalid ed25519 public key length")
		}
		if len(sig) != ed25519.SignatureSize {
			return errors.New("CRYPTO: invalid ed25519 signature length")
		}
		if !keys.VerifyEd25519(scope, ed25519.PublicKey(pub), sig) {
			return errors.New("CRYPTO: ed25519 signature did not verify")
		}
		return nil
	case "dilithium3":
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return fmt.Errorf("CRYPTO: invalid dilithium3 public key: %w", err)
		}
		if len(sig) != mode3.SignatureSize {
			return errors.New("CRYPTO: invalid dilithium3 signature length")
		}
		if !keys.VerifyDilithium3(scope, &pk, sig) {
			return errors.New("CRYPTO: dilithium3 signature did not verify")
		}
		return nil
	default:
		return fmt.Errorf("CRYPTO: unsupported signature alg %q", alg)
	}
}
