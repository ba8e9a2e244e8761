package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
)

// GenerateSignerKeyFromSeed returns the signer-key string for an Ed25519
// seed, in the form "ed25519:" + base64(pubkey) used by audit CRYPTO
// sections.
func GenerateSignerKeyFromSeed(seed []byte) string {
	priv := ed25519.NewKeyFromSeed(seed)
	key, err := SignerKeyFromPublicKey(priv.Public().(ed25519.PublicKey))
	if err != nil {
		// Unreachable: NewKeyFromSeed always yields a full-size public key.
		panic(err)
	}
	return key
}

// DeriveRoleSeed deterministically derives a role-specific Ed25519 seed
// from a root seed, so one operator seed can fan out per-role audit
// signing keys.
func DeriveRoleSeed(rootSeed []byte, role string) ([]byte, error) {
	if len(rootSeed) != ed25519.SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", ed25519.SeedSize)
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("qpo-kms-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("role:"))
	_, _ = h.Write([]byte(role))
	sum := h.Sum(nil)
	if len(sum) < ed25519.SeedSize {
		return nil, errors.New("kdf output too short")
	}
	out := make([]byte, ed25519.SeedSize)
	copy(out, sum[:ed25519.SeedSize])
	return out, nil
}
