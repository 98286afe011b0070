package tx

import (
	"crypto/ed25519"

	"github.com/btcsuite/btcutil/base58"
)

// SignatureLength is the size of an ed25519 signature.
const SignatureLength = ed25519.SignatureSize

// Signature occupies one signer slot of a transaction. An unsigned slot is
// all zeros.
type Signature [SignatureLength]byte

// NewSignature copies raw into a Signature.
func NewSignature(raw []byte) (sig Signature) {
	copy(sig[:], raw)
	return
}

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (s Signature) IsZero() bool {
	return s == Signature{}
}
