package address

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// PublicKeyLength is the size of an ed25519 public key and of every account address.
const PublicKeyLength = 32

var (
	ErrInvalidLength = errors.New("invalid public key length")
	ErrInvalidBase58 = errors.New("invalid base58 public key")
)

// SystemProgramID is the address of the native system program.
var SystemProgramID = MustPublicKey("11111111111111111111111111111111")

// PublicKey is an account address on the cluster.
type PublicKey [PublicKeyLength]byte

// NewPublicKey decodes a base58 encoded address.
func NewPublicKey(s string) (PublicKey, error) {
	if s == "" {
		return PublicKey{}, ErrInvalidBase58
	}

	// base58.Decode returns an empty slice on any invalid character
	raw := base58.Decode(s)
	if len(raw) == 0 {
		return PublicKey{}, fmt.Errorf("%w: %q", ErrInvalidBase58, s)
	}

	return PublicKeyFromBytes(raw)
}

// MustPublicKey is like NewPublicKey but panics on malformed input.
// It is meant for package level constants only.
func MustPublicKey(s string) PublicKey {
	pk, err := NewPublicKey(s)
	if err != nil {
		panic(err)
	}

	return pk
}

// PublicKeyFromBytes copies a 32 byte slice into a PublicKey.
func PublicKeyFromBytes(b []byte) (pk PublicKey, err error) {
	if len(b) != PublicKeyLength {
		err = fmt.Errorf("%w: got %d, want %d", ErrInvalidLength, len(b), PublicKeyLength)
		return
	}

	copy(pk[:], b)

	return
}

func (pk PublicKey) Bytes() []byte {
	return pk[:]
}

func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

func (pk PublicKey) Equals(other PublicKey) bool {
	return bytes.Equal(pk[:], other[:])
}

func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// MarshalText implements encoding.TextMarshaler.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PublicKey) UnmarshalText(data []byte) error {
	decoded, err := NewPublicKey(string(data))
	if err != nil {
		return err
	}

	*pk = decoded

	return nil
}
