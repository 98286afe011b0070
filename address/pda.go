package address

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math"

	"filippo.io/edwards25519"
)

const (
	// MaxSeedLength is the longest single seed a program address may use.
	MaxSeedLength = 32
	// MaxSeeds caps the number of seeds, bump seed included.
	MaxSeeds = 16

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrInvalidSeeds          = errors.New("provided seeds do not result in a valid address")
	ErrNoViableBump          = errors.New("unable to find a viable program address bump seed")
)

// IsOnCurve reports whether b decodes to a point on the ed25519 curve.
// Program addresses must not, so that no private key can sign for them.
func IsOnCurve(b []byte) bool {
	if len(b) != PublicKeyLength {
		return false
	}

	_, err := new(edwards25519.Point).SetBytes(b)

	return err == nil
}

// CreateProgramAddress hashes the seeds together with the program id.
// It fails with ErrInvalidSeeds when the result lands on the curve.
func CreateProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return PublicKey{}, fmt.Errorf("%w: %d seeds, max %d", ErrMaxSeedLengthExceeded, len(seeds), MaxSeeds)
	}

	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return PublicKey{}, fmt.Errorf("%w: seed %d is %d bytes, max %d", ErrMaxSeedLengthExceeded, i, len(seed), MaxSeedLength)
		}

		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	sum := h.Sum(nil)
	if IsOnCurve(sum) {
		return PublicKey{}, ErrInvalidSeeds
	}

	return PublicKeyFromBytes(sum)
}

// FindProgramAddress walks bump seeds from 255 down to 1 and returns the
// first address that falls off the curve together with its bump.
func FindProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, uint8, error) {
	return findProgramAddress(seeds, programID, CreateProgramAddress)
}

func findProgramAddress(seeds [][]byte, programID PublicKey, create func([][]byte, PublicKey) (PublicKey, error)) (PublicKey, uint8, error) {
	bumpSeed := []byte{0}
	withBump := make([][]byte, 0, len(seeds)+1)
	withBump = append(withBump, seeds...)
	withBump = append(withBump, bumpSeed)

	for bump := math.MaxUint8; bump >= 1; bump-- {
		bumpSeed[0] = uint8(bump)

		pda, err := create(withBump, programID)
		if err == nil {
			return pda, uint8(bump), nil
		}

		if !errors.Is(err, ErrInvalidSeeds) {
			return PublicKey{}, 0, err
		}
	}

	return PublicKey{}, 0, ErrNoViableBump
}
