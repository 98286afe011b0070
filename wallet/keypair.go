package wallet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/node"
	"github.com/milos-ethernal/go-solana-movie-review/tx"
	"github.com/tyler-smith/go-bip39"
)

var ErrInvalidKeypair = errors.New("invalid keypair")

// ApprovalFunc is asked before every signature. Returning false cancels
// the request with ErrUserRejected.
type ApprovalFunc func(ctx context.Context, transaction *tx.Tx) (bool, error)

type KeypairOption func(*KeypairWallet)

func WithApproval(fn ApprovalFunc) KeypairOption {
	return func(w *KeypairWallet) {
		w.approve = fn
	}
}

// KeypairWallet holds an ed25519 key locally and signs with it.
type KeypairWallet struct {
	key     ed25519.PrivateKey
	pub     address.PublicKey
	approve ApprovalFunc
}

var _ Wallet = (*KeypairWallet)(nil)

func NewKeypairWallet(key ed25519.PrivateKey, opts ...KeypairOption) (*KeypairWallet, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", ErrInvalidKeypair, ed25519.PrivateKeySize, len(key))
	}

	// the second half of a 64 byte key must be the public key of the first
	derived := ed25519.NewKeyFromSeed(key.Seed())
	if !bytes.Equal(derived, key) {
		return nil, fmt.Errorf("%w: public key does not match secret", ErrInvalidKeypair)
	}

	pub, err := address.PublicKeyFromBytes(key.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}

	w := &KeypairWallet{
		key: key,
		pub: pub,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// FromKeypairFile loads a keypair written by solana-keygen: a JSON array of
// the 64 secret key bytes.
func FromKeypairFile(path string, opts ...KeypairOption) (*KeypairWallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []byte
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidKeypair, path, err)
	}

	for _, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: %s: byte out of range", ErrInvalidKeypair, path)
		}

		raw = append(raw, byte(v))
	}

	return NewKeypairWallet(ed25519.PrivateKey(raw), opts...)
}

// FromMnemonic recovers the keypair solana-keygen derives from a BIP39
// phrase without a derivation path: the first 32 bytes of the seed.
func FromMnemonic(mnemonic, passphrase string, opts ...KeypairOption) (*KeypairWallet, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeypair, err)
	}

	return NewKeypairWallet(ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]), opts...)
}

func (w *KeypairWallet) Identity() (address.PublicKey, bool) {
	return w.pub, true
}

func (w *KeypairWallet) SendTransaction(ctx context.Context, transaction *tx.Tx, conn Connection, opts node.SendOptions) (string, error) {
	if w.approve != nil {
		ok, err := w.approve(ctx, transaction)
		if err != nil {
			return "", err
		}

		if !ok {
			return "", ErrUserRejected
		}
	}

	if err := transaction.Sign(w.key); err != nil {
		return "", err
	}

	raw, err := transaction.Bytes()
	if err != nil {
		return "", err
	}

	return conn.SendTransaction(ctx, raw, opts)
}
