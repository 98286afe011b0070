// Package wallet signs and relays transactions on behalf of the user.
// Key material stays inside the wallet; callers only ever see the public key.
package wallet

import (
	"context"
	"errors"

	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/node"
	"github.com/milos-ethernal/go-solana-movie-review/tx"
)

var (
	ErrNotConnected = errors.New("wallet not connected")
	ErrUserRejected = errors.New("user rejected the request")
)

// Connection is the part of the cluster RPC a wallet relays through.
type Connection interface {
	SendTransaction(ctx context.Context, raw []byte, opts node.SendOptions) (string, error)
}

type Wallet interface {
	// Identity returns the connected public key, ok is false when no
	// wallet is connected.
	Identity() (pk address.PublicKey, ok bool)
	// SendTransaction signs the transaction and relays it over conn.
	SendTransaction(ctx context.Context, transaction *tx.Tx, conn Connection, opts node.SendOptions) (string, error)
}

// Disconnected is a wallet with no identity.
type Disconnected struct{}

var _ Wallet = Disconnected{}

func (Disconnected) Identity() (address.PublicKey, bool) {
	return address.PublicKey{}, false
}

func (Disconnected) SendTransaction(context.Context, *tx.Tx, Connection, node.SendOptions) (string, error) {
	return "", ErrNotConnected
}
