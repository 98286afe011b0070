package txhelper

import (
	"context"

	"github.com/milos-ethernal/go-solana-movie-review/node"
)

// TxParamsHelper provides the network parameters a transaction needs.
type TxParamsHelper interface {
	GetLatestBlockhash(ctx context.Context) (node.LatestBlockhash, error)
}

// BlockhashFetcher is the RPC call TxParamsHelperImpl relies on.
type BlockhashFetcher interface {
	GetLatestBlockhash(ctx context.Context, commitment node.Commitment) (node.LatestBlockhash, error)
}

type TxParamsHelperImpl struct {
	rpc        BlockhashFetcher
	commitment node.Commitment
}

var _ TxParamsHelper = (*TxParamsHelperImpl)(nil)

// NewTxParamsHelper queries rpc at commitment, confirmed when empty.
func NewTxParamsHelper(rpc BlockhashFetcher, commitment node.Commitment) *TxParamsHelperImpl {
	if len(commitment) == 0 {
		commitment = node.CommitmentConfirmed
	}

	return &TxParamsHelperImpl{
		rpc:        rpc,
		commitment: commitment,
	}
}

func (th TxParamsHelperImpl) GetLatestBlockhash(ctx context.Context) (node.LatestBlockhash, error) {
	return th.rpc.GetLatestBlockhash(ctx, th.commitment)
}
