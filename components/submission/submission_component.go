// Package submission builds and submits movie reviews through a connected wallet.
package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/components/txhelper"
	"github.com/milos-ethernal/go-solana-movie-review/logging"
	"github.com/milos-ethernal/go-solana-movie-review/node"
	"github.com/milos-ethernal/go-solana-movie-review/review"
	"github.com/milos-ethernal/go-solana-movie-review/wallet"
	"go.uber.org/zap"
)

// Connection is everything the client needs from the cluster RPC.
type Connection interface {
	wallet.Connection
	txhelper.BlockhashFetcher
	GetAccountInfo(ctx context.Context, account address.PublicKey, commitment node.Commitment) (*node.AccountInfo, error)
}

// Client submits reviews to one program. It holds no per-submission state
// and may be shared; nothing deduplicates overlapping submissions.
type Client struct {
	programID address.PublicKey
	conn      Connection
	params    txhelper.TxParamsHelper
	logger    *zap.Logger
}

func NewClient(programID address.PublicKey, conn Connection, logger *zap.Logger) *Client {
	return &Client{
		programID: programID,
		conn:      conn,
		params:    txhelper.NewTxParamsHelper(conn, node.CommitmentConfirmed),
		logger:    logging.OrNop(logger).With(zap.Stringer("program", programID)),
	}
}

func (c *Client) ProgramID() address.PublicKey {
	return c.programID
}

// ReviewAddress derives where submitter's review of title is stored.
func (c *Client) ReviewAddress(submitter address.PublicKey, title string) (address.PublicKey, uint8, error) {
	pda, bump, err := review.DeriveAddress(submitter, title, c.programID)
	if err != nil {
		return address.PublicKey{}, 0, fmt.Errorf("%w: derive address: %w", ErrInvalidReview, err)
	}

	return pda, bump, nil
}

// Submit sends r as one transaction signed by w and returns its signature.
// It makes one blockhash request and one send attempt; nothing is retried.
func (c *Client) Submit(ctx context.Context, r *review.Review, w wallet.Wallet) (string, error) {
	var title string
	if r != nil {
		title = r.Title
	}

	signature, err := c.submit(ctx, r, w)
	if err != nil {
		c.logger.Warn("review submission failed",
			zap.String("title", title),
			zap.Stringer("kind", Classify(err)),
			zap.Error(err))

		return "", err
	}

	c.logger.Info("review submitted",
		zap.String("title", title),
		zap.String("signature", signature))

	return signature, nil
}

func (c *Client) submit(ctx context.Context, r *review.Review, w wallet.Wallet) (string, error) {
	if w == nil {
		return "", ErrMissingWallet
	}

	submitter, ok := w.Identity()
	if !ok {
		return "", ErrMissingWallet
	}

	if r == nil {
		return "", fmt.Errorf("%w: no review given", ErrInvalidReview)
	}

	payload, err := r.Serialize()
	if err != nil {
		return "", err
	}

	pda, bump, err := c.ReviewAddress(submitter, r.Title)
	if err != nil {
		return "", err
	}

	c.logger.Debug("derived review account",
		zap.Stringer("submitter", submitter),
		zap.Stringer("account", pda),
		zap.Uint8("bump", bump))

	instruction := txhelper.BuildReviewInstruction(c.programID, submitter, pda, payload)

	latest, err := c.params.GetLatestBlockhash(ctx)
	if err != nil {
		return "", networkError("get latest blockhash", err)
	}

	transaction, err := txhelper.BuildReviewTx(submitter, latest.Blockhash, instruction)
	if err != nil {
		return "", err
	}

	// catch oversized reviews before the wallet is asked to sign
	if _, err := transaction.Bytes(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidReview, err)
	}

	c.logger.Debug("sending review transaction",
		zap.Stringer("blockhash", latest.Blockhash),
		zap.Uint64("last_valid_block_height", latest.LastValidBlockHeight))

	signature, err := w.SendTransaction(ctx, transaction, c.conn, node.SendOptions{
		SkipPreflight: true,
	})
	if err != nil {
		return "", sendError(err)
	}

	return signature, nil
}

// FetchReview reads back the review submitter stored for title.
func (c *Client) FetchReview(ctx context.Context, submitter address.PublicKey, title string) (*review.AccountState, error) {
	pda, _, err := c.ReviewAddress(submitter, title)
	if err != nil {
		return nil, err
	}

	info, err := c.conn.GetAccountInfo(ctx, pda, node.CommitmentConfirmed)
	if err != nil {
		var rpcErr *node.RPCError
		if errors.As(err, &rpcErr) && !rpcErr.Transient() {
			return nil, err
		}

		return nil, networkError("get account info", err)
	}

	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrReviewNotFound, pda)
	}

	if !info.Owner.Equals(c.programID) {
		return nil, fmt.Errorf("account %s is owned by %s, not the review program", pda, info.Owner)
	}

	state, err := review.DecodeAccount(info.Data)
	if errors.Is(err, review.ErrUninitializedAccount) {
		return nil, fmt.Errorf("%w: %s", ErrReviewNotFound, pda)
	}

	return state, err
}
