package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/milos-ethernal/go-solana-movie-review/node"
	"github.com/milos-ethernal/go-solana-movie-review/review"
	"github.com/milos-ethernal/go-solana-movie-review/wallet"
)

var (
	// ErrMissingWallet is recoverable: the user has to connect a wallet.
	ErrMissingWallet = errors.New("connect your wallet first")
	// ErrNetworkFailure is transient; the user may try again.
	ErrNetworkFailure = errors.New("network failure")
	// ErrSubmissionRejected means the user or the cluster declined the transaction.
	ErrSubmissionRejected = errors.New("submission rejected")
	// ErrInvalidReview is returned before anything is built or sent.
	ErrInvalidReview = review.ErrInvalidReview

	ErrReviewNotFound = errors.New("review not found")
)

// Kind groups submission failures by what the caller can do about them.
type Kind int

const (
	KindNone Kind = iota
	KindMissingWallet
	KindInvalidReview
	KindNetworkFailure
	KindSubmissionRejected
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMissingWallet:
		return "missing_wallet"
	case KindInvalidReview:
		return "invalid_review"
	case KindNetworkFailure:
		return "network_failure"
	case KindSubmissionRejected:
		return "submission_rejected"
	default:
		return "unknown"
	}
}

// Classify maps an error returned by the client to its Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingWallet):
		return KindMissingWallet
	case errors.Is(err, ErrInvalidReview):
		return KindInvalidReview
	case errors.Is(err, ErrNetworkFailure):
		return KindNetworkFailure
	case errors.Is(err, ErrSubmissionRejected):
		return KindSubmissionRejected
	default:
		return KindUnknown
	}
}

// networkError wraps a failed RPC call made by the client itself.
func networkError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrNetworkFailure, op, err)
}

// sendError sorts the opaque error of a wallet send into the taxonomy.
func sendError(err error) error {
	var rpcErr *node.RPCError

	switch {
	case errors.Is(err, wallet.ErrNotConnected):
		return fmt.Errorf("%w: %w", ErrMissingWallet, err)
	case errors.As(err, &rpcErr) && rpcErr.Transient():
		return networkError("send transaction", err)
	case errors.Is(err, node.ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return networkError("send transaction", err)
	default:
		// user cancellations, validator rejections and anything else the
		// wallet reports are surfaced as they are
		return fmt.Errorf("%w: %w", ErrSubmissionRejected, err)
	}
}
