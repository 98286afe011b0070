package node

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/tx"
)

// Commitment is how settled a ledger state must be before the node uses it.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// ParseCommitment accepts the three cluster commitment levels.
func ParseCommitment(s string) (Commitment, error) {
	switch c := Commitment(s); c {
	case CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized:
		return c, nil
	default:
		return "", fmt.Errorf("unsupported commitment %q, supported are processed, confirmed and finalized", s)
	}
}

// ErrTransport covers everything that kept a request from getting a
// JSON-RPC answer: connection errors, timeouts, HTTP errors, garbage bodies.
var ErrTransport = errors.New("rpc transport failure")

// Well known server error codes.
const (
	CodeSendTransactionPreflightFailure = -32002
	CodeSignatureVerificationFailure    = -32003
	CodeBlockNotAvailable               = -32004
	CodeNodeUnhealthy                   = -32005
)

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int64
	Message string
	Data    json.RawMessage
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// Transient reports whether the node failed for reasons unrelated to the request.
func (e *RPCError) Transient() bool {
	return e.Code == CodeNodeUnhealthy || e.Code == CodeBlockNotAvailable
}

// LatestBlockhash is the freshness token attached to outgoing transactions.
type LatestBlockhash struct {
	Blockhash            tx.Hash
	LastValidBlockHeight uint64
	Slot                 uint64
}

// SendOptions mirrors the sendTransaction configuration object.
type SendOptions struct {
	SkipPreflight       bool
	PreflightCommitment Commitment
	// MaxRetries is forwarded to the node; nil leaves the node default.
	MaxRetries *uint
}

func (o SendOptions) params() map[string]interface{} {
	params := map[string]interface{}{
		"encoding":      "base64",
		"skipPreflight": o.SkipPreflight,
	}

	if o.PreflightCommitment != "" {
		params["preflightCommitment"] = o.PreflightCommitment
	}
	if o.MaxRetries != nil {
		params["maxRetries"] = *o.MaxRetries
	}

	return params
}

// AccountInfo is the subset of getAccountInfo the client reads.
type AccountInfo struct {
	Lamports   uint64
	Owner      address.PublicKey
	Executable bool
	Data       []byte
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}
