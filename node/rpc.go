package node

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/tx"
	"github.com/tidwall/gjson"
)

const (
	DefaultEndpoint = "https://api.devnet.solana.com"
	DefaultTimeout  = 30 * time.Second
)

// RPCClient talks JSON-RPC 2.0 to a cluster node over HTTP.
type RPCClient struct {
	endpoint string
	client   *resty.Client
}

type Option func(*RPCClient)

func WithTimeout(timeout time.Duration) Option {
	return func(c *RPCClient) {
		c.client.SetTimeout(timeout)
	}
}

// WithHTTPClient replaces the underlying http.Client, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *RPCClient) {
		timeout := c.client.GetClient().Timeout
		c.client = resty.NewWithClient(hc)
		if hc.Timeout == 0 {
			c.client.SetTimeout(timeout)
		}
	}
}

func NewRPCClient(endpoint string, opts ...Option) *RPCClient {
	if len(endpoint) == 0 {
		endpoint = DefaultEndpoint
	}

	c := &RPCClient{
		endpoint: endpoint,
		client:   resty.New().SetTimeout(DefaultTimeout),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *RPCClient) Endpoint() string {
	return c.endpoint
}

// Call performs one JSON-RPC request and returns its result member.
func (c *RPCClient) Call(ctx context.Context, method string, params ...interface{}) (gjson.Result, error) {
	request := rpcRequest{
		Jsonrpc: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		Post(c.endpoint)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %s: %w", ErrTransport, method, err)
	}

	body := resp.Body()

	// nodes answer some failures with a json error object and a non-2xx status,
	// so the status is checked only after looking for one
	if gjson.ValidBytes(body) {
		if rpcErr := gjson.GetBytes(body, "error"); rpcErr.Exists() && rpcErr.Type != gjson.Null {
			return gjson.Result{}, &RPCError{
				Code:    rpcErr.Get("code").Int(),
				Message: rpcErr.Get("message").String(),
				Data:    json.RawMessage(rpcErr.Get("data").Raw),
			}
		}
	}

	if resp.IsError() {
		return gjson.Result{}, fmt.Errorf("%w: %s: http status %d", ErrTransport, method, resp.StatusCode())
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: %s: invalid json response", ErrTransport, method)
	}

	result := gjson.GetBytes(body, "result")
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: %s: response has no result", ErrTransport, method)
	}

	return result, nil
}

// GetLatestBlockhash fetches a recent blockhash at the given commitment.
func (c *RPCClient) GetLatestBlockhash(ctx context.Context, commitment Commitment) (LatestBlockhash, error) {
	result, err := c.Call(ctx, "getLatestBlockhash", map[string]interface{}{
		"commitment": commitment,
	})
	if err != nil {
		return LatestBlockhash{}, err
	}

	blockhash, err := tx.NewHash(result.Get("value.blockhash").String())
	if err != nil {
		return LatestBlockhash{}, fmt.Errorf("%w: getLatestBlockhash: %w", ErrTransport, err)
	}

	return LatestBlockhash{
		Blockhash:            blockhash,
		LastValidBlockHeight: result.Get("value.lastValidBlockHeight").Uint(),
		Slot:                 result.Get("context.slot").Uint(),
	}, nil
}

// SendTransaction relays a signed, serialized transaction and returns its
// signature as reported by the node.
func (c *RPCClient) SendTransaction(ctx context.Context, raw []byte, opts SendOptions) (string, error) {
	result, err := c.Call(ctx, "sendTransaction", base64.StdEncoding.EncodeToString(raw), opts.params())
	if err != nil {
		return "", err
	}

	if result.Type != gjson.String || result.String() == "" {
		return "", fmt.Errorf("%w: sendTransaction: unexpected result %s", ErrTransport, result.Raw)
	}

	return result.String(), nil
}

// GetAccountInfo returns nil without error when the account does not exist.
func (c *RPCClient) GetAccountInfo(ctx context.Context, account address.PublicKey, commitment Commitment) (*AccountInfo, error) {
	result, err := c.Call(ctx, "getAccountInfo", account.String(), map[string]interface{}{
		"encoding":   "base64",
		"commitment": commitment,
	})
	if err != nil {
		return nil, err
	}

	value := result.Get("value")
	if !value.Exists() || value.Type == gjson.Null {
		return nil, nil
	}

	owner, err := address.NewPublicKey(value.Get("owner").String())
	if err != nil {
		return nil, fmt.Errorf("%w: getAccountInfo: owner: %w", ErrTransport, err)
	}

	data, err := base64.StdEncoding.DecodeString(value.Get("data.0").String())
	if err != nil {
		return nil, fmt.Errorf("%w: getAccountInfo: data: %w", ErrTransport, err)
	}

	return &AccountInfo{
		Lamports:   value.Get("lamports").Uint(),
		Owner:      owner,
		Executable: value.Get("executable").Bool(),
		Data:       data,
	}, nil
}
