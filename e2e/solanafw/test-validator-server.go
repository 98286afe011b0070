package solanafw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/node"
	"github.com/tidwall/gjson"
)

const (
	hostIP          = "127.0.0.1"
	stopGracePeriod = 10 * time.Second
)

func ResolveTestValidatorBinary() string {
	bin := os.Getenv("SOLANA_TEST_VALIDATOR_BINARY")
	if bin != "" {
		return bin
	}
	// fallback
	return "solana-test-validator"
}

// TestValidatorConfig describes one solana-test-validator process.
type TestValidatorConfig struct {
	Binary     string
	LedgerDir  string
	RPCPort    int
	FaucetPort int
	// Programs maps a program id to the shared object preloaded at genesis.
	Programs map[address.PublicKey]string
	StdOut   io.Writer
}

type TestValidatorOption func(*TestValidatorConfig)

func WithRPCPort(port int) TestValidatorOption {
	return func(c *TestValidatorConfig) {
		c.RPCPort = port
	}
}

func WithProgram(programID address.PublicKey, soPath string) TestValidatorOption {
	return func(c *TestValidatorConfig) {
		c.Programs[programID] = soPath
	}
}

func WithStdout(w io.Writer) TestValidatorOption {
	return func(c *TestValidatorConfig) {
		c.StdOut = w
	}
}

type TestValidator struct {
	t *testing.T

	config  *TestValidatorConfig
	process *Process
	rpc     *node.RPCClient
}

// NewTestValidator starts a fresh validator with a ledger under t.TempDir.
// It is stopped when the test finishes.
func NewTestValidator(t *testing.T, opts ...TestValidatorOption) (*TestValidator, error) {
	t.Helper()

	config := &TestValidatorConfig{
		Binary:     ResolveTestValidatorBinary(),
		LedgerDir:  filepath.Join(t.TempDir(), "ledger"),
		RPCPort:    8899,
		FaucetPort: 9900,
		Programs:   map[address.PublicKey]string{},
		StdOut:     io.Discard,
	}

	for _, opt := range opts {
		opt(config)
	}

	v := &TestValidator{
		t:      t,
		config: config,
		rpc:    node.NewRPCClient(fmt.Sprintf("http://%s:%d", hostIP, config.RPCPort), node.WithTimeout(5*time.Second)),
	}

	if err := v.Start(); err != nil {
		return nil, err
	}

	t.Cleanup(func() {
		if err := v.Stop(); err != nil {
			t.Log("stop test validator", "err", err)
		}
	})

	return v, nil
}

func (v *TestValidator) Start() error {
	args := []string{
		"--reset",
		"--quiet",
		"--ledger", v.config.LedgerDir,
		"--bind-address", hostIP,
		"--rpc-port", strconv.Itoa(v.config.RPCPort),
		"--faucet-port", strconv.Itoa(v.config.FaucetPort),
	}

	for programID, so := range v.config.Programs {
		args = append(args, "--bpf-program", programID.String(), so)
	}

	process, err := StartProcess(v.config.Binary, args, v.config.StdOut)
	if err != nil {
		return err
	}

	v.process = process

	return nil
}

func (v *TestValidator) IsRunning() bool {
	if v.process == nil {
		return false
	}

	_, exited := v.process.Exited()

	return !exited
}

func (v *TestValidator) Stop() error {
	if v.process == nil {
		return nil
	}

	if err := v.process.Stop(stopGracePeriod); err != nil {
		return err
	}

	v.process = nil

	return nil
}

func (v *TestValidator) RPCURL() string {
	return v.rpc.Endpoint()
}

func (v *TestValidator) RPC() *node.RPCClient {
	return v.rpc
}

// Stats queries health and tip of the validator. A validator that is still
// booting reports Healthy false without an error.
func (v *TestValidator) Stats(ctx context.Context) (*TestValidatorStats, error) {
	health, err := v.rpc.Call(ctx, "getHealth")
	if err != nil {
		if errors.Is(err, node.ErrTransport) {
			return &TestValidatorStats{}, nil
		}

		var rpcErr *node.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == node.CodeNodeUnhealthy {
			return &TestValidatorStats{}, nil
		}

		return nil, err
	}

	slot, err := v.rpc.Call(ctx, "getSlot")
	if err != nil {
		return nil, err
	}

	height, err := v.rpc.Call(ctx, "getBlockHeight")
	if err != nil {
		return nil, err
	}

	return &TestValidatorStats{
		Healthy:     health.String() == "ok",
		Slot:        slot.Uint(),
		BlockHeight: height.Uint(),
	}, nil
}

func (v *TestValidator) WaitUntil(timeout, frequency time.Duration, handler func() (bool, error)) error {
	ticker := time.NewTicker(frequency)
	defer ticker.Stop()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return fmt.Errorf("timeout")
		case <-v.process.Done():
			result, _ := v.process.Exited()
			return fmt.Errorf("test validator %s", result)
		case <-ticker.C:
		}

		finish, err := handler()
		if err != nil {
			return err
		} else if finish {
			return nil
		}
	}
}

func (v *TestValidator) WaitForReady(timeout time.Duration) error {
	return v.WaitUntil(timeout, time.Second, func() (bool, error) {
		stats, err := v.Stats(context.Background())
		if err != nil {
			return false, err
		}

		v.t.Log("test validator", "stats", stats)

		return stats.Healthy && stats.BlockHeight > 0, nil
	})
}

// Airdrop funds account from the faucet and waits for the transfer to confirm.
func (v *TestValidator) Airdrop(account address.PublicKey, lamports uint64, timeout time.Duration) error {
	result, err := v.rpc.Call(context.Background(), "requestAirdrop", account.String(), lamports)
	if err != nil {
		return err
	}

	return v.WaitForSignature(result.String(), timeout)
}

// WaitForSignature polls until the transaction reaches confirmed commitment.
func (v *TestValidator) WaitForSignature(signature string, timeout time.Duration) error {
	return v.WaitUntil(timeout, 500*time.Millisecond, func() (bool, error) {
		result, err := v.rpc.Call(context.Background(), "getSignatureStatuses", []string{signature})
		if err != nil {
			return false, err
		}

		status := result.Get("value.0")
		if !status.IsObject() {
			return false, nil
		}

		if txErr := status.Get("err"); txErr.Exists() && txErr.Type != gjson.Null {
			return false, fmt.Errorf("transaction %s failed: %s", signature, txErr.Raw)
		}

		switch status.Get("confirmationStatus").String() {
		case string(node.CommitmentConfirmed), string(node.CommitmentFinalized):
			return true, nil
		default:
			return false, nil
		}
	})
}
