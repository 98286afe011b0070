package wallet_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/node"
	"github.com/milos-ethernal/go-solana-movie-review/tx"
	"github.com/milos-ethernal/go-solana-movie-review/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "pill tomorrow foster begin walnut borrow virtual kick shift mutual shoe scatter"

type fakeConnection struct {
	raw  [][]byte
	opts []node.SendOptions
	sig  string
	err  error
}

func (c *fakeConnection) SendTransaction(_ context.Context, raw []byte, opts node.SendOptions) (string, error) {
	c.raw = append(c.raw, raw)
	c.opts = append(c.opts, opts)

	return c.sig, c.err
}

func newKey() ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(bytes.Repeat([]byte{7}, ed25519.SeedSize))
}

func buildTx(t *testing.T, payer address.PublicKey) *tx.Tx {
	var blockhash tx.Hash
	blockhash[0] = 1

	transaction, err := tx.NewTxBuilder(payer).
		SetRecentBlockhash(blockhash).
		AddInstructions(tx.NewInstruction(address.SystemProgramID, []tx.AccountMeta{
			tx.NewAccountMeta(payer, true, false),
		}, []byte{1})).
		Build()
	require.NoError(t, err)

	return transaction
}

func TestDisconnected(t *testing.T) {
	w := wallet.Disconnected{}

	_, ok := w.Identity()
	assert.False(t, ok)

	_, err := w.SendTransaction(context.Background(), nil, &fakeConnection{}, node.SendOptions{})
	assert.ErrorIs(t, err, wallet.ErrNotConnected)
}

func TestKeypairWalletSignsAndRelays(t *testing.T) {
	w, err := wallet.NewKeypairWallet(newKey())
	require.NoError(t, err)

	pk, ok := w.Identity()
	require.True(t, ok)

	conn := &fakeConnection{sig: "relayed"}
	transaction := buildTx(t, pk)

	sig, err := w.SendTransaction(context.Background(), transaction, conn, node.SendOptions{SkipPreflight: true})
	require.NoError(t, err)
	assert.Equal(t, "relayed", sig)

	require.Len(t, conn.raw, 1)
	assert.True(t, conn.opts[0].SkipPreflight)

	sent, err := tx.UnmarshalTx(conn.raw[0])
	require.NoError(t, err)
	assert.True(t, sent.VerifySignatures())
}

func TestKeypairWalletWrongSigner(t *testing.T) {
	w, err := wallet.NewKeypairWallet(newKey())
	require.NoError(t, err)

	conn := &fakeConnection{}
	_, err = w.SendTransaction(context.Background(), buildTx(t, address.MustPublicKey("CenYq6bDRB7p73EjsPEpiYN7uveyPUTdXkDkgUduboaN")), conn, node.SendOptions{})
	assert.ErrorIs(t, err, tx.ErrUnknownSigner)
	assert.Empty(t, conn.raw)
}

func TestKeypairWalletRejected(t *testing.T) {
	asked := 0
	w, err := wallet.NewKeypairWallet(newKey(), wallet.WithApproval(func(context.Context, *tx.Tx) (bool, error) {
		asked++
		return false, nil
	}))
	require.NoError(t, err)

	pk, _ := w.Identity()
	conn := &fakeConnection{}

	_, err = w.SendTransaction(context.Background(), buildTx(t, pk), conn, node.SendOptions{})
	assert.ErrorIs(t, err, wallet.ErrUserRejected)
	assert.Equal(t, 1, asked)
	assert.Empty(t, conn.raw)
}

func TestNewKeypairWalletInvalid(t *testing.T) {
	_, err := wallet.NewKeypairWallet(ed25519.PrivateKey(make([]byte, 10)))
	assert.ErrorIs(t, err, wallet.ErrInvalidKeypair)

	key := newKey()
	tampered := append(ed25519.PrivateKey{}, key...)
	tampered[63] ^= 0xff
	_, err = wallet.NewKeypairWallet(tampered)
	assert.ErrorIs(t, err, wallet.ErrInvalidKeypair)
}

func writeKeypair(t *testing.T, key []byte) string {
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}

	data, err := json.Marshal(ints)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, data, 0600))

	return path
}

func TestFromKeypairFile(t *testing.T) {
	key := newKey()

	w, err := wallet.FromKeypairFile(writeKeypair(t, key))
	require.NoError(t, err)

	pk, ok := w.Identity()
	require.True(t, ok)
	assert.Equal(t, []byte(key.Public().(ed25519.PublicKey)), pk.Bytes())
}

func TestFromKeypairFileErrors(t *testing.T) {
	_, err := wallet.FromKeypairFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"a keypair"}`), 0600))
	_, err = wallet.FromKeypairFile(path)
	assert.ErrorIs(t, err, wallet.ErrInvalidKeypair)

	require.NoError(t, os.WriteFile(path, []byte(`[1,2,300]`), 0600))
	_, err = wallet.FromKeypairFile(path)
	assert.ErrorIs(t, err, wallet.ErrInvalidKeypair)
}

func TestFromMnemonic(t *testing.T) {
	w, err := wallet.FromMnemonic(testMnemonic, "")
	require.NoError(t, err)

	pk, ok := w.Identity()
	require.True(t, ok)
	assert.Equal(t, "5ZWj7a1f8tWkjBESHKgrLmXshuXxqeY9SYcfbshpAqPG", pk.String())

	_, err = wallet.FromMnemonic("not a real mnemonic", "")
	assert.ErrorIs(t, err, wallet.ErrInvalidKeypair)
}

func TestOpen(t *testing.T) {
	w, err := wallet.Open("", "", "")
	require.NoError(t, err)
	_, ok := w.Identity()
	assert.False(t, ok)

	w, err = wallet.Open("", testMnemonic, "")
	require.NoError(t, err)
	pk, ok := w.Identity()
	assert.True(t, ok)
	assert.Equal(t, "5ZWj7a1f8tWkjBESHKgrLmXshuXxqeY9SYcfbshpAqPG", pk.String())

	w, err = wallet.Open(writeKeypair(t, newKey()), testMnemonic, "")
	require.NoError(t, err)
	pk, _ = w.Identity()
	assert.NotEqual(t, "5ZWj7a1f8tWkjBESHKgrLmXshuXxqeY9SYcfbshpAqPG", pk.String())
}

func TestPromptApproval(t *testing.T) {
	w, err := wallet.NewKeypairWallet(newKey())
	require.NoError(t, err)
	pk, _ := w.Identity()

	for input, expected := range map[string]bool{
		"y\n":    true,
		"YES\n":  true,
		"n\n":    false,
		"\n":     false,
		"":       false,
		"maybe ": false,
	} {
		var out strings.Builder
		approve := wallet.PromptApproval(strings.NewReader(input), &out)

		ok, err := approve(context.Background(), buildTx(t, pk))
		require.NoError(t, err)
		assert.Equal(t, expected, ok, "input %q", input)
		assert.Contains(t, out.String(), "Fee payer:  "+pk.String())
		assert.Contains(t, out.String(), "Approve transaction? [y/N]")
	}
}
