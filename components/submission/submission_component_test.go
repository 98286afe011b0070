package submission_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/components/submission"
	"github.com/milos-ethernal/go-solana-movie-review/node"
	"github.com/milos-ethernal/go-solana-movie-review/review"
	"github.com/milos-ethernal/go-solana-movie-review/tx"
	"github.com/milos-ethernal/go-solana-movie-review/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var programID = address.MustPublicKey("CenYq6bDRB7p73EjsPEpiYN7uveyPUTdXkDkgUduboaN")

const testBlockhash = "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N"

// fakeConnection counts calls and records what was relayed.
type fakeConnection struct {
	blockhashCalls int
	sendCalls      int
	accountCalls   int

	commitment node.Commitment
	sent       []byte
	sendOpts   node.SendOptions

	blockhashErr error
	sendErr      error
	account      *node.AccountInfo
	accountErr   error
}

func (c *fakeConnection) GetLatestBlockhash(_ context.Context, commitment node.Commitment) (node.LatestBlockhash, error) {
	c.blockhashCalls++
	c.commitment = commitment

	if c.blockhashErr != nil {
		return node.LatestBlockhash{}, c.blockhashErr
	}

	hash, err := tx.NewHash(testBlockhash)
	if err != nil {
		return node.LatestBlockhash{}, err
	}

	return node.LatestBlockhash{Blockhash: hash, LastValidBlockHeight: 100, Slot: 10}, nil
}

func (c *fakeConnection) SendTransaction(_ context.Context, raw []byte, opts node.SendOptions) (string, error) {
	c.sendCalls++
	c.sent = raw
	c.sendOpts = opts

	if c.sendErr != nil {
		return "", c.sendErr
	}

	decoded, err := tx.UnmarshalTx(raw)
	if err != nil {
		return "", err
	}

	return decoded.Signature()
}

func (c *fakeConnection) GetAccountInfo(context.Context, address.PublicKey, node.Commitment) (*node.AccountInfo, error) {
	c.accountCalls++
	return c.account, c.accountErr
}

func (c *fakeConnection) networkCalls() int {
	return c.blockhashCalls + c.sendCalls + c.accountCalls
}

// stubWallet reports a fixed identity and fails sends with err.
type stubWallet struct {
	pk  address.PublicKey
	err error
}

func (w stubWallet) Identity() (address.PublicKey, bool) {
	return w.pk, true
}

func (w stubWallet) SendTransaction(context.Context, *tx.Tx, wallet.Connection, node.SendOptions) (string, error) {
	return "", w.err
}

func newWallet(t *testing.T) *wallet.KeypairWallet {
	w, err := wallet.NewKeypairWallet(ed25519.NewKeyFromSeed(bytes.Repeat([]byte{3}, ed25519.SeedSize)))
	require.NoError(t, err)

	return w
}

func newClient(t *testing.T, conn *fakeConnection) *submission.Client {
	return submission.NewClient(programID, conn, zaptest.NewLogger(t))
}

func TestSubmitInception(t *testing.T) {
	conn := &fakeConnection{}
	w := newWallet(t)
	submitter, _ := w.Identity()

	sig, err := newClient(t, conn).Submit(context.Background(), review.NewReview("Inception", 5, "Mind-bending"), w)
	require.NoError(t, err)

	assert.NotEmpty(t, sig)
	assert.Equal(t, 1, conn.blockhashCalls)
	assert.Equal(t, 1, conn.sendCalls)
	assert.Equal(t, node.CommitmentConfirmed, conn.commitment)
	assert.True(t, conn.sendOpts.SkipPreflight)

	sent, err := tx.UnmarshalTx(conn.sent)
	require.NoError(t, err)
	assert.True(t, sent.VerifySignatures())

	expectedSig, err := sent.Signature()
	require.NoError(t, err)
	assert.Equal(t, expectedSig, sig)

	pda, _, err := review.DeriveAddress(submitter, "Inception", programID)
	require.NoError(t, err)

	msg := sent.Message
	assert.Equal(t, testBlockhash, msg.RecentBlockhash.String())
	assert.Equal(t, []address.PublicKey{submitter, pda, address.SystemProgramID, programID}, msg.AccountKeys)

	require.Len(t, msg.Instructions, 1)
	ix := msg.Instructions[0]
	assert.Equal(t, programID, msg.AccountKeys[ix.ProgramIDIndex])
	assert.Equal(t, []uint8{0, 1, 2}, ix.Accounts)

	payload, err := review.NewReview("Inception", 5, "Mind-bending").Serialize()
	require.NoError(t, err)
	assert.Equal(t, payload, ix.Data)
}

func TestSubmitWithoutWallet(t *testing.T) {
	conn := &fakeConnection{}

	sig, err := newClient(t, conn).Submit(context.Background(), review.NewReview("Inception", 5, "Mind-bending"), wallet.Disconnected{})
	assert.ErrorIs(t, err, submission.ErrMissingWallet)
	assert.Equal(t, "connect your wallet first", err.Error())
	assert.Empty(t, sig)
	assert.Equal(t, 0, conn.networkCalls())
	assert.Equal(t, submission.KindMissingWallet, submission.Classify(err))
}

func TestSubmitNilWallet(t *testing.T) {
	conn := &fakeConnection{}

	sig, err := newClient(t, conn).Submit(context.Background(), review.NewReview("Inception", 5, "Mind-bending"), nil)
	assert.ErrorIs(t, err, submission.ErrMissingWallet)
	assert.Empty(t, sig)
	assert.Equal(t, 0, conn.networkCalls())
}

func TestSubmitNilReview(t *testing.T) {
	conn := &fakeConnection{}

	_, err := newClient(t, conn).Submit(context.Background(), nil, newWallet(t))
	assert.ErrorIs(t, err, submission.ErrInvalidReview)
	assert.Equal(t, 0, conn.networkCalls())
}

func TestSubmitInvalidReview(t *testing.T) {
	for _, r := range []*review.Review{
		review.NewReview("Inception", 0, "Mind-bending"),
		review.NewReview("Inception", 6, "Mind-bending"),
		review.NewReview("", 3, "Mind-bending"),
		review.NewReview(strings.Repeat("t", 33), 3, "Mind-bending"),
		review.NewReview("I\xff", 5, "x"),
		review.NewReview("Inception", 5, "Mind\xc3\x28bending"),
	} {
		conn := &fakeConnection{}

		_, err := newClient(t, conn).Submit(context.Background(), r, newWallet(t))
		assert.ErrorIs(t, err, submission.ErrInvalidReview)
		assert.Equal(t, submission.KindInvalidReview, submission.Classify(err))
		assert.Equal(t, 0, conn.networkCalls(), "%+v", r)
	}
}

func TestSubmitOversizedReview(t *testing.T) {
	conn := &fakeConnection{}

	_, err := newClient(t, conn).Submit(context.Background(), review.NewReview("Heat", 4, strings.Repeat("long ", 300)), newWallet(t))
	assert.ErrorIs(t, err, submission.ErrInvalidReview)
	assert.ErrorIs(t, err, tx.ErrTransactionTooLarge)
	assert.Equal(t, 0, conn.sendCalls)
}

func TestSubmitBlockhashFailure(t *testing.T) {
	conn := &fakeConnection{blockhashErr: fmt.Errorf("%w: dial tcp: connection refused", node.ErrTransport)}

	_, err := newClient(t, conn).Submit(context.Background(), review.NewReview("Inception", 5, "Mind-bending"), newWallet(t))
	assert.ErrorIs(t, err, submission.ErrNetworkFailure)
	assert.ErrorIs(t, err, node.ErrTransport)
	assert.Equal(t, 1, conn.blockhashCalls)
	assert.Equal(t, 0, conn.sendCalls)
}

func TestSubmitSendFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind submission.Kind
	}{
		{"user cancelled", wallet.ErrUserRejected, submission.KindSubmissionRejected},
		{"validator rejected", &node.RPCError{Code: node.CodeSignatureVerificationFailure, Message: "bad sig"}, submission.KindSubmissionRejected},
		{"node unhealthy", &node.RPCError{Code: node.CodeNodeUnhealthy, Message: "behind"}, submission.KindNetworkFailure},
		{"transport", fmt.Errorf("%w: timeout", node.ErrTransport), submission.KindNetworkFailure},
		{"deadline", context.DeadlineExceeded, submission.KindNetworkFailure},
		{"wallet went away", wallet.ErrNotConnected, submission.KindMissingWallet},
		{"opaque", errors.New("wallet exploded"), submission.KindSubmissionRejected},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			conn := &fakeConnection{}
			w := stubWallet{pk: address.MustPublicKey("5ZWj7a1f8tWkjBESHKgrLmXshuXxqeY9SYcfbshpAqPG"), err: c.err}

			_, err := newClient(t, conn).Submit(context.Background(), review.NewReview("Inception", 5, "Mind-bending"), w)
			require.Error(t, err)
			assert.ErrorIs(t, err, c.err)
			assert.Equal(t, c.kind, submission.Classify(err))
			assert.Equal(t, 1, conn.blockhashCalls)
		})
	}
}

func TestSubmitRejectedByApproval(t *testing.T) {
	conn := &fakeConnection{}
	w, err := wallet.NewKeypairWallet(ed25519.NewKeyFromSeed(bytes.Repeat([]byte{3}, ed25519.SeedSize)),
		wallet.WithApproval(func(context.Context, *tx.Tx) (bool, error) { return false, nil }))
	require.NoError(t, err)

	_, err = newClient(t, conn).Submit(context.Background(), review.NewReview("Inception", 5, "Mind-bending"), w)
	assert.ErrorIs(t, err, submission.ErrSubmissionRejected)
	assert.ErrorIs(t, err, wallet.ErrUserRejected)
	assert.Equal(t, 0, conn.sendCalls)
}

func TestSubmitRelayedRPCError(t *testing.T) {
	conn := &fakeConnection{sendErr: &node.RPCError{Code: node.CodeSendTransactionPreflightFailure, Message: "simulation failed"}}

	_, err := newClient(t, conn).Submit(context.Background(), review.NewReview("Inception", 5, "Mind-bending"), newWallet(t))
	assert.ErrorIs(t, err, submission.ErrSubmissionRejected)
	assert.Equal(t, 1, conn.sendCalls)
}

func TestReviewAddressIsDeterministic(t *testing.T) {
	client := newClient(t, &fakeConnection{})
	submitter, _ := newWallet(t).Identity()

	first, bump, err := client.ReviewAddress(submitter, "Inception")
	require.NoError(t, err)

	second, bumpAgain, err := client.ReviewAddress(submitter, "Inception")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, bump, bumpAgain)

	_, _, err = client.ReviewAddress(submitter, strings.Repeat("x", 40))
	assert.ErrorIs(t, err, submission.ErrInvalidReview)
}

func TestFetchReview(t *testing.T) {
	data := []byte{1, 5, 9, 0, 0, 0}
	data = append(data, "Inception"...)
	data = append(data, 12, 0, 0, 0)
	data = append(data, "Mind-bending"...)
	data = append(data, make([]byte, 100)...)

	conn := &fakeConnection{account: &node.AccountInfo{Owner: programID, Data: data}}
	submitter, _ := newWallet(t).Identity()

	state, err := newClient(t, conn).FetchReview(context.Background(), submitter, "Inception")
	require.NoError(t, err)
	assert.Equal(t, "Inception", state.Title)
	assert.Equal(t, uint8(5), state.Rating)
	assert.Equal(t, "Mind-bending", state.Description)
}

func TestFetchReviewMissing(t *testing.T) {
	conn := &fakeConnection{}
	submitter, _ := newWallet(t).Identity()

	_, err := newClient(t, conn).FetchReview(context.Background(), submitter, "Inception")
	assert.ErrorIs(t, err, submission.ErrReviewNotFound)
}

func TestFetchReviewWrongOwner(t *testing.T) {
	conn := &fakeConnection{account: &node.AccountInfo{Owner: address.SystemProgramID, Data: []byte{1}}}
	submitter, _ := newWallet(t).Identity()

	_, err := newClient(t, conn).FetchReview(context.Background(), submitter, "Inception")
	assert.ErrorContains(t, err, "not the review program")
}

func TestFetchReviewNetworkFailure(t *testing.T) {
	conn := &fakeConnection{accountErr: fmt.Errorf("%w: refused", node.ErrTransport)}
	submitter, _ := newWallet(t).Identity()

	_, err := newClient(t, conn).FetchReview(context.Background(), submitter, "Inception")
	assert.ErrorIs(t, err, submission.ErrNetworkFailure)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "missing_wallet", submission.KindMissingWallet.String())
	assert.Equal(t, "network_failure", submission.KindNetworkFailure.String())
	assert.Equal(t, "none", submission.Classify(nil).String())
	assert.Equal(t, submission.KindUnknown, submission.Classify(errors.New("other")))
}
