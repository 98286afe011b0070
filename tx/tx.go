package tx

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/milos-ethernal/go-solana-movie-review/address"
)

// MaxTransactionSize is the largest serialized transaction a validator
// accepts (IPv6 MTU minus headers).
const MaxTransactionSize = 1232

var (
	ErrTransactionTooLarge = errors.New("transaction too large")
	ErrUnknownSigner       = errors.New("signer is not required by this transaction")
	ErrNotSigned           = errors.New("transaction has no signature")
)

// Tx is a message together with one signature slot per required signer.
type Tx struct {
	Signatures []Signature
	Message    Message
}

// NewTx wraps a compiled message with empty signature slots.
func NewTx(msg *Message) *Tx {
	return &Tx{
		Signatures: make([]Signature, msg.Header.NumRequiredSignatures),
		Message:    *msg,
	}
}

// FeePayer is the first signer of the message.
func (t *Tx) FeePayer() address.PublicKey {
	return t.Message.AccountKeys[0]
}

// Sign signs the serialized message with every key and stores each
// signature in the slot of its public key.
func (t *Tx) Sign(keys ...ed25519.PrivateKey) error {
	msg, err := t.Message.Bytes()
	if err != nil {
		return err
	}

	signers := t.Message.Signers()

	for _, key := range keys {
		pub, err := address.PublicKeyFromBytes(key.Public().(ed25519.PublicKey))
		if err != nil {
			return err
		}

		slot := -1
		for i, signer := range signers {
			if signer.Equals(pub) {
				slot = i
				break
			}
		}

		if slot < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownSigner, pub)
		}

		t.Signatures[slot] = NewSignature(ed25519.Sign(key, msg))
	}

	return nil
}

// VerifySignatures checks every filled signature slot against the message.
func (t *Tx) VerifySignatures() bool {
	msg, err := t.Message.Bytes()
	if err != nil {
		return false
	}

	for i, signer := range t.Message.Signers() {
		if i >= len(t.Signatures) || t.Signatures[i].IsZero() {
			return false
		}

		if !ed25519.Verify(signer.Bytes(), msg, t.Signatures[i][:]) {
			return false
		}
	}

	return true
}

// Signature returns the fee payer signature, which is the transaction id.
func (t *Tx) Signature() (string, error) {
	if len(t.Signatures) == 0 || t.Signatures[0].IsZero() {
		return "", ErrNotSigned
	}

	return t.Signatures[0].String(), nil
}

// Bytes serializes the transaction for submission.
func (t *Tx) Bytes() ([]byte, error) {
	msg, err := t.Message.Bytes()
	if err != nil {
		return nil, err
	}

	out, err := EncodeCompactU16(make([]byte, 0, MaxTransactionSize), len(t.Signatures))
	if err != nil {
		return nil, err
	}
	for _, sig := range t.Signatures {
		out = append(out, sig[:]...)
	}
	out = append(out, msg...)

	if len(out) > MaxTransactionSize {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrTransactionTooLarge, len(out), MaxTransactionSize)
	}

	return out, nil
}

// Base64 returns the serialized transaction in the encoding sendTransaction expects.
func (t *Tx) Base64() (string, error) {
	raw, err := t.Bytes()
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

// UnmarshalTx parses a serialized transaction.
func UnmarshalTx(data []byte) (*Tx, error) {
	r := &reader{data: data}

	count := r.compactU16()
	sigs := make([]Signature, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		sigs = append(sigs, NewSignature(r.next(SignatureLength)))
	}

	if r.err != nil {
		return nil, fmt.Errorf("unmarshal signatures: %w", r.err)
	}

	msg, rest, err := UnmarshalMessage(r.data)
	if err != nil {
		return nil, err
	}

	if len(rest) != 0 {
		return nil, fmt.Errorf("unmarshal transaction: %d trailing bytes", len(rest))
	}

	return &Tx{Signatures: sigs, Message: *msg}, nil
}
