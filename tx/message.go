package tx

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/milos-ethernal/go-solana-movie-review/address"
)

// HashLength is the size of a blockhash.
const HashLength = 32

var (
	ErrInvalidHash      = errors.New("invalid blockhash")
	ErrTooManyAccounts  = errors.New("message references more than 256 accounts")
	ErrMissingFeePayer  = errors.New("fee payer is required")
	ErrMissingBlockhash = errors.New("recent blockhash is required")
	ErrNoInstructions   = errors.New("no instructions provided")
)

// Hash is a recent blockhash binding a transaction to a validity window.
type Hash [HashLength]byte

// NewHash decodes a base58 blockhash as returned by the RPC node.
func NewHash(s string) (h Hash, err error) {
	raw := base58.Decode(s)
	if len(raw) != HashLength {
		err = fmt.Errorf("%w: %q", ErrInvalidHash, s)
		return
	}

	copy(h[:], raw)

	return
}

func (h Hash) String() string {
	return base58.Encode(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

type MessageHeader struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

// Message is the signed part of a transaction.
type Message struct {
	Header          MessageHeader
	AccountKeys     []address.PublicKey
	RecentBlockhash Hash
	Instructions    []CompiledInstruction
}

// CompileMessage orders and deduplicates every account referenced by the
// instructions. The fee payer always comes first as a writable signer.
func CompileMessage(feePayer address.PublicKey, blockhash Hash, instructions []*Instruction) (*Message, error) {
	if feePayer.IsZero() {
		return nil, ErrMissingFeePayer
	}
	if blockhash.IsZero() {
		return nil, ErrMissingBlockhash
	}
	if len(instructions) == 0 {
		return nil, ErrNoInstructions
	}

	metas := []AccountMeta{NewAccountMeta(feePayer, true, true)}
	index := map[address.PublicKey]int{feePayer: 0}

	add := func(meta AccountMeta) {
		if i, ok := index[meta.PublicKey]; ok {
			metas[i].IsSigner = metas[i].IsSigner || meta.IsSigner
			metas[i].IsWritable = metas[i].IsWritable || meta.IsWritable
			return
		}

		index[meta.PublicKey] = len(metas)
		metas = append(metas, meta)
	}

	for _, ix := range instructions {
		for _, meta := range ix.Accounts {
			add(meta)
		}
	}
	for _, ix := range instructions {
		add(NewAccountMeta(ix.ProgramID, false, false))
	}

	if len(metas) > 256 {
		return nil, ErrTooManyAccounts
	}

	// fee payer stays at slot 0, the rest is grouped by access
	ordered := make([]AccountMeta, 0, len(metas))
	ordered = append(ordered, metas[0])
	for _, group := range []struct{ signer, writable bool }{
		{true, true}, {true, false}, {false, true}, {false, false},
	} {
		for _, meta := range metas[1:] {
			if meta.IsSigner == group.signer && meta.IsWritable == group.writable {
				ordered = append(ordered, meta)
			}
		}
	}

	msg := &Message{
		RecentBlockhash: blockhash,
		AccountKeys:     make([]address.PublicKey, len(ordered)),
	}

	position := make(map[address.PublicKey]uint8, len(ordered))
	for i, meta := range ordered {
		msg.AccountKeys[i] = meta.PublicKey
		position[meta.PublicKey] = uint8(i)

		switch {
		case meta.IsSigner:
			msg.Header.NumRequiredSignatures++
			if !meta.IsWritable {
				msg.Header.NumReadonlySignedAccounts++
			}
		case !meta.IsWritable:
			msg.Header.NumReadonlyUnsignedAccounts++
		}
	}

	for _, ix := range instructions {
		compiled := CompiledInstruction{
			ProgramIDIndex: position[ix.ProgramID],
			Accounts:       make([]uint8, len(ix.Accounts)),
			Data:           ix.Data,
		}
		for i, meta := range ix.Accounts {
			compiled.Accounts[i] = position[meta.PublicKey]
		}

		msg.Instructions = append(msg.Instructions, compiled)
	}

	return msg, nil
}

// Signers returns the keys that must sign, in signature slot order.
func (m *Message) Signers() []address.PublicKey {
	return m.AccountKeys[:m.Header.NumRequiredSignatures]
}

// IsWritable reports whether the account at index i is writable.
func (m *Message) IsWritable(i int) bool {
	h := m.Header
	if i < int(h.NumRequiredSignatures) {
		return i < int(h.NumRequiredSignatures-h.NumReadonlySignedAccounts)
	}

	return i < len(m.AccountKeys)-int(h.NumReadonlyUnsignedAccounts)
}

// Bytes serializes the message in the legacy wire layout.
func (m *Message) Bytes() ([]byte, error) {
	var err error

	out := []byte{
		m.Header.NumRequiredSignatures,
		m.Header.NumReadonlySignedAccounts,
		m.Header.NumReadonlyUnsignedAccounts,
	}

	if out, err = EncodeCompactU16(out, len(m.AccountKeys)); err != nil {
		return nil, err
	}
	for _, key := range m.AccountKeys {
		out = append(out, key[:]...)
	}

	out = append(out, m.RecentBlockhash[:]...)

	if out, err = EncodeCompactU16(out, len(m.Instructions)); err != nil {
		return nil, err
	}
	for _, ix := range m.Instructions {
		out = append(out, ix.ProgramIDIndex)

		if out, err = EncodeCompactU16(out, len(ix.Accounts)); err != nil {
			return nil, err
		}
		out = append(out, ix.Accounts...)

		if out, err = EncodeCompactU16(out, len(ix.Data)); err != nil {
			return nil, err
		}
		out = append(out, ix.Data...)
	}

	return out, nil
}

// UnmarshalMessage parses a legacy message and returns the unread tail.
func UnmarshalMessage(data []byte) (*Message, []byte, error) {
	r := &reader{data: data}
	msg := &Message{}

	msg.Header.NumRequiredSignatures = r.readByte()
	msg.Header.NumReadonlySignedAccounts = r.readByte()
	msg.Header.NumReadonlyUnsignedAccounts = r.readByte()

	numKeys := r.compactU16()
	for i := 0; i < numKeys && r.err == nil; i++ {
		var key address.PublicKey
		copy(key[:], r.next(address.PublicKeyLength))
		msg.AccountKeys = append(msg.AccountKeys, key)
	}

	copy(msg.RecentBlockhash[:], r.next(HashLength))

	numInstructions := r.compactU16()
	for i := 0; i < numInstructions && r.err == nil; i++ {
		var ix CompiledInstruction

		ix.ProgramIDIndex = r.readByte()
		ix.Accounts = append([]uint8{}, r.next(r.compactU16())...)
		ix.Data = append([]byte{}, r.next(r.compactU16())...)

		msg.Instructions = append(msg.Instructions, ix)
	}

	if r.err != nil {
		return nil, nil, fmt.Errorf("unmarshal message: %w", r.err)
	}

	return msg, r.data, nil
}
