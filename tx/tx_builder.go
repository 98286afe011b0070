package tx

import (
	"github.com/milos-ethernal/go-solana-movie-review/address"
)

// TxBuilder assembles a single transaction. Every submission builds a
// fresh one; builders are not reused.
type TxBuilder struct {
	feePayer     address.PublicKey
	blockhash    Hash
	instructions []*Instruction
}

// NewTxBuilder returns a builder paying fees from feePayer.
func NewTxBuilder(feePayer address.PublicKey) *TxBuilder {
	return &TxBuilder{
		feePayer: feePayer,
	}
}

func (tb *TxBuilder) SetFeePayer(feePayer address.PublicKey) *TxBuilder {
	tb.feePayer = feePayer
	return tb
}

// SetRecentBlockhash binds the transaction to the validity window of blockhash.
func (tb *TxBuilder) SetRecentBlockhash(blockhash Hash) *TxBuilder {
	tb.blockhash = blockhash
	return tb
}

// AddInstructions appends instructions in execution order.
func (tb *TxBuilder) AddInstructions(instructions ...*Instruction) *TxBuilder {
	tb.instructions = append(tb.instructions, instructions...)
	return tb
}

func (tb *TxBuilder) Instructions() []*Instruction {
	return tb.instructions
}

// Build compiles the message and returns an unsigned transaction.
func (tb *TxBuilder) Build() (*Tx, error) {
	msg, err := CompileMessage(tb.feePayer, tb.blockhash, tb.instructions)
	if err != nil {
		return nil, err
	}

	return NewTx(msg), nil
}
