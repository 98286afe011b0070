package tx

import (
	"github.com/milos-ethernal/go-solana-movie-review/address"
)

// AccountMeta describes one account an instruction touches and how.
type AccountMeta struct {
	PublicKey  address.PublicKey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta returns an AccountMeta for pk with the given access flags.
func NewAccountMeta(pk address.PublicKey, isSigner, isWritable bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pk,
		IsSigner:   isSigner,
		IsWritable: isWritable,
	}
}

// Instruction is a single directive for an on-chain program.
type Instruction struct {
	ProgramID address.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// NewInstruction creates an Instruction. Accounts keep the order given.
func NewInstruction(programID address.PublicKey, accounts []AccountMeta, data []byte) *Instruction {
	return &Instruction{
		ProgramID: programID,
		Accounts:  accounts,
		Data:      data,
	}
}

// CompiledInstruction is an Instruction with accounts replaced by indexes
// into the message account list.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}
