package txhelper

import (
	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/tx"
)

// ReviewAccounts lists the accounts of an add-review instruction in the
// order the program reads them.
func ReviewAccounts(submitter, reviewAccount address.PublicKey) []tx.AccountMeta {
	return []tx.AccountMeta{
		tx.NewAccountMeta(submitter, true, false),
		tx.NewAccountMeta(reviewAccount, false, true),
		tx.NewAccountMeta(address.SystemProgramID, false, false),
	}
}

// BuildReviewInstruction wraps a serialized review for the program.
func BuildReviewInstruction(programID, submitter, reviewAccount address.PublicKey, payload []byte) *tx.Instruction {
	return tx.NewInstruction(programID, ReviewAccounts(submitter, reviewAccount), payload)
}

// BuildReviewTx assembles the fee-paying, single instruction transaction.
func BuildReviewTx(submitter address.PublicKey, blockhash tx.Hash, instruction *tx.Instruction) (*tx.Tx, error) {
	return tx.NewTxBuilder(submitter).
		SetRecentBlockhash(blockhash).
		AddInstructions(instruction).
		Build()
}
