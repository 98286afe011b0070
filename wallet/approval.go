package wallet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/milos-ethernal/go-solana-movie-review/tx"
)

// PromptApproval asks on out and reads a y/N answer from in.
func PromptApproval(in io.Reader, out io.Writer) ApprovalFunc {
	scanner := bufio.NewScanner(in)

	return func(ctx context.Context, transaction *tx.Tx) (bool, error) {
		msg := transaction.Message

		fmt.Fprintf(out, "Fee payer:  %s\n", transaction.FeePayer())
		for i, ix := range msg.Instructions {
			fmt.Fprintf(out, "Instruction %d: program %s, %d accounts, %d bytes of data\n",
				i, msg.AccountKeys[ix.ProgramIDIndex], len(ix.Accounts), len(ix.Data))
		}
		fmt.Fprint(out, "Approve transaction? [y/N] ")

		if err := ctx.Err(); err != nil {
			return false, err
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return false, err
			}

			// EOF counts as a refusal
			return false, nil
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
