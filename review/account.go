package review

import (
	"errors"
	"fmt"

	"github.com/near/borsh-go"
)

var ErrUninitializedAccount = errors.New("review account is not initialized")

// AccountState is the stored form of a review. The program allocates more
// space than it writes; the tail is zero padding.
type AccountState struct {
	IsInitialized bool
	Rating        uint8
	Title         string
	Description   string
}

// DecodeAccount parses review account data.
func DecodeAccount(data []byte) (*AccountState, error) {
	var state AccountState
	if err := borsh.Deserialize(&state, data); err != nil {
		return nil, fmt.Errorf("decode review account: %w", err)
	}

	if !state.IsInitialized {
		return nil, ErrUninitializedAccount
	}

	return &state, nil
}

// Review converts the stored state back into a Review.
func (s *AccountState) Review() *Review {
	return NewReview(s.Title, s.Rating, s.Description)
}
