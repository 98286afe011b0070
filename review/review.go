// Package review holds the movie review record and its on-chain encodings.
package review

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/near/borsh-go"
)

const (
	MinRating = 1
	MaxRating = 5

	// VariantAddReview selects the add-review handler of the program.
	VariantAddReview uint8 = 0
)

var (
	ErrInvalidReview = errors.New("invalid review")
	ErrTitleTooLong  = fmt.Errorf("%w: title must fit in %d bytes", ErrInvalidReview, address.MaxSeedLength)
)

var validate = validator.New()

// Review is what a user submits through the form.
type Review struct {
	Title       string `validate:"required"`
	Rating      uint8  `validate:"min=1,max=5"`
	Description string `validate:"required"`
}

func NewReview(title string, rating uint8, description string) *Review {
	return &Review{
		Title:       title,
		Rating:      rating,
		Description: description,
	}
}

// Validate rejects reviews the program would refuse or that cannot be
// addressed: empty fields, ratings outside [1,5], text that is not UTF-8
// and titles longer than a seed.
func (r *Review) Validate() error {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrInvalidReview, err)
		}

		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, describe(fe))
		}

		return fmt.Errorf("%w: %s", ErrInvalidReview, strings.Join(msgs, "; "))
	}

	if !utf8.ValidString(r.Title) {
		return fmt.Errorf("%w: title is not valid UTF-8", ErrInvalidReview)
	}
	if !utf8.ValidString(r.Description) {
		return fmt.Errorf("%w: description is not valid UTF-8", ErrInvalidReview)
	}

	if len(r.Title) > address.MaxSeedLength {
		return ErrTitleTooLong
	}

	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return strings.ToLower(fe.Field()) + " is required"
	case "min", "max":
		return fmt.Sprintf("%s must be between %d and %d", strings.ToLower(fe.Field()), MinRating, MaxRating)
	default:
		return fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
	}
}

// instructionData is the borsh layout of the add-review instruction.
type instructionData struct {
	Variant     uint8
	Title       string
	Rating      uint8
	Description string
}

// Serialize validates the review and encodes the instruction payload.
func (r *Review) Serialize() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	return borsh.Serialize(instructionData{
		Variant:     VariantAddReview,
		Title:       r.Title,
		Rating:      r.Rating,
		Description: r.Description,
	})
}

// Seeds returns the PDA seeds of the review account: submitter then title.
func Seeds(submitter address.PublicKey, title string) [][]byte {
	return [][]byte{submitter.Bytes(), []byte(title)}
}

// DeriveAddress computes the account a submitter's review of title lives at.
func DeriveAddress(submitter address.PublicKey, title string, programID address.PublicKey) (address.PublicKey, uint8, error) {
	return address.FindProgramAddress(Seeds(submitter, title), programID)
}
