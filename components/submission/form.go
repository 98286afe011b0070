package submission

import (
	"context"

	"github.com/milos-ethernal/go-solana-movie-review/review"
	"github.com/milos-ethernal/go-solana-movie-review/wallet"
)

// Form holds the fields of one review form. It belongs to a single caller
// and is not safe for concurrent use. Fields are cleared after every
// submission attempt, successful or not.
type Form struct {
	client *Client

	title       string
	description string
	rating      uint8
}

func NewForm(client *Client) *Form {
	return &Form{client: client}
}

func (f *Form) SetTitle(title string) {
	f.title = title
}

func (f *Form) SetDescription(description string) {
	f.description = description
}

// SelectRating records a click on the star-th star.
func (f *Form) SelectRating(star uint8) {
	f.rating = star
}

func (f *Form) Title() string       { return f.title }
func (f *Form) Description() string { return f.description }
func (f *Form) Rating() uint8       { return f.rating }

// Review snapshots the current fields.
func (f *Form) Review() *review.Review {
	return review.NewReview(f.title, f.rating, f.description)
}

// Submit sends the current fields with w and resets the form.
func (f *Form) Submit(ctx context.Context, w wallet.Wallet) (string, error) {
	r := f.Review()
	defer f.Reset()

	return f.client.Submit(ctx, r, w)
}

func (f *Form) Reset() {
	f.title = ""
	f.description = ""
	f.rating = 0
}
