// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import "errors"

// Validation errors. Their text is shown to the user as-is.
var (
	ErrNameRequired         = errors.New("please enter your name")
	ErrOptionRequired       = errors.New("please select an option")
	ErrInvalidOption        = errors.New("selected option does not exist")
	ErrInvalidDonation      = errors.New("donation must be a non-negative amount")
	ErrDonationBelowMinimum = errors.New("donation is below the minimum")
	ErrPollNotFound         = errors.New("poll not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrDeletionDisabled     = errors.New("transaction deletion is disabled")
	ErrInvalidPoll          = errors.New("poll needs a title and at least two distinct options")
)

// IsValidation reports whether err was caused by bad input rather than by
// the store.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrNameRequired, ErrOptionRequired, ErrInvalidOption,
		ErrInvalidDonation, ErrDonationBelowMinimum, ErrInvalidPoll,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
