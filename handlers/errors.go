// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/vote"
)

// writeProcessorError maps vote processor errors onto HTTP responses.
// Store failures get a generic message; the processor has already logged
// them.
func writeProcessorError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, vote.ErrPollNotFound), errors.Is(err, vote.ErrTransactionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, vote.ErrDeletionDisabled):
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
	case vote.IsValidation(err):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		middleware.ErrorResponse(w, http.StatusInternalServerError, fallback)
	}
}
