// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

WithLogging is built once with the log salt and wraps each route:

	logged := middleware.WithLogging(cfg.LogSalt)
	mux.HandleFunc("GET /polls", logged(pollHandler.ListPolls))

Completion is logged at info level with method, path, status, duration_ms
and a salted hash of the client address.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows GET, POST, DELETE and OPTIONS from any origin. Preflight requests are
answered with 204 without reaching the mux.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

ParseJSONBody reads at most 64 KiB and reports ErrEmptyBody for an empty
request.

# Downloads

	middleware.AttachmentResponse(w, "transactions_export.csv", "text/csv", body)

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP.
*/
package middleware
