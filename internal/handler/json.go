// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// errorBody is the error response shape shared by every endpoint.
// message is always human-readable; detail carries upstream diagnostics.
type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message, detail string) {
	writeJSON(w, statusCode, errorBody{Message: message, Detail: detail})
}

// noStore marks a response as uncacheable. Applied to everything that
// reflects admin state or mutable content.
func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}

// decodeJSONBody decodes the request body into dst.
func decodeJSONBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
