// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/service"
)

// maxRelayBody bounds the JSON accepted by the relay.
const maxRelayBody = 64 << 10

// RelayResponse is the relay's only response shape.
type RelayResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// RelayHandler accepts company contacts posted by other front ends and
// writes them with the privileged store.
type RelayHandler struct {
	submissions *service.Submissions
	logger      *slog.Logger
}

// NewRelayHandler creates the relay handler.
func NewRelayHandler(submissions *service.Submissions, logger *slog.Logger) *RelayHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelayHandler{submissions: submissions, logger: logger}
}

// Contact handles POST /api/contact. Every failure answers 400 with the
// error text; success answers 200 {"ok":true}.
func (h *RelayHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var body model.RelayContact
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRelayBody))
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, RelayResponse{Error: "invalid JSON body"})
		return
	}

	if _, err := h.submissions.SubmitRelay(r.Context(), body); err != nil {
		h.logger.Warn("relay contact rejected", "error", err)
		writeJSON(w, http.StatusBadRequest, RelayResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, RelayResponse{OK: true})
}
