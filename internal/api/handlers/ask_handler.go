package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lectern-ai/lectern/internal/services"
)

type AskHandler struct {
	answers *services.AnswerService
}

func NewAskHandler(answers *services.AnswerService) *AskHandler {
	return &AskHandler{answers: answers}
}

// AskRequest mirrors the payload the CMS assistant block submits: the
// question plus the content hashes of the documents visible to the caller.
type AskRequest struct {
	UserInput string   `json:"user_input"`
	Documents []string `json:"documents"`
}

// Ask runs the retrieval pipeline. The body is always a well-formed JSON
// payload: {response} on success, {message} when nothing relevant was
// found, {error} on failure.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, services.AnswerResult{Error: "invalid request body"})
		return
	}
	if req.UserInput == "" {
		writeJSON(w, http.StatusBadRequest, services.AnswerResult{Error: "user_input is required"})
		return
	}

	res := h.answers.Answer(r.Context(), req.UserInput, req.Documents)
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
