package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/catsfarm/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// StatusResponse is the JSON representation of the account loop state.
type StatusResponse struct {
	Phase          string `json:"phase"`
	PassID         string `json:"pass_id"`
	PassNumber     int    `json:"pass_number"`
	AccountNumber  int    `json:"account_number"`
	AccountCount   int    `json:"account_count"`
	NextPassAt     string `json:"next_pass_at,omitempty"`
	LastFinishedAt string `json:"last_finished_at,omitempty"`
}

// PassResponse is the JSON representation of a journaled pass.
type PassResponse struct {
	ID           string `json:"id"`
	Number       int    `json:"number"`
	AccountCount int    `json:"account_count"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at,omitempty"`
	Finished     bool   `json:"finished"`
	Error        string `json:"error,omitempty"`
}

// AttemptResponse is the JSON representation of a journaled completion attempt.
type AttemptResponse struct {
	ID                    int64  `json:"id"`
	AccountNumber         int    `json:"account_number"`
	AccountName           string `json:"account_name"`
	CredentialFingerprint string `json:"credential_fingerprint"`
	TaskID                int64  `json:"task_id"`
	TaskTitle             string `json:"task_title"`
	Outcome               string `json:"outcome"`
	Reason                string `json:"reason,omitempty"`
	DurationMs            int64  `json:"duration_ms"`
	AttemptedAt           string `json:"attempted_at"`
}

// formatOptionalTime renders t as RFC 3339, or "" for the zero time.
func formatOptionalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toStatusResponse(st model.FarmStatus) StatusResponse {
	return StatusResponse{
		Phase:          string(st.Phase),
		PassID:         st.PassID,
		PassNumber:     st.PassNumber,
		AccountNumber:  st.AccountNumber,
		AccountCount:   st.AccountCount,
		NextPassAt:     formatOptionalTime(st.NextPassAt),
		LastFinishedAt: formatOptionalTime(st.LastFinishedAt),
	}
}

func toPassResponse(p model.Pass) PassResponse {
	return PassResponse{
		ID:           p.ID,
		Number:       p.Number,
		AccountCount: p.AccountCount,
		StartedAt:    p.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:   formatOptionalTime(p.FinishedAt),
		Finished:     p.IsFinished(),
		Error:        p.Error,
	}
}

func toAttemptResponse(a model.Attempt) AttemptResponse {
	return AttemptResponse{
		ID:                    a.ID,
		AccountNumber:         a.AccountNumber,
		AccountName:           a.AccountName,
		CredentialFingerprint: a.CredentialFingerprint,
		TaskID:                a.TaskID,
		TaskTitle:             a.TaskTitle,
		Outcome:               string(a.Outcome.Kind),
		Reason:                a.Outcome.Reason,
		DurationMs:            a.Duration.Milliseconds(),
		AttemptedAt:           a.AttemptedAt.UTC().Format(time.RFC3339),
	}
}
