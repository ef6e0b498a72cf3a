package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body for every API endpoint. Failures
// carry success=false and a human-readable message; data is omitted.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a success envelope.
func WriteSuccess(w http.ResponseWriter, code int, data any, message string) {
	WriteJSON(w, code, Envelope{Success: true, Data: data, Message: message})
}

// WriteFailure writes a failure envelope. The message must be safe to show
// to callers; log the detailed error separately.
func WriteFailure(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Envelope{Success: false, Message: message})
}

// NoCache marks the response as non-cacheable. Required for anything that
// carries tokens or credentials.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
