// Package server exposes the broker's HTTP JSON API.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/groblegark/relay/internal/broker"
)

// RelayServer serves the broker over HTTP.
type RelayServer struct {
	broker *broker.Broker
}

// NewRelayServer returns a server backed by the given broker.
func NewRelayServer(b *broker.Broker) *RelayServer {
	return &RelayServer{broker: b}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
