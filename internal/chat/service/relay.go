// Package service relays chat messages, with history, to the generation API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"gemini-chat/backend/internal/chat/domain"
	"gemini-chat/backend/internal/chat/gemini"
)

// Sentinel errors for the relay; the handler maps them to HTTP statuses.
var (
	ErrEmptyMessage = errors.New("message is required")
	// ErrUpstream wraps any failure from the generation API.
	ErrUpstream = errors.New("upstream error")
)

// emptyReplyFallback is returned when the upstream succeeds but yields no text.
const emptyReplyFallback = "No response from Gemini"

// Generator produces text for a full turn sequence.
type Generator interface {
	Generate(ctx context.Context, contents []gemini.Content) (string, error)
}

// Relay validates chat requests and forwards them upstream. A nil generator
// means no API credential is configured: the relay answers with a
// deterministic offline mock and never touches the network.
type Relay struct {
	gen             Generator
	requests        metric.Int64Counter
	upstreamLatency metric.Float64Histogram
}

// NewRelay returns a Relay over gen; pass nil for offline mode.
func NewRelay(gen Generator) *Relay {
	meter := otel.Meter("gemini-chat/relay")
	requests, _ := meter.Int64Counter("chat.relay.requests",
		metric.WithDescription("Chat relay requests handled"))
	upstreamLatency, _ := meter.Float64Histogram("chat.relay.upstream.duration",
		metric.WithDescription("Upstream generate call duration"),
		metric.WithUnit("s"))
	return &Relay{gen: gen, requests: requests, upstreamLatency: upstreamLatency}
}

// Respond relays message with its prior turns and returns the reply text.
// History roles map to the upstream format: "user" stays "user", anything else
// becomes "model"; the new message is appended as the final user turn.
// Returns ErrEmptyMessage for blank input and an ErrUpstream-wrapped error on
// any generation failure.
func (r *Relay) Respond(ctx context.Context, message string, history []domain.Turn) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	r.requests.Add(ctx, 1)

	if r.gen == nil {
		return fmt.Sprintf("[Mock] Gemini offline. You asked: \"%s\"", message), nil
	}

	contents := make([]gemini.Content, 0, len(history)+1)
	for _, turn := range history {
		role := "model"
		if turn.Role == domain.RoleUser {
			role = domain.RoleUser
		}
		contents = append(contents, gemini.Content{Role: role, Parts: []gemini.Part{{Text: turn.Content}}})
	}
	contents = append(contents, gemini.Content{Role: domain.RoleUser, Parts: []gemini.Part{{Text: message}}})

	start := time.Now()
	reply, err := r.gen.Generate(ctx, contents)
	r.upstreamLatency.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if reply == "" {
		return emptyReplyFallback, nil
	}
	return reply, nil
}
