package services

import (
	"context"
	"time"
)

// Socket event names pushed by the services.
const (
	EventReceiveMessage = "receive_message"
	EventMatchCreated   = "match_created"
)

// Notifier pushes events to connected clients.
type Notifier interface {
	EmitToUser(userID string, event string, data any)
	EmitToRoom(room string, exceptUserID string, event string, data any)
}

type noopNotifier struct{}

func (noopNotifier) EmitToUser(string, string, any)         {}
func (noopNotifier) EmitToRoom(string, string, string, any) {}

type transportKey struct{}

// WithTransport tags ctx with the channel a request arrived on ("http" or
// "ws"). It only affects metric labels.
func WithTransport(ctx context.Context, transport string) context.Context {
	return context.WithValue(ctx, transportKey{}, transport)
}

func transportFrom(ctx context.Context) string {
	if t, ok := ctx.Value(transportKey{}).(string); ok && t != "" {
		return t
	}
	return "http"
}

type requestIDKey struct{}

// WithRequestID carries the request id into published event headers.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func utcNow() time.Time {
	return time.Now().UTC()
}
