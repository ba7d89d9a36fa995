// Package idempotency defines the key store behind the X-Idempotency-Key
// header, used so a retried order or payment request is applied once.
package idempotency

import (
	"context"
	"time"
)

// DefaultTTL is how long a completed key is replayed.
const DefaultTTL = 24 * time.Hour

// StaleAfter is how long a pending key blocks retries before it is reclaimed.
const StaleAfter = time.Minute

// Request identifies one use of a key.
type Request struct {
	Key         string
	UserID      string
	Operation   string // "POST /api/v1/orders"
	RequestHash string // sha256 of the body
}

// Replay is a stored response returned for a repeated request.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store records keys and their responses.
type Store interface {
	// Acquire claims the key. It returns (nil, nil) when the caller should run
	// the request, a Replay when the request already finished, or an
	// IDEMPOTENCY_CONFLICT error when the key is in use or was used for a
	// different request.
	Acquire(ctx context.Context, req Request) (*Replay, error)

	// Complete stores the final response for the key.
	Complete(ctx context.Context, key string, replay Replay) error

	// Release forgets a pending key after a failed request so it can be retried.
	Release(ctx context.Context, key string) error
}

// NormalizeReplay fills defaults for stored responses missing a status or
// content type.
func NormalizeReplay(r Replay) Replay {
	if r.StatusCode == 0 {
		r.StatusCode = 200
	}
	if r.ContentType == "" {
		r.ContentType = "application/json"
	}
	return r
}
