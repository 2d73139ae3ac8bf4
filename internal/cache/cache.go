// Package cache memoizes processing decisions by message fingerprint so a
// duplicate message is never recomputed.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInProgress is returned by Lookup when another worker has claimed the
// same fingerprint but has not stored a decision yet. Callers should retry
// shortly or proceed uncached; downstream persistence is idempotent on
// fingerprint either way.
var ErrInProgress = errors.New("decision for this fingerprint is being computed")

const (
	// DefaultTTL bounds how long a stored decision short-circuits the
	// pipeline.
	DefaultTTL = time.Hour

	// markerTTL bounds how long a crashed worker can block a fingerprint.
	markerTTL = 2 * time.Minute
)

// Store is the fingerprint cache contract. Lookup and Store are the hot
// path; Begin implements the in-flight claim that narrows the
// check-then-act race between concurrent workers.
type Store interface {
	// Lookup unmarshals the cached decision for a fingerprint into dest.
	// A miss is (false, nil). ErrInProgress means another worker holds
	// the in-flight claim.
	Lookup(ctx context.Context, fingerprint string, dest any) (bool, error)

	// Begin claims a fingerprint for computation. It reports false when
	// some other worker already holds the claim.
	Begin(ctx context.Context, fingerprint string) (bool, error)

	// Store writes the final decision and releases the in-flight claim.
	Store(ctx context.Context, fingerprint string, decision any, ttl time.Duration) error

	// Invalidate drops every cached decision.
	Invalidate(ctx context.Context) error
}

const (
	decisionPrefix = "decision:"
	inflightPrefix = "decision:inflight:"
)

func decisionKey(fingerprint string) string { return decisionPrefix + fingerprint }

func inflightKey(fingerprint string) string { return inflightPrefix + fingerprint }
