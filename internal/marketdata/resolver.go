package marketdata

import (
	"context"
	"fmt"
	"log"
	"time"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/synth"
)

// FallbackPolicy controls what happens when every remote provider fails.
// Resolved once at startup, never per code path.
type FallbackPolicy string

const (
	FallbackSynthetic FallbackPolicy = "synthetic"
	FallbackNone      FallbackPolicy = "none"
)

// ChainEntry pairs a provider with the origin tag its data carries.
type ChainEntry struct {
	Provider Provider
	Origin   model.DataOrigin
}

// Resolver walks an ordered provider chain with per-provider timeouts. A
// single provider's failure is recovered locally; only total exhaustion is
// visible to the caller.
type Resolver struct {
	Chain    []ChainEntry
	Fallback FallbackPolicy
	Timeout  time.Duration
}

// NewResolver creates a resolver over the given chain.
func NewResolver(chain []ChainEntry, fallback FallbackPolicy, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if fallback == "" {
		fallback = FallbackNone
	}
	return &Resolver{Chain: chain, Fallback: fallback, Timeout: timeout}
}

// NeedsRemote reports whether resolving with these hints would issue at least
// one network call. Providers that need a security id are skipped outright
// for symbols without one.
func (r *Resolver) NeedsRemote(hints Hints) bool {
	for _, e := range r.Chain {
		if skippable(e.Provider, hints) {
			continue
		}
		return true
	}
	return false
}

func skippable(p Provider, hints Hints) bool {
	return p.RequiresSecurityID() && hints.SecurityID == ""
}

// FetchSession resolves one (symbol, date) to a normalized session and the
// origin that produced it. Returns ErrNoData with origin NONE only when the
// chain is exhausted and the fallback policy forbids synthetic data.
func (r *Resolver) FetchSession(ctx context.Context, symbol string, hints Hints, date string) (*model.Session, model.DataOrigin, error) {
	for _, e := range r.Chain {
		if skippable(e.Provider, hints) {
			continue
		}
		sess, err := r.tryProvider(ctx, e.Provider, symbol, hints, date)
		if err != nil {
			log.Printf("[WARN] provider %s failed for %s %s: %v", e.Provider.Name(), symbol, date, err)
			continue
		}
		return sess, e.Origin, nil
	}

	if r.Fallback == FallbackSynthetic {
		ref := hints.ReferencePrice
		if ref <= 0 {
			ref = synth.ReferencePrice(date, symbol)
		}
		sess, err := synth.GenerateSession(date, symbol, ref)
		if err != nil {
			return nil, model.OriginNone, fmt.Errorf("synthetic fallback for %s %s: %w", symbol, date, err)
		}
		log.Printf("[INFO] using synthetic session for %s %s (ref %.2f)", symbol, date, ref)
		return sess, model.OriginSynthetic, nil
	}
	return nil, model.OriginNone, fmt.Errorf("%s %s: %w", symbol, date, ErrNoData)
}

func (r *Resolver) tryProvider(ctx context.Context, p Provider, symbol string, hints Hints, date string) (*model.Session, error) {
	pctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	raw, err := p.FetchSession(pctx, symbol, hints, date)
	if err != nil {
		return nil, err
	}
	return NormalizeSession(raw)
}
