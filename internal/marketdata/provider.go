package marketdata

import (
	"context"
	"errors"

	"SignalSentinel/internal/model"
)

// Credentials is broker API authentication material. It is constructed once
// from config and injected; providers never read ambient state.
type Credentials struct {
	ClientID    string
	AccessToken string
}

// Hints carries per-symbol context a provider may need. The primary broker
// API cannot be queried without a security id. ReferencePrice anchors a
// synthetic substitute session near the signal's own price levels.
type Hints struct {
	SecurityID      string
	ExchangeSegment string
	ReferencePrice  float64
}

// Provider fetches one trading session's bars for a symbol.
type Provider interface {
	FetchSession(ctx context.Context, symbol string, hints Hints, date string) (*model.Session, error)
	Name() string
	// RequiresSecurityID reports whether the provider cannot serve a symbol
	// without a security id hint. The resolver skips such providers for
	// symbols with no known id instead of issuing a doomed call.
	RequiresSecurityID() bool
}

// ErrNoSecurityID marks a symbol the primary provider cannot resolve.
var ErrNoSecurityID = errors.New("no security id for symbol")

// ErrNoData is returned by the resolver when every configured provider failed
// and the fallback policy forbids synthetic substitution.
var ErrNoData = errors.New("all providers exhausted")
