// Package oracle fetches the BTC/USD price from an external fact oracle.
//
// An Oracle answers a natural-language prompt with a short text reply.
// The Adapter turns that reply into a sanity-checked integer price and
// never fails: on any problem it falls back to the last known price or a
// fixed default.
package oracle

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Prompt is the fact request sent to the oracle.
const Prompt = `Get the current Bitcoin (BTC) price in USD.

Query from reliable sources like CoinGecko or CoinMarketCap.
Return ONLY the price as an integer (no decimals, no text).

Example response: 45000`

// Oracle answers fact requests.
type Oracle interface {
	RequestFact(ctx context.Context, prompt string) (string, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, prompt string) (string, error)

// RequestFact calls f.
func (f Func) RequestFact(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var (
	// ErrUnavailable marks every failure absorbed by the Adapter.
	ErrUnavailable = errors.New("price oracle unavailable")

	// ErrDisagreement is returned by Quorum when replies are not identical.
	ErrDisagreement = errors.New("oracle replies disagree")

	// ErrInvalidReply is returned when the reply is not a base-10 integer.
	ErrInvalidReply = errors.New("oracle reply is not an integer")

	// ErrOutOfRange is returned when the parsed price is outside the sanity band.
	ErrOutOfRange = errors.New("oracle price out of range")

	// ErrRateLimited is returned when the outbound call budget is exhausted.
	ErrRateLimited = errors.New("oracle call rate limited")
)
