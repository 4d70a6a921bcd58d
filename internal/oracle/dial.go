package oracle

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// Transport names accepted by Dial.
const (
	TransportHTTP   = "http"
	TransportWS     = "ws"
	TransportQuorum = "quorum"
	TransportStatic = "static"
)

// Dial builds an Oracle for the named transport. The returned close
// function releases any connections and is never nil.
//
// http and ws take the first endpoint, whose scheme must match the
// transport. quorum builds one member per endpoint and picks each member's
// transport from its scheme. static always replies with staticReply.
func Dial(ctx context.Context, transport string, endpoints []string, staticReply string) (Oracle, func() error, error) {
	noop := func() error { return nil }

	switch transport {
	case TransportStatic:
		return Func(func(context.Context, string) (string, error) {
			return staticReply, nil
		}), noop, nil

	case TransportHTTP, TransportWS:
		if len(endpoints) == 0 {
			return nil, noop, errors.Newf("oracle transport %s requires an endpoint", transport)
		}
		if got := endpointTransport(endpoints[0]); got != transport {
			return nil, noop, errors.Newf("oracle transport %s does not match endpoint %s", transport, endpoints[0])
		}
		return dialEndpoint(ctx, endpoints[0])

	case TransportQuorum:
		if len(endpoints) < 2 {
			return nil, noop, errors.New("oracle quorum requires at least two endpoints")
		}
		var members []Oracle
		var closers []func() error
		closeAll := func() error {
			var errs error
			for _, c := range closers {
				errs = errors.CombineErrors(errs, c())
			}
			return errs
		}
		for _, ep := range endpoints {
			m, closeFn, err := dialEndpoint(ctx, ep)
			if err != nil {
				_ = closeAll()
				return nil, noop, errors.Wrapf(err, "dial quorum member %s", ep)
			}
			members = append(members, m)
			closers = append(closers, closeFn)
		}
		return NewQuorum(members...), closeAll, nil

	default:
		return nil, noop, errors.Newf("unknown oracle transport %q", transport)
	}
}

func dialEndpoint(ctx context.Context, endpoint string) (Oracle, func() error, error) {
	switch endpointTransport(endpoint) {
	case TransportWS:
		c, err := NewWSClient(ctx, endpoint, nil)
		if err != nil {
			return nil, func() error { return nil }, err
		}
		return c, c.Close, nil
	case TransportHTTP:
		return NewHTTPClient(endpoint), func() error { return nil }, nil
	default:
		return nil, func() error { return nil }, errors.Newf("unsupported oracle endpoint scheme: %s", endpoint)
	}
}

// endpointTransport maps an endpoint's scheme to a transport name, or "" when unknown.
func endpointTransport(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "ws://"), strings.HasPrefix(endpoint, "wss://"):
		return TransportWS
	case strings.HasPrefix(endpoint, "http://"), strings.HasPrefix(endpoint, "https://"):
		return TransportHTTP
	default:
		return ""
	}
}
