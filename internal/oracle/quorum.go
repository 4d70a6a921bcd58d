package oracle

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Quorum asks every member oracle concurrently and accepts the reply only
// when all trimmed replies are byte-equal.
type Quorum struct {
	members []Oracle
}

var _ Oracle = (*Quorum)(nil)

// NewQuorum creates a strict-equality quorum over members.
func NewQuorum(members ...Oracle) *Quorum {
	return &Quorum{members: members}
}

// RequestFact returns the agreed reply, ErrDisagreement when replies differ,
// or the first member error.
func (q *Quorum) RequestFact(ctx context.Context, prompt string) (string, error) {
	if len(q.members) == 0 {
		return "", errors.New("quorum has no members")
	}

	replies := make([]string, len(q.members))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range q.members {
		g.Go(func() error {
			reply, err := m.RequestFact(gctx, prompt)
			if err != nil {
				return errors.Wrapf(err, "quorum member %d", i)
			}
			replies[i] = strings.TrimSpace(reply)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	for i := 1; i < len(replies); i++ {
		if replies[i] != replies[0] {
			return "", errors.Wrapf(ErrDisagreement, "member 0 replied %q, member %d replied %q", replies[0], i, replies[i])
		}
	}
	return replies[0], nil
}
