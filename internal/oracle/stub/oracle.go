// Package stub provides an in-process Oracle for tests and offline runs.
package stub

import (
	"context"
	"sync"

	"dynamic-nft/internal/oracle"
)

// Oracle replies from a scripted queue. When the queue is empty it returns
// Reply and Err. Calls records every prompt received.
type Oracle struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	queue   []Response
	prompts []string
}

// Response is one scripted reply.
type Response struct {
	Reply string
	Err   error
}

var _ oracle.Oracle = (*Oracle)(nil)

// NewOracle creates a stub that always replies with reply.
func NewOracle(reply string) *Oracle {
	return &Oracle{Reply: reply}
}

// Enqueue schedules one-shot responses ahead of the default reply.
func (o *Oracle) Enqueue(responses ...Response) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queue = append(o.queue, responses...)
}

// RequestFact returns the next scripted response.
func (o *Oracle) RequestFact(ctx context.Context, prompt string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.prompts = append(o.prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(o.queue) > 0 {
		r := o.queue[0]
		o.queue = o.queue[1:]
		return r.Reply, r.Err
	}
	return o.Reply, o.Err
}

// Calls returns the number of requests received.
func (o *Oracle) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.prompts)
}

// Prompts returns a copy of the prompts received.
func (o *Oracle) Prompts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.prompts))
	copy(out, o.prompts)
	return out
}
