package testsupport

import (
	"context"
	"sync"

	"newsreel/internal/services/generation"
)

// StubGenerator returns a canned completion (or error) for every
// request and records the prompts it saw.
type StubGenerator struct {
	Output string
	Err    error

	mu      sync.Mutex
	prompts []string
}

var _ generation.Generator = (*StubGenerator)(nil)

func (g *StubGenerator) Generate(_ context.Context, req generation.Request) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, req.Prompt)
	g.mu.Unlock()
	if g.Err != nil {
		return "", g.Err
	}
	return g.Output, nil
}

// Prompts returns a copy of every prompt received so far.
func (g *StubGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}
