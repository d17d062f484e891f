// Package graph executes a named node sequence with conditional edges
// and durable checkpoints. The engine owns all checkpoint writes: one
// row after every node, so a crashed run resumes at the first node
// without an ok checkpoint.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"newsreel/internal/checkpoint"
	"newsreel/internal/logging"
	"newsreel/internal/services"
)

// Node is one executable stage. Run mutates the shared state; Next
// inspects it and names the following node, or returns Done. Edges
// declares every node Next may select, so a graph can be validated
// before any stage runs.
type Node[S any] struct {
	Name  string
	Edges []string
	Run   func(ctx context.Context, state *S) error
	Next  func(state *S) string
}

// Done is the Next result that ends the run.
const Done = ""

// maxSteps bounds a single run so a miswired conditional edge cannot
// loop forever.
const maxSteps = 256

// Engine walks a validated node graph, checkpointing after every node.
type Engine[S any] struct {
	nodes  map[string]Node[S]
	start  string
	store  *checkpoint.Store
	logger *slog.Logger
}

type envelope[S any] struct {
	State S      `json:"state"`
	Next  string `json:"next"`
}

// New validates the node set and returns an engine. Duplicate names,
// unknown edge targets, or a missing start node are configuration
// errors surfaced before any node runs.
func New[S any](store *checkpoint.Store, logger *slog.Logger, start string, nodes []Node[S]) (*Engine[S], error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	index := make(map[string]Node[S], len(nodes))
	for _, node := range nodes {
		if node.Name == "" {
			return nil, services.Wrap(services.ErrConfiguration, "", "graph", "node with empty name", nil)
		}
		if node.Run == nil {
			return nil, services.Wrap(services.ErrConfiguration, node.Name, "graph", "node missing run function", nil)
		}
		if _, exists := index[node.Name]; exists {
			return nil, services.Wrap(services.ErrConfiguration, node.Name, "graph", "duplicate node name", nil)
		}
		index[node.Name] = node
	}
	for _, node := range nodes {
		for _, edge := range node.Edges {
			if _, ok := index[edge]; !ok {
				return nil, services.Wrap(services.ErrConfiguration, node.Name, "graph",
					fmt.Sprintf("edge targets unknown node %q", edge), nil)
			}
		}
	}
	if _, ok := index[start]; !ok {
		return nil, services.Wrap(services.ErrConfiguration, start, "graph", "start node not defined", nil)
	}
	return &Engine[S]{nodes: index, start: start, store: store, logger: logger}, nil
}

// Run executes the graph from the start node.
func (e *Engine[S]) Run(ctx context.Context, runID string, initial S) (S, error) {
	return e.loop(ctx, runID, initial, e.start)
}

// Resume continues a run from its latest ok checkpoint. A run with no
// ok checkpoint restarts from the beginning with the caller's initial
// state, so a run interrupted before its first checkpoint keeps its
// identity on replay.
func (e *Engine[S]) Resume(ctx context.Context, runID string, initial S) (S, error) {
	var state S
	cp, err := e.store.LatestOK(ctx, runID)
	if err != nil {
		if err == checkpoint.ErrNotFound {
			return e.loop(ctx, runID, initial, e.start)
		}
		return state, fmt.Errorf("load checkpoint: %w", err)
	}

	var env envelope[S]
	if err := json.Unmarshal(cp.Payload, &env); err != nil {
		return state, services.Wrap(services.ErrStage, cp.Node, "resume", "decode checkpoint payload", err)
	}
	if env.Next == Done {
		e.logger.Info("run already complete", logging.String(logging.FieldRunID, runID), logging.String(logging.FieldNode, cp.Node))
		return env.State, nil
	}
	e.logger.Info("resuming run",
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldNode, env.Next))
	return e.loop(ctx, runID, env.State, env.Next)
}

func (e *Engine[S]) loop(ctx context.Context, runID string, state S, current string) (S, error) {
	ctx = services.WithRunID(ctx, runID)
	for steps := 0; current != Done; steps++ {
		if steps >= maxSteps {
			return state, services.Wrap(services.ErrStage, current, "run", "step budget exhausted, likely edge cycle", nil)
		}
		node, ok := e.nodes[current]
		if !ok {
			return state, services.Wrap(services.ErrStage, current, "run", "edge selected undeclared node", nil)
		}

		nodeCtx := services.WithNode(ctx, current)
		e.logger.Info("node start", logging.String(logging.FieldRunID, runID), logging.String(logging.FieldNode, current))
		if err := node.Run(nodeCtx, &state); err != nil {
			e.checkpointFailed(runID, current, state)
			e.logger.Error("node failed",
				logging.String(logging.FieldRunID, runID),
				logging.String(logging.FieldNode, current),
				logging.Error(err))
			return state, services.Wrap(services.ErrStage, current, "run", "node failed", err)
		}

		// Cancellation after a node completes marks that node failed;
		// nothing is committed as ok past the cancellation point.
		if err := ctx.Err(); err != nil {
			e.checkpointFailed(runID, current, state)
			return state, services.Wrap(services.ErrStage, current, "run", "run cancelled", err)
		}

		next := Done
		if node.Next != nil {
			next = node.Next(&state)
		}
		if next != Done && !edgeDeclared(node, next) {
			e.checkpointFailed(runID, current, state)
			return state, services.Wrap(services.ErrStage, current, "run",
				fmt.Sprintf("next node %q not a declared edge", next), nil)
		}

		if _, err := e.store.Put(ctx, runID, current, checkpoint.StatusOK, envelope[S]{State: state, Next: next}); err != nil {
			return state, services.Wrap(services.ErrStage, current, "run", "write checkpoint", err)
		}
		e.logger.Info("node complete",
			logging.String(logging.FieldRunID, runID),
			logging.String(logging.FieldNode, current),
			logging.String("next", next))
		current = next
	}
	return state, nil
}

// checkpointFailed records a failure marker on a best-effort basis; the
// original node error is what surfaces to the caller. Failure writes
// use a background context so cancellation cannot suppress them.
func (e *Engine[S]) checkpointFailed(runID, node string, state S) {
	if _, err := e.store.Put(context.Background(), runID, node, checkpoint.StatusFailed, envelope[S]{State: state, Next: node}); err != nil {
		e.logger.Error("failed checkpoint write",
			logging.String(logging.FieldRunID, runID),
			logging.String(logging.FieldNode, node),
			logging.Error(err))
	}
}

func edgeDeclared[S any](node Node[S], target string) bool {
	for _, edge := range node.Edges {
		if edge == target {
			return true
		}
	}
	return false
}
