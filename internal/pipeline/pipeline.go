// Package pipeline assembles the staging run: source fan-out,
// normalization, ranking, composition, the bounded regeneration loop,
// and artifact emission, all executed on the checkpointing graph
// engine so interrupted runs resume where they stopped.
package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"newsreel/internal/checkpoint"
	"newsreel/internal/config"
	"newsreel/internal/graph"
	"newsreel/internal/ingest"
	"newsreel/internal/logging"
	"newsreel/internal/normalize"
	"newsreel/internal/notifications"
	"newsreel/internal/rank"
	"newsreel/internal/regen"
	"newsreel/internal/script"
	"newsreel/internal/services"
	"newsreel/internal/services/generation"
	"newsreel/internal/validate"
)

// Node names, also the checkpoint keys a resumed run matches against.
const (
	nodeFetch     = "fetch"
	nodeNormalize = "normalize"
	nodeRank      = "rank"
	nodeAnalyze   = "analyze"
	nodeCompose   = "compose"
	nodeEnhance   = "enhance"
	nodeValidate  = "validate"
	nodeFinalize  = "finalize"
	nodeEscalate  = "escalate"
)

// Pipeline wires the run components around a checkpoint store.
type Pipeline struct {
	cfg        *config.Config
	store      *checkpoint.Store
	logger     *slog.Logger
	registry   *ingest.Registry
	templates  *script.Registry
	analyzer   *script.Analyzer
	composer   *script.Composer
	validator  *validate.Validator
	controller *regen.Controller
	notifier   notifications.Service
	trending   map[string]float64
	now        func() time.Time
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithRegistry overrides the source adapter registry.
func WithRegistry(registry *ingest.Registry) Option {
	return func(p *Pipeline) {
		if registry != nil {
			p.registry = registry
		}
	}
}

// WithGenerator attaches a text-generation collaborator to the composer.
func WithGenerator(gen generation.Generator) Option {
	return func(p *Pipeline) {
		p.composer = script.NewComposer(p.templates, script.WithGenerator(gen))
	}
}

// WithNotifier overrides the notification service.
func WithNotifier(notifier notifications.Service) Option {
	return func(p *Pipeline) {
		if notifier != nil {
			p.notifier = notifier
		}
	}
}

// WithNow pins the clock used for freshness scoring (useful for tests).
func WithNow(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New builds a pipeline. The trending table is loaded once here,
// selected by the current clock, and stays immutable for every run the
// pipeline executes.
func New(cfg *config.Config, store *checkpoint.Store, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	templates := script.NewRegistry()
	p := &Pipeline{
		cfg:        cfg,
		store:      store,
		logger:     logger,
		registry:   ingest.NewRegistry(),
		templates:  templates,
		analyzer:   script.NewAnalyzer(),
		composer:   script.NewComposer(templates),
		validator:  validate.New(cfg.Validation, cfg.Script.TargetSeconds),
		controller: regen.New(cfg.Regeneration),
		notifier:   notifications.NewService(cfg.Notifications),
		now:        time.Now,
	}
	if cfg.Generation.Enabled {
		p.composer = script.NewComposer(templates, script.WithGenerator(generation.NewClient(cfg.Generation)))
	}
	for _, opt := range opts {
		opt(p)
	}

	trending, err := cfg.TrendingKeywords(p.now())
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "pipeline", "load trending table", err)
	}
	p.trending = trending

	// A bad template id should fail run setup, not the compose node.
	if _, err := p.templates.Lookup(cfg.Script.TemplateID); err != nil {
		return nil, err
	}
	return p, nil
}

// Run executes a fresh pipeline run under a new run id.
func (p *Pipeline) Run(ctx context.Context) (State, error) {
	runID := uuid.NewString()
	return p.execute(ctx, runID, true, func(engine *graph.Engine[State]) (State, error) {
		return engine.Run(ctx, runID, State{RunID: runID})
	})
}

// Resume continues an interrupted run from its latest ok checkpoint.
func (p *Pipeline) Resume(ctx context.Context, runID string) (State, error) {
	return p.execute(ctx, runID, false, func(engine *graph.Engine[State]) (State, error) {
		return engine.Resume(ctx, runID, State{RunID: runID})
	})
}

func (p *Pipeline) execute(ctx context.Context, runID string, fresh bool, drive func(*graph.Engine[State]) (State, error)) (State, error) {
	sources, err := p.cfg.LoadSourceList()
	if err != nil {
		return State{}, services.Wrap(services.ErrConfiguration, "", "pipeline", "load source list", err)
	}

	engine, err := graph.New(p.store, p.logger, nodeFetch, p.nodes(sources))
	if err != nil {
		return State{}, err
	}

	if fresh {
		if err := p.notifier.NotifyRunStarted(ctx, runID, len(sources)); err != nil {
			p.logger.Warn("run started notification failed", logging.Error(err))
		}
	}
	state, err := drive(engine)
	if err != nil {
		if notifyErr := p.notifier.NotifyRunFailed(context.WithoutCancel(ctx), runID, err); notifyErr != nil {
			p.logger.Warn("run failed notification failed", logging.Error(notifyErr))
		}
		return state, err
	}
	return state, nil
}

func (p *Pipeline) nodes(sources []config.Source) []graph.Node[State] {
	return []graph.Node[State]{
		{
			Name:  nodeFetch,
			Edges: []string{nodeNormalize},
			Run: func(ctx context.Context, state *State) error {
				results := ingest.FetchAll(ctx, p.registry, sources, p.cfg.Ingest.Concurrency, p.logger)
				state.Fetched = toFetchOutcomes(results)
				for _, outcome := range state.Fetched {
					if outcome.Error != "" {
						state.Diagnostics.record("warn", "source fetch failed",
							map[string]string{"source": outcome.Source.Name, "error": outcome.Error})
					}
				}
				return nil
			},
			Next: func(*State) string { return nodeNormalize },
		},
		{
			Name:  nodeNormalize,
			Edges: []string{nodeRank},
			Run: func(_ context.Context, state *State) error {
				records, diag, err := normalize.Run(toResults(state.Fetched))
				if err != nil {
					return err
				}
				state.Records = records
				state.Diagnostics.FetchFailures = diag.FetchFailures
				state.Diagnostics.ItemsFetched = diag.ItemsFetched
				state.Diagnostics.DedupRemoved = diag.DedupRemoved
				state.Diagnostics.record("info", "batch normalized", map[string]string{
					"items":         strconv.Itoa(diag.ItemsFetched),
					"dedup_removed": strconv.Itoa(diag.DedupRemoved),
				})
				return nil
			},
			Next: func(*State) string { return nodeRank },
		},
		{
			Name:  nodeRank,
			Edges: []string{nodeAnalyze},
			Run: func(_ context.Context, state *State) error {
				scorer := rank.NewScorer(p.cfg.Scoring, p.trending, p.now())
				state.Selected = rank.Select(scorer, state.Records, p.cfg.Scoring.TopK)
				breakdowns := make(map[string]map[string]float64, len(state.Selected))
				for _, scored := range state.Selected {
					breakdowns[scored.ID] = scored.Breakdown
				}
				state.Diagnostics.ScoreBreakdowns = breakdowns
				return nil
			},
			Next: func(*State) string { return nodeAnalyze },
		},
		{
			Name:  nodeAnalyze,
			Edges: []string{nodeCompose},
			Run: func(_ context.Context, state *State) error {
				analyzed, dropped := p.analyzer.Analyze(state.Selected)
				state.Analyzed = analyzed
				state.Diagnostics.DroppedStories = dropped
				for _, reason := range dropped {
					state.Diagnostics.record("warn", "story dropped", map[string]string{"reason": reason})
				}
				return nil
			},
			Next: func(*State) string { return nodeCompose },
		},
		{
			Name:  nodeCompose,
			Edges: []string{nodeEnhance},
			Run: func(ctx context.Context, state *State) error {
				if state.Attempt == 0 {
					state.Attempt = 1
					state.Params = script.Params{
						TemplateID:    p.cfg.Script.TemplateID,
						MaxSegments:   p.cfg.Script.MaxSegments,
						HeadlineCount: p.cfg.Script.HeadlineCount,
						SignOff:       p.cfg.Script.SignOff,
					}
				}
				ctx = services.WithAttempt(ctx, state.Attempt)
				draft, diags, err := p.composer.Compose(ctx, state.Analyzed, state.Params, state.Attempt)
				if err != nil {
					return err
				}
				state.Draft = draft
				state.Diagnostics.GenerationFallbacks = append(state.Diagnostics.GenerationFallbacks, diags...)
				return nil
			},
			Next: func(*State) string { return nodeEnhance },
		},
		{
			Name:  nodeEnhance,
			Edges: []string{nodeValidate},
			Run: func(_ context.Context, state *State) error {
				draft := script.EnhanceTone(state.Draft, state.Params.RelaxedTone)
				draft = script.InsertTransitions(draft)
				state.Draft = script.InsertCTA(draft)
				return nil
			},
			Next: func(*State) string { return nodeValidate },
		},
		{
			Name:  nodeValidate,
			Edges: []string{nodeFinalize, nodeCompose, nodeEscalate},
			Run: func(_ context.Context, state *State) error {
				report := p.validator.Validate(state.Draft, p.controller.AttemptsRemain(state.Attempt))
				state.Report = report
				state.Reports = append(state.Reports, report)
				state.Outcome = p.controller.Decide(report, state.Attempt)
				state.Diagnostics.AttemptsUsed = state.Attempt
				p.logger.Info("draft validated",
					logging.String(logging.FieldRunID, state.RunID),
					logging.String("severity", string(report.Severity)),
					logging.String("outcome", string(state.Outcome)),
					logging.Int(logging.FieldAttempt, state.Attempt))
				state.Diagnostics.record("info", "draft validated", map[string]string{
					"attempt":  strconv.Itoa(state.Attempt),
					"severity": string(report.Severity),
					"outcome":  string(state.Outcome),
				})
				if state.Outcome == regen.StateRegenerating {
					state.Params = p.controller.Adjust(state.Params, report.Violations)
					state.Attempt++
				}
				return nil
			},
			Next: func(state *State) string {
				switch state.Outcome {
				case regen.StateAccepted:
					return nodeFinalize
				case regen.StateRegenerating:
					return nodeCompose
				default:
					return nodeEscalate
				}
			},
		},
		{
			Name: nodeFinalize,
			Run: func(ctx context.Context, state *State) error {
				path, err := writeArtifact(p.cfg.Paths.ArtifactDir, state)
				if err != nil {
					return err
				}
				state.ArtifactPath = path
				if err := p.notifier.NotifyRunAccepted(ctx, state.RunID, state.Draft.WordCount, state.Diagnostics.AttemptsUsed); err != nil {
					p.logger.Warn("accepted notification failed", logging.Error(err))
				}
				return nil
			},
		},
		{
			Name: nodeEscalate,
			Run: func(ctx context.Context, state *State) error {
				path, err := writeReviewPackage(p.cfg.Paths.ReviewDir, state)
				if err != nil {
					return err
				}
				state.ReviewPath = path
				if err := p.notifier.NotifyEscalation(ctx, state.RunID, path, state.Diagnostics.AttemptsUsed); err != nil {
					p.logger.Warn("escalation notification failed", logging.Error(err))
				}
				return nil
			},
		},
	}
}
