package script

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"newsreel/internal/services"
	"newsreel/internal/services/generation"
)

// Params steer one composition attempt. The regeneration controller
// flips the adjustment flags between attempts based on which validation
// rules failed.
type Params struct {
	TemplateID     string `json:"template_id"`
	MaxSegments    int    `json:"max_segments"`
	HeadlineCount  int    `json:"headline_count"`
	SignOff        string `json:"sign_off"`
	RelaxedTone    bool   `json:"relaxed_tone"`
	ExpandSegments bool   `json:"expand_segments"`
	TrimSegments   bool   `json:"trim_segments"`
}

// Composer renders analyzed segments into a structured draft. When a
// generator is attached, story bodies get a rewrite pass; on any
// generation failure the template text stands.
type Composer struct {
	registry *Registry
	gen      generation.Generator
	titler   cases.Caser
}

// ComposerOption customizes the composer.
type ComposerOption func(*Composer)

// WithGenerator attaches the external text-generation collaborator.
func WithGenerator(gen generation.Generator) ComposerOption {
	return func(c *Composer) {
		c.gen = gen
	}
}

// NewComposer constructs a composer over the supplied template registry.
func NewComposer(registry *Registry, opts ...ComposerOption) *Composer {
	c := &Composer{
		registry: registry,
		titler:   cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose builds the three-part draft: headline blitz and bridge, story
// segments by impact descending, then closing. The input is assumed
// already impact-ordered by the analyzer. Transitions and the call to
// action are enhancer passes, not composition.
func (c *Composer) Compose(ctx context.Context, analyzed []SegmentDraft, params Params, attempt int) (ScriptDraft, []string, error) {
	template, err := c.registry.Lookup(params.TemplateID)
	if err != nil {
		return ScriptDraft{}, nil, err
	}
	if len(analyzed) == 0 {
		return ScriptDraft{}, nil, services.Wrap(services.ErrStage, "compose", "compose", "no analyzable stories", nil)
	}

	stories := analyzed
	limit := params.MaxSegments
	if limit <= 0 {
		limit = 3
	}
	if params.TrimSegments && limit > 1 {
		limit--
	}
	if params.ExpandSegments {
		limit++
	}
	if limit > len(stories) {
		limit = len(stories)
	}
	stories = stories[:limit]

	var diagnostics []string
	segments := make([]SegmentDraft, 0, len(stories)+3)

	headlineCount := params.HeadlineCount
	if headlineCount <= 0 {
		headlineCount = 4
	}
	segments = append(segments, SegmentDraft{
		Kind: KindHeadlines,
		Text: c.composeOpening(analyzed, headlineCount),
	})
	segments = append(segments, SegmentDraft{
		Kind: KindBridge,
		Text: c.composeBridge(analyzed),
	})

	for _, seed := range stories {
		rendered, diags, err := c.renderStory(ctx, template, seed, params)
		if err != nil {
			return ScriptDraft{}, nil, err
		}
		diagnostics = append(diagnostics, diags...)
		seed.Text = rendered
		segments = append(segments, seed)
	}

	signOff := strings.TrimSpace(params.SignOff)
	if signOff == "" {
		signOff = template.SignOff
	}
	segments = append(segments, SegmentDraft{
		Kind: KindClosing,
		Text: c.composeClosing(stories) + " " + signOff,
	})

	for i := range segments {
		segments[i].Position = i
	}
	draft := ScriptDraft{
		Segments:          segments,
		GenerationAttempt: attempt,
	}
	draft.RecountWords()
	return draft, diagnostics, nil
}

func (c *Composer) renderStory(ctx context.Context, template Template, seed SegmentDraft, params Params) (string, []string, error) {
	keyword := "the story"
	if len(seed.Metadata.Keywords) > 0 {
		keyword = seed.Metadata.Keywords[0]
	}
	headline := seed.Title
	if headline == "" {
		headline = strings.TrimSuffix(firstSentence(seed.Excerpt), ".")
	}
	what := firstSentence(seed.Excerpt)
	if what == "" {
		what = headline + "."
	}
	wow := seed.Metadata.WowHighlight
	if wow == "" {
		wow = fmt.Sprintf("Call it %d%% heat on this move.", int(seed.Metadata.Scores["wow"]*100))
	}
	analogy := seed.Metadata.Analogy
	if params.TrimSegments {
		analogy = ""
	}
	values := map[string]string{
		"headline":   headline,
		"what":       what,
		"so_what":    c.composeSoWhat(keyword, seed.Metadata),
		"now_what":   c.composeNowWhat(keyword, seed.Metadata),
		"analogy":    analogy,
		"wow_factor": wow,
	}
	if params.ExpandSegments {
		values["now_what"] += " " + fmt.Sprintf("Expect follow-on moves around %s within the quarter.", keyword)
	}
	rendered, err := template.Render(seed.Metadata.SegmentType, values)
	if err != nil {
		return "", nil, err
	}

	var diagnostics []string
	if c.gen != nil {
		prompt := fmt.Sprintf("Rewrite this news segment in an urgent, active voice. Keep every fact.\n\n%s", rendered)
		polished, genErr := c.gen.Generate(ctx, generation.Request{Prompt: prompt})
		switch {
		case genErr != nil:
			diagnostics = append(diagnostics, fmt.Sprintf("generation fallback for story %s: %v", seed.StoryID, genErr))
		case strings.TrimSpace(polished) != "":
			rendered = strings.TrimSpace(polished)
		}
	}
	return rendered, diagnostics, nil
}

func (c *Composer) composeOpening(analyzed []SegmentDraft, limit int) string {
	var headlines []string
	for _, seed := range analyzed {
		if len(headlines) >= limit {
			break
		}
		if seed.Title != "" {
			headlines = append(headlines, seed.Title)
		}
	}
	switch len(headlines) {
	case 0:
		return "Here is today's briefing."
	case 1:
		return fmt.Sprintf("Here's the headline to watch: %s.", headlines[0])
	default:
		intro := strings.Join(headlines[:len(headlines)-1], ", ")
		return fmt.Sprintf("Today's pulse: %s, and %s.", intro, headlines[len(headlines)-1])
	}
}

func (c *Composer) composeBridge(analyzed []SegmentDraft) string {
	var topics []string
	for _, seed := range analyzed {
		if len(topics) >= 3 {
			break
		}
		if len(seed.Metadata.Keywords) > 0 {
			topics = append(topics, seed.Metadata.Keywords[0])
		}
	}
	switch len(topics) {
	case 0:
		return "Here's how those moves connect: capability, adoption speed, and oversight pressure are colliding."
	case 1:
		return fmt.Sprintf("All eyes stay on %s. It's the thread linking every conversation right now.", topics[0])
	case 2:
		return fmt.Sprintf("%s meeting %s is the collision shaping this quarter's playbooks.", c.titler.String(topics[0]), topics[1])
	default:
		return fmt.Sprintf("%s, %s, and %s signal the same thing: teams need a plan before the next cycle.",
			c.titler.String(topics[0]), topics[1], topics[2])
	}
}

func (c *Composer) composeSoWhat(keyword string, meta Metadata) string {
	if meta.Scores["future"] > 0.6 {
		return fmt.Sprintf("Board signal: %s is moving from slideware to deployment this quarter.", c.titler.String(keyword))
	}
	if meta.Scores["shock"] > 0.6 {
		return fmt.Sprintf("Risk alert: this %s twist forces contingency planning now.", keyword)
	}
	return fmt.Sprintf("Why it matters: %s just graduated into the main conversation.", keyword)
}

func (c *Composer) composeNowWhat(keyword string, meta Metadata) string {
	if meta.Technical {
		return fmt.Sprintf("Next move: pair an architecture lead with ops to translate %s into a controlled pilot.", keyword)
	}
	return fmt.Sprintf("Next move: brief your team on how to position around %s.", keyword)
}

func firstSentence(text string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	first := sentences[0]
	if !strings.HasSuffix(first, ".") && !strings.HasSuffix(first, "!") && !strings.HasSuffix(first, "?") {
		first += "."
	}
	return first
}

func (c *Composer) composeClosing(stories []SegmentDraft) string {
	var highlights []string
	for _, seed := range stories {
		if len(highlights) >= 2 {
			break
		}
		if seed.Metadata.WowHighlight != "" {
			highlights = append(highlights, seed.Metadata.WowHighlight)
		}
	}
	if len(highlights) > 0 {
		return "Final pulse: " + strings.Join(highlights, " ")
	}
	return "Final pulse: the winners are moving faster than the headlines suggest. Stay proactive."
}
