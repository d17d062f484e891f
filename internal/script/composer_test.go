package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"newsreel/internal/services"
	"newsreel/internal/services/generation"
	"newsreel/internal/story"
)

func analyzedFixture(t *testing.T) []SegmentDraft {
	t.Helper()
	analyzer := NewAnalyzer()
	segments, dropped := analyzer.Analyze([]story.Scored{
		scoredStory("aaa", "Record surge in GPU shipments", "A breakthrough quarter with a 40% surge.", 0.9),
		scoredStory("bbb", "Startup closes Series B funding round", "Investors commit 200 million to scale the platform.", 0.7),
		scoredStory("ccc", "New research paper on diffusion models", "The study reports a latency milestone.", 0.5),
		scoredStory("ddd", "Government drafts new AI regulation bill", "The law targets model audits.", 0.3),
	})
	if len(dropped) != 0 {
		t.Fatalf("dropped = %v", dropped)
	}
	return segments
}

func defaultParams() Params {
	return Params{
		TemplateID:    "daily_briefing",
		MaxSegments:   3,
		HeadlineCount: 4,
		SignOff:       "Stay sharp.",
	}
}

func TestComposeStructure(t *testing.T) {
	composer := NewComposer(NewRegistry())
	draft, diags, err := composer.Compose(context.Background(), analyzedFixture(t), defaultParams(), 1)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %v", diags)
	}
	if draft.GenerationAttempt != 1 {
		t.Fatalf("attempt = %d", draft.GenerationAttempt)
	}
	kinds := make([]Kind, 0, len(draft.Segments))
	for _, segment := range draft.Segments {
		kinds = append(kinds, segment.Kind)
	}
	if kinds[0] != KindHeadlines || kinds[1] != KindBridge || kinds[len(kinds)-1] != KindClosing {
		t.Fatalf("kinds = %v", kinds)
	}
	if len(draft.StorySegments()) != 3 {
		t.Fatalf("story segments = %d", len(draft.StorySegments()))
	}
	if draft.WordCount == 0 {
		t.Fatal("word count not set")
	}
	if !strings.Contains(draft.Segments[len(draft.Segments)-1].Text, "Stay sharp.") {
		t.Fatal("closing missing sign off")
	}
}

func TestComposeUnknownTemplate(t *testing.T) {
	composer := NewComposer(NewRegistry())
	params := defaultParams()
	params.TemplateID = "does_not_exist"
	_, _, err := composer.Compose(context.Background(), analyzedFixture(t), params, 1)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration marker", err)
	}
}

func TestComposeTrimAndExpandAdjustments(t *testing.T) {
	composer := NewComposer(NewRegistry())
	analyzed := analyzedFixture(t)

	base, _, err := composer.Compose(context.Background(), analyzed, defaultParams(), 1)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	trimmed := defaultParams()
	trimmed.TrimSegments = true
	trimDraft, _, err := composer.Compose(context.Background(), analyzed, trimmed, 2)
	if err != nil {
		t.Fatalf("Compose trimmed: %v", err)
	}
	if got, want := len(trimDraft.StorySegments()), len(base.StorySegments())-1; got != want {
		t.Fatalf("trimmed segments = %d, want %d", got, want)
	}
	if trimDraft.WordCount >= base.WordCount {
		t.Fatalf("trim did not shorten: %d >= %d", trimDraft.WordCount, base.WordCount)
	}

	expanded := defaultParams()
	expanded.MaxSegments = 2
	expanded.ExpandSegments = true
	expandDraft, _, err := composer.Compose(context.Background(), analyzed, expanded, 2)
	if err != nil {
		t.Fatalf("Compose expanded: %v", err)
	}
	if got := len(expandDraft.StorySegments()); got != 3 {
		t.Fatalf("expanded segments = %d, want 3", got)
	}
}

func TestComposeGeneratorFallback(t *testing.T) {
	composer := NewComposer(NewRegistry(), WithGenerator(generation.Noop{}))
	draft, diags, err := composer.Compose(context.Background(), analyzedFixture(t), defaultParams(), 1)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(diags) != len(draft.StorySegments()) {
		t.Fatalf("diagnostics = %v", diags)
	}
	for _, segment := range draft.StorySegments() {
		if strings.TrimSpace(segment.Text) == "" {
			t.Fatal("fallback left empty segment")
		}
	}
}

type fixedGenerator struct{ text string }

func (g fixedGenerator) Generate(context.Context, generation.Request) (string, error) {
	return g.text, nil
}

func TestComposeUsesGeneratorOutput(t *testing.T) {
	composer := NewComposer(NewRegistry(), WithGenerator(fixedGenerator{text: "Polished segment body."}))
	draft, diags, err := composer.Compose(context.Background(), analyzedFixture(t), defaultParams(), 1)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %v", diags)
	}
	for _, segment := range draft.StorySegments() {
		if segment.Text != "Polished segment body." {
			t.Fatalf("segment text = %q", segment.Text)
		}
	}
}
