package script

import (
	"errors"
	"strings"
	"testing"

	"newsreel/internal/services"
)

func TestTemplateRenderFillsPlaceholders(t *testing.T) {
	registry := NewRegistry()
	template, err := registry.Lookup("daily_briefing")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	rendered, err := template.Render(SegmentResearch, map[string]string{
		"headline":   "Headline",
		"what":       "What happened.",
		"so_what":    "Why it matters.",
		"now_what":   "Next move.",
		"analogy":    "",
		"wow_factor": "A big number.",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(rendered, "From the labs: Headline.") {
		t.Fatalf("rendered = %q", rendered)
	}
	if strings.Contains(rendered, "{{") {
		t.Fatalf("unfilled placeholder in %q", rendered)
	}
}

func TestTemplateRenderMissingRequiredField(t *testing.T) {
	registry := NewRegistry()
	template, err := registry.Lookup("daily_briefing")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	_, err = template.Render(SegmentNews, map[string]string{
		"headline": "Headline",
		"what":     "What happened.",
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration marker", err)
	}
}

func TestRegistryUnknownID(t *testing.T) {
	_, err := NewRegistry().Lookup("missing")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v", err)
	}
}

func TestTemplateRenderUnknownSegmentTypeFallsBack(t *testing.T) {
	registry := NewRegistry()
	template, _ := registry.Lookup("daily_briefing")
	values := map[string]string{
		"headline":   "Headline",
		"what":       "What happened.",
		"so_what":    "Why it matters.",
		"now_what":   "Next move.",
		"analogy":    "",
		"wow_factor": "",
	}
	rendered, err := template.Render(SegmentType("unknown"), values)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(rendered, "Headline.") {
		t.Fatalf("rendered = %q", rendered)
	}
}
