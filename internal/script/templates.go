package script

import (
	"fmt"
	"regexp"
	"strings"

	"newsreel/internal/services"
)

// Template declares a script structure: its segment-type renderings and
// the fields each rendering requires. Templates are data, so new
// structures register without touching composition logic.
type Template struct {
	ID             string
	RequiredFields []string
	Segments       map[SegmentType]string
	Closing        string
	SignOff        string
}

var placeholderPattern = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// Render fills one segment-type template. A required field that is
// missing or empty is a configuration error, never silent blank output.
func (t Template) Render(segmentType SegmentType, values map[string]string) (string, error) {
	text, ok := t.Segments[segmentType]
	if !ok {
		text = t.Segments[SegmentNews]
	}
	for _, field := range t.RequiredFields {
		if strings.TrimSpace(values[field]) == "" {
			return "", services.Wrap(services.ErrConfiguration, "", "render",
				fmt.Sprintf("template %s: required field %q empty", t.ID, field), nil)
		}
	}
	rendered := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		return values[key]
	})
	return strings.Join(strings.Fields(rendered), " "), nil
}

// Registry maps template ids to structures.
type Registry struct {
	templates map[string]Template
}

// NewRegistry returns a registry preloaded with the built-in briefing
// structure.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]Template)}
	r.Register(dailyBriefing)
	return r
}

// Register adds or replaces a template.
func (r *Registry) Register(t Template) {
	r.templates[t.ID] = t
}

// Lookup resolves a template id. Unknown ids fail with the
// configuration marker before any stage output is produced.
func (r *Registry) Lookup(id string) (Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return Template{}, services.Wrap(services.ErrConfiguration, "", "lookup",
			fmt.Sprintf("unknown template id %q", id), nil)
	}
	return t, nil
}

var dailyBriefing = Template{
	ID:             "daily_briefing",
	RequiredFields: []string{"headline", "what", "so_what", "now_what"},
	Segments: map[SegmentType]string{
		SegmentNews: "{{headline}}. {{what}} {{so_what}} {{now_what}} {{analogy}} {{wow_factor}}",
		SegmentFunding: "Money on the move: {{headline}}. {{what}} {{so_what}} " +
			"{{now_what}} {{analogy}} {{wow_factor}}",
		SegmentResearch: "From the labs: {{headline}}. {{what}} {{so_what}} " +
			"{{now_what}} {{analogy}} {{wow_factor}}",
		SegmentPolicy: "On the policy front: {{headline}}. {{what}} {{so_what}} " +
			"{{now_what}} {{analogy}} {{wow_factor}}",
	},
	Closing: "Final pulse: {{closing}}",
	SignOff: "Stay sharp.",
}
