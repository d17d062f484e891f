package script

import "strings"

// Kind identifies the structural role of a segment within the draft.
type Kind string

const (
	KindHeadlines Kind = "headlines"
	KindBridge    Kind = "bridge"
	KindStory     Kind = "story"
	KindClosing   Kind = "closing"
	KindCTA       Kind = "cta"
)

// SegmentType classifies a story segment for template selection.
type SegmentType string

const (
	SegmentNews     SegmentType = "news"
	SegmentFunding  SegmentType = "funding"
	SegmentResearch SegmentType = "research"
	SegmentPolicy   SegmentType = "policy"
)

// Metadata carries the analyzer's findings for one story segment.
type Metadata struct {
	Impact       float64            `json:"impact"`
	Scores       map[string]float64 `json:"scores,omitempty"`
	Keywords     []string           `json:"keywords,omitempty"`
	Analogy      string             `json:"analogy,omitempty"`
	WowHighlight string             `json:"wow_highlight,omitempty"`
	Technical    bool               `json:"technical"`
	SegmentType  SegmentType        `json:"segment_type,omitempty"`
}

// SegmentDraft is one narrative unit. StoryID is empty for structural
// segments (headlines, bridge, closing, cta).
type SegmentDraft struct {
	StoryID  string   `json:"story_id,omitempty"`
	Kind     Kind     `json:"kind"`
	Title    string   `json:"title,omitempty"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Text     string   `json:"text"`
	Position int      `json:"position"`
	Metadata Metadata `json:"metadata"`
}

// ScriptDraft is the ordered segment sequence plus attempt bookkeeping.
type ScriptDraft struct {
	Segments          []SegmentDraft `json:"segments"`
	WordCount         int            `json:"word_count"`
	GenerationAttempt int            `json:"generation_attempt"`
	ToneApplied       bool           `json:"tone_applied"`
}

// Text joins all segment text in position order.
func (d ScriptDraft) Text() string {
	parts := make([]string, 0, len(d.Segments))
	for _, segment := range d.Segments {
		if trimmed := strings.TrimSpace(segment.Text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n\n")
}

// RecountWords refreshes WordCount from the current segment text.
func (d *ScriptDraft) RecountWords() {
	total := 0
	for _, segment := range d.Segments {
		total += len(strings.Fields(segment.Text))
	}
	d.WordCount = total
}

// StorySegments returns the story segments in position order.
func (d ScriptDraft) StorySegments() []SegmentDraft {
	out := make([]SegmentDraft, 0, len(d.Segments))
	for _, segment := range d.Segments {
		if segment.Kind == KindStory {
			out = append(out, segment)
		}
	}
	return out
}
