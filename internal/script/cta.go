package script

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

var ctaPatterns = []string{
	"So here's the question to take into your next meeting: how does {{topic}} change your plan?",
	"Before you move on, ask your team where {{topic}} fits in the roadmap.",
	"Tell us: does {{topic}} sit on your radar yet, or still a watch item?",
	"The homework stays simple. Name an owner for {{topic}} by end of week.",
}

// InsertCTA appends the call-to-action segment. The pattern is seeded
// by the leading story's fingerprint, and a draft that already carries
// a CTA segment is returned unchanged.
func InsertCTA(draft ScriptDraft) ScriptDraft {
	for _, segment := range draft.Segments {
		if segment.Kind == KindCTA {
			return draft
		}
	}

	topic := "this story"
	seed := ""
	for _, segment := range draft.Segments {
		if segment.Kind == KindStory {
			seed = segment.StoryID
			if len(segment.Metadata.Keywords) > 0 {
				topic = segment.Metadata.Keywords[0]
			}
			break
		}
	}
	pattern := ctaPatterns[xxhash.Sum64String(seed)%uint64(len(ctaPatterns))]
	text := strings.ReplaceAll(pattern, "{{topic}}", topic)

	segments := make([]SegmentDraft, len(draft.Segments), len(draft.Segments)+1)
	copy(segments, draft.Segments)
	segments = append(segments, SegmentDraft{
		Kind:     KindCTA,
		Text:     text,
		Position: len(segments),
	})

	out := draft
	out.Segments = segments
	out.RecountWords()
	return out
}
