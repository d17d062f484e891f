package script

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

type transitionEntry struct {
	phrase string
	tags   []string
}

var transitionLibrary = []transitionEntry{
	{"Now switch gears.", []string{"news", "signal_shift"}},
	{"Here's where it gets interesting.", []string{"news", "momentum"}},
	{"Follow the money on this next one.", []string{"funding"}},
	{"The checkbooks tell their own story.", []string{"funding", "momentum"}},
	{"From the funding desks to the labs.", []string{"research", "signal_shift"}},
	{"The research side just raised the stakes.", []string{"research", "momentum"}},
	{"Regulators want a word.", []string{"policy"}},
	{"The rulebook races to catch up.", []string{"policy", "signal_shift"}},
	{"One more before the wrap.", []string{"closing"}},
	{"Which brings us to the close.", []string{"closing", "momentum"}},
}

// InsertTransitions appends a transition phrase to every story segment
// except the last. Selection is tag-matched and seeded by the story
// fingerprint, so repeated runs pick identical phrases, and a segment
// already carrying its phrase is left untouched.
func InsertTransitions(draft ScriptDraft) ScriptDraft {
	segments := make([]SegmentDraft, len(draft.Segments))
	copy(segments, draft.Segments)

	storyIdx := make([]int, 0, len(segments))
	for i, segment := range segments {
		if segment.Kind == KindStory {
			storyIdx = append(storyIdx, i)
		}
	}
	for n, i := range storyIdx {
		if n == len(storyIdx)-1 {
			break
		}
		segment := &segments[i]
		tags := []string{string(segment.Metadata.SegmentType), "momentum", "signal_shift"}
		phrase := pickTransition(segment.StoryID, tags)
		if !strings.HasSuffix(strings.TrimSpace(segment.Text), phrase) {
			segment.Text = strings.TrimSpace(segment.Text) + " " + phrase
		}
	}

	out := draft
	out.Segments = segments
	out.RecountWords()
	return out
}

// HasTransitions reports whether every story segment except the last
// ends with a phrase from the library.
func HasTransitions(draft ScriptDraft) bool {
	stories := draft.StorySegments()
	for i, segment := range stories {
		if i == len(stories)-1 {
			break
		}
		trimmed := strings.TrimSpace(segment.Text)
		found := false
		for _, entry := range transitionLibrary {
			if strings.HasSuffix(trimmed, entry.phrase) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func pickTransition(storyID string, tags []string) string {
	tagSet := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tagSet[tag] = true
	}
	var matched []string
	for _, entry := range transitionLibrary {
		for _, tag := range entry.tags {
			if tagSet[tag] {
				matched = append(matched, entry.phrase)
				break
			}
		}
	}
	if len(matched) == 0 {
		for _, entry := range transitionLibrary {
			matched = append(matched, entry.phrase)
		}
	}
	seed := xxhash.Sum64String(storyID)
	return matched[seed%uint64(len(matched))]
}
