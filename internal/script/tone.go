package script

import (
	"regexp"
	"strings"
	"unicode"
)

// weakVerbs maps flat verbs to stronger replacements. Pairs are ordered
// and every replacement is free of weak forms, which keeps the pass
// idempotent: enhancing already-enhanced text changes nothing.
var weakVerbs = []struct {
	weak   string
	strong string
}{
	{"is", "drives"},
	{"are", "fuel"},
	{"was", "triggered"},
	{"were", "sparked"},
	{"be", "become"},
	{"has", "delivers"},
	{"have", "deliver"},
	{"will", "stands to"},
	{"shows", "signals"},
	{"show", "signal"},
	{"make", "force"},
	{"made", "forced"},
}

var weakVerbPatterns = buildWeakVerbPatterns()

func buildWeakVerbPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(weakVerbs))
	for i, pair := range weakVerbs {
		patterns[i] = regexp.MustCompile(`\b` + pair.weak + `\b`)
	}
	return patterns
}

var passivePattern = regexp.MustCompile(`(?i)\b(?:is|are|was|were|be|been)\s+(?:being\s+)?([A-Za-z]+ed)\b`)

// EnhanceTone applies the rule-based tone pass to every segment:
// passive constructions lose their auxiliary, leading "there"/"here"
// filler is trimmed, and weak verbs are strengthened. When relaxed,
// only the passive rewrite and filler trim run.
func EnhanceTone(draft ScriptDraft, relaxed bool) ScriptDraft {
	segments := make([]SegmentDraft, len(draft.Segments))
	copy(segments, draft.Segments)
	for i := range segments {
		segments[i].Text = enhanceText(segments[i].Text, relaxed)
	}
	out := draft
	out.Segments = segments
	out.ToneApplied = true
	out.RecountWords()
	return out
}

func enhanceText(text string, relaxed bool) string {
	sentences := splitSentences(text)
	rewrites := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		revised := passivePattern.ReplaceAllString(sentence, "$1")
		revised = trimFillerOpening(revised)
		if !relaxed {
			for i, pair := range weakVerbs {
				revised = weakVerbPatterns[i].ReplaceAllString(revised, pair.strong)
			}
		}
		rewrites = append(rewrites, capitalizeFirst(strings.TrimSpace(revised)))
	}
	return strings.Join(rewrites, " ")
}

func trimFillerOpening(sentence string) string {
	words := strings.Fields(sentence)
	if len(words) < 2 {
		return sentence
	}
	switch strings.ToLower(words[0]) {
	case "there", "here":
		return strings.Join(words[1:], " ")
	}
	return sentence
}

func capitalizeFirst(sentence string) string {
	runes := []rune(sentence)
	if len(runes) == 0 {
		return sentence
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	flush := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
		current.Reset()
	}
	for _, r := range strings.ReplaceAll(text, "\n", " ") {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()
	return sentences
}
