package ingest

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noisePatterns match boilerplate sentences feeds attach to article bodies
// that confuse downstream analysis.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)click to (share|print)`),
	regexp.MustCompile(`(?i)share this (story|article)`),
	regexp.MustCompile(`(?i)^\s*export citation`),
	regexp.MustCompile(`(?i)^\s*cite (this|article)`),
	regexp.MustCompile(`(?i)the post .* appeared first on`),
}

var abstractHeader = regexp.MustCompile(`(?i)^arxiv:\S+(\s+announce type:\s*\w+)?\s+abstract:\s*`)

// CleanHTML strips markup from a feed fragment, drops boilerplate sentences,
// and collapses whitespace. Plain text passes through unchanged apart from
// whitespace normalization.
func CleanHTML(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}

	text := fragment
	if strings.ContainsAny(fragment, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
		if err == nil {
			text = doc.Text()
		}
	}
	text = strings.Join(strings.Fields(text), " ")
	text = abstractHeader.ReplaceAllString(text, "")

	segments := splitSentences(text)
	kept := make([]string, 0, len(segments))
	for _, segment := range segments {
		if isNoise(segment) {
			continue
		}
		kept = append(kept, segment)
	}
	return strings.Join(kept, " ")
}

func isNoise(sentence string) bool {
	for _, pattern := range noisePatterns {
		if pattern.MatchString(sentence) {
			return true
		}
	}
	return false
}

var sentenceBoundary = regexp.MustCompile(`(?:[.!?])\s+`)

func splitSentences(text string) []string {
	if text == "" {
		return nil
	}
	boundaries := sentenceBoundary.FindAllStringIndex(text, -1)
	segments := make([]string, 0, len(boundaries)+1)
	start := 0
	for _, bounds := range boundaries {
		segments = append(segments, strings.TrimSpace(text[start:bounds[0]+1]))
		start = bounds[1]
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		segments = append(segments, tail)
	}
	return segments
}
