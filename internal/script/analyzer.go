package script

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"newsreel/internal/story"
)

var shockTerms = []string{
	"breakthrough", "surprise", "record", "surge", "collapse", "leak",
	"lawsuit", "ban", "halt", "shutdown", "slam", "explosion", "shock",
	"critical", "urgent", "skyrocket", "crash", "dominates",
}

var futureTerms = []string{
	"roadmap", "pilot", "rollout", "launch", "scale", "platform", "deploy",
	"expansion", "forecast", "strategy", "future", "next-gen",
	"pipeline", "commercial", "production", "go-to-market",
}

var technicalTerms = []string{
	"parameter", "tokens", "architecture", "model", "weights", "alignment",
	"quantum", "qubit", "gpu", "tensor", "transformer", "embedding",
	"diffusion", "reinforcement", "fine-tune", "agentic", "vector", "chip",
	"latency", "retrieval", "context window", "multimodal",
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?(?:%|x|X|\s?billion|\s?million)?`)

type analogyEntry struct {
	keywords []string
	text     string
}

var analogyLibrary = []analogyEntry{
	{[]string{"quantum", "qubit", "superposition"},
		"Picture a logistics network where every route is explored at once. Quantum systems work with similar parallel paths."},
	{[]string{"multimodal", "vision", "audio", "video"},
		"Think of it as hiring a polyglot analyst who can read slides, listen to calls, and parse spreadsheets at the same time."},
	{[]string{"agent", "autonomous", "tool use", "agentic"},
		"It's like promoting a junior analyst to chief of staff. The software now coordinates whole workflows without hand-holding."},
	{[]string{"chip", "semiconductor", "gpu", "asic"},
		"Treat it like a port expansion: more lanes moving compute freight with far less congestion."},
	{[]string{"alignment", "safety", "guardrail"},
		"Alignment puts controls around powerful systems the way financial audits put controls around the books."},
	{[]string{"synthetic", "data engine", "simulation"},
		"Imagine a flight simulator for your data science team. Synthetic data lets them train without touching production logs."},
	{[]string{"robot", "cobot", "manipulation"},
		"Think of a warehouse where the picking robots learned dexterity. Whole categories can now go hands-free."},
	{[]string{"governance", "policy", "auditing", "compliance"},
		"Consider it a compliance moment for AI. The audit office now sits in every sprint review."},
}

const defaultAnalogy = "Net out the jargon: this unlocks a capability teams can operationalize if they move fast."

// Analyzer derives impact metadata for selected stories. It produces
// unfinished story segments for the composer, ordered by impact.
type Analyzer struct {
	maxKeywords int
}

// NewAnalyzer constructs an analyzer with the default keyword cap.
func NewAnalyzer() *Analyzer {
	return &Analyzer{maxKeywords: 5}
}

// Analyze turns scored stories into metadata-only segment drafts ordered
// by impact descending. Stories missing both title and excerpt cannot be
// narrated; they are dropped with a diagnostic rather than failing the
// stage.
func (a *Analyzer) Analyze(stories []story.Scored) ([]SegmentDraft, []string) {
	segments := make([]SegmentDraft, 0, len(stories))
	var dropped []string
	for _, scored := range stories {
		if strings.TrimSpace(scored.Title) == "" && strings.TrimSpace(scored.BodyExcerpt) == "" {
			dropped = append(dropped, fmt.Sprintf("story %s has no narratable text", scored.ID))
			continue
		}
		segments = append(segments, a.analyzeOne(scored))
	}
	sort.SliceStable(segments, func(i, j int) bool {
		if segments[i].Metadata.Impact != segments[j].Metadata.Impact {
			return segments[i].Metadata.Impact > segments[j].Metadata.Impact
		}
		return segments[i].StoryID < segments[j].StoryID
	})
	for i := range segments {
		segments[i].Position = i
	}
	return segments, dropped
}

func (a *Analyzer) analyzeOne(scored story.Scored) SegmentDraft {
	text := strings.ToLower(scored.Title + " " + scored.BodyExcerpt)

	shock := clampUnit(0.2 * float64(countHits(text, shockTerms)))
	future := clampUnit(0.2 * float64(countHits(text, futureTerms)))
	technical := clampUnit(0.2 * float64(countHits(text, technicalTerms)))

	numbers := numberPattern.FindAllString(scored.Title+" "+scored.BodyExcerpt, -1)
	wowTerms := matchingTerms(text, shockTerms)
	wow := clampUnit(0.2*float64(len(numbers)) + 0.3*float64(len(wowTerms)))
	highlight := ""
	switch {
	case wow < 0.4 && len(numbers) > 0:
		highlight = fmt.Sprintf("That %s figure is the stat worth briefing on.", strings.TrimSpace(numbers[0]))
		wow = 0.45
	case wow >= 0.4 && len(wowTerms) > 0:
		highlight = fmt.Sprintf("It's a %s move that will shape this week's conversations.", wowTerms[0])
	}

	// Selection score already folds in freshness, priority, and trending,
	// so it stands in for the novelty and authority signals here.
	impact := clampUnit(0.35*shock + 0.25*future + 0.15*technical + 0.25*clampUnit(scored.Score))

	keywords := a.extractKeywords(text)
	return SegmentDraft{
		StoryID: scored.ID,
		Kind:    KindStory,
		Title:   strings.TrimSpace(scored.Title),
		Excerpt: strings.TrimSpace(scored.BodyExcerpt),
		Metadata: Metadata{
			Impact: impact,
			Scores: map[string]float64{
				"shock":     shock,
				"future":    future,
				"technical": technical,
				"wow":       wow,
			},
			Keywords:     keywords,
			Analogy:      suggestAnalogy(text, keywords),
			WowHighlight: highlight,
			Technical:    technical >= 0.5,
			SegmentType:  classifySegment(scored),
		},
	}
}

func (a *Analyzer) extractKeywords(lowered string) []string {
	terms := make([]string, 0, len(shockTerms)+len(futureTerms)+len(technicalTerms))
	terms = append(terms, technicalTerms...)
	terms = append(terms, futureTerms...)
	terms = append(terms, shockTerms...)
	sort.SliceStable(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })

	var keywords []string
	for _, term := range terms {
		if len(keywords) >= a.maxKeywords {
			break
		}
		if strings.Contains(lowered, term) && !contains(keywords, term) {
			keywords = append(keywords, term)
		}
	}
	if len(keywords) == 0 {
		for _, word := range strings.Fields(lowered) {
			word = strings.Trim(word, ".,!?:;\"'()")
			if len(word) > 4 && !contains(keywords, word) {
				keywords = append(keywords, word)
			}
			if len(keywords) >= 3 {
				break
			}
		}
	}
	return keywords
}

func classifySegment(scored story.Scored) SegmentType {
	text := strings.ToLower(string(scored.Category) + " " + scored.Title + " " + scored.BodyExcerpt)
	switch {
	case containsAny(text, "funding", "raise", "investment", "series "):
		return SegmentFunding
	case containsAny(text, "research", "paper", "study", "arxiv", "breakthrough"):
		return SegmentResearch
	case containsAny(text, "policy", "regulation", "bill", "law", "government"):
		return SegmentPolicy
	default:
		return SegmentNews
	}
}

func suggestAnalogy(lowered string, keywords []string) string {
	for _, entry := range analogyLibrary {
		for _, term := range entry.keywords {
			if strings.Contains(lowered, term) || contains(keywords, term) {
				return entry.text
			}
		}
	}
	return defaultAnalogy
}

func countHits(lowered string, terms []string) int {
	hits := 0
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			hits++
		}
	}
	return hits
}

func matchingTerms(lowered string, terms []string) []string {
	var out []string
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			out = append(out, term)
		}
	}
	return out
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
