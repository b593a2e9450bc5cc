package ingest

import (
	"regexp"
	"strings"
)

const (
	// DefaultChunkChars is the character budget per chunk.
	DefaultChunkChars = 800
	// DefaultOverlapChars is how much trailing text carries into the next chunk.
	DefaultOverlapChars = 100
)

var sentenceSplitter = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?]+)`)

// Chunker splits lesson text into sentence-aligned chunks under a character
// budget, with overlap between consecutive chunks so context survives the
// split boundaries.
type Chunker struct {
	maxChars     int
	overlapChars int
}

// NewChunker creates a chunker. Non-positive sizes fall back to the defaults.
func NewChunker(maxChars, overlapChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultChunkChars
	}
	if overlapChars < 0 || overlapChars >= maxChars {
		overlapChars = DefaultOverlapChars
	}
	return &Chunker{maxChars: maxChars, overlapChars: overlapChars}
}

// Split breaks text into chunks. Sentences are never cut; a single sentence
// longer than the budget becomes its own chunk.
func (c *Chunker) Split(text string) []string {
	sentences := sentenceSplitter.FindAllString(text, -1)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		sentences = []string{trimmed}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}

	var chunks []string
	start := 0
	for start < len(sentences) {
		end := start
		size := 0
		for end < len(sentences) {
			next := len(sentences[end])
			if size > 0 {
				next++ // joining space
			}
			if size+next > c.maxChars && size > 0 {
				break
			}
			size += next
			end++
		}

		chunks = append(chunks, strings.Join(sentences[start:end], " "))
		if end == len(sentences) {
			break
		}
		start = c.backtrackOverlap(sentences, start, end)
	}
	return chunks
}

// backtrackOverlap walks back from the chunk boundary until the overlap
// budget is spent, so the next chunk repeats the tail of this one. The
// window always moves forward past the previous start.
func (c *Chunker) backtrackOverlap(sentences []string, prevStart, end int) int {
	start := end
	carried := 0
	for start > prevStart+1 {
		carried += len(sentences[start-1])
		if carried > c.overlapChars {
			break
		}
		start--
	}
	return start
}
