package ingest

import (
	"strings"
	"testing"
)

func TestChunker_ShortTextIsOneChunk(t *testing.T) {
	c := NewChunker(DefaultChunkChars, DefaultOverlapChars)

	chunks := c.Split("One sentence. Another sentence.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "One sentence. Another sentence." {
		t.Errorf("unexpected chunk %q", chunks[0])
	}
}

func TestChunker_RespectsCharBudget(t *testing.T) {
	c := NewChunker(100, 0)

	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("This sentence is close to forty characters long. ")
	}

	chunks := c.Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d exceeds budget: %d chars", i, len(chunk))
		}
	}
}

func TestChunker_OverlapRepeatsTailSentences(t *testing.T) {
	c := NewChunker(60, 30)

	text := "First sentence ends here. Second sentence ends here. Third sentence ends here. Fourth sentence ends here."
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	lastOfFirst := chunks[0][strings.LastIndex(chunks[0], ".")-20:]
	if !strings.Contains(chunks[1], strings.TrimSpace(strings.TrimSuffix(lastOfFirst, "."))) {
		t.Errorf("second chunk does not repeat the first chunk's tail:\n%q\n%q", chunks[0], chunks[1])
	}
}

func TestChunker_OversizedSentenceIsOwnChunk(t *testing.T) {
	c := NewChunker(50, 10)

	long := "This single sentence is far longer than the fifty character budget allows."
	chunks := c.Split(long + " Short one.")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != long {
		t.Errorf("oversized sentence must stand alone, got %q", chunks[0])
	}
}

func TestChunker_NoTerminatorFallsBackToWholeText(t *testing.T) {
	c := NewChunker(DefaultChunkChars, DefaultOverlapChars)

	chunks := c.Split("a fragment with no terminator")
	if len(chunks) != 1 || chunks[0] != "a fragment with no terminator" {
		t.Errorf("unexpected chunks %v", chunks)
	}
}

func TestChunker_EmptyText(t *testing.T) {
	c := NewChunker(DefaultChunkChars, DefaultOverlapChars)

	if chunks := c.Split("   \n  "); chunks != nil {
		t.Errorf("expected no chunks, got %v", chunks)
	}
}

func TestChunker_AlwaysTerminates(t *testing.T) {
	// Overlap nearly as large as the budget must still make forward progress.
	c := NewChunker(60, 59)

	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("Sentence padding to fill the budget quickly here. ")
	}

	chunks := c.Split(b.String())
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if !strings.Contains(chunks[len(chunks)-1], "Sentence padding") {
		t.Error("final chunk missing content")
	}
}
