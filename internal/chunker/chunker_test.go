package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/jdrodriguez/document-summarizer/internal/document"
)

// numberedSegments builds segments of unique sentences so overlaps are
// unambiguous when tests search for them.
func numberedSegments(segCount, sentencesPerSeg int, page func(i int) int) []document.Segment {
	segs := make([]document.Segment, 0, segCount)
	n := 0
	for i := 0; i < segCount; i++ {
		var sb strings.Builder
		for s := 0; s < sentencesPerSeg; s++ {
			if s > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "Alpha beta gamma delta epsilon sentence %d.", n)
			n++
		}
		segs = append(segs, document.Segment{Text: sb.String(), Page: page(i)})
	}
	return segs
}

// longestOverlap finds the longest suffix of prev that is also a prefix
// of next.
func longestOverlap(prev, next string) string {
	max := len(prev)
	if len(next) < max {
		max = len(next)
	}
	for k := max; k > 0; k-- {
		if prev[len(prev)-k:] == next[:k] {
			return next[:k]
		}
	}
	return ""
}

func TestSplit_SingleChunkUnderCap(t *testing.T) {
	segs := numberedSegments(3, 1, func(int) int { return 0 })
	chunks := Split(segs, Config{MaxTokens: 4000, OverlapTokens: 200})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Index != 0 {
		t.Errorf("expected index 0, got %d", c.Index)
	}
	if c.OverlapTokensWithPrevious != 0 {
		t.Errorf("expected no overlap on the only chunk, got %d", c.OverlapTokensWithPrevious)
	}
	if c.Text != document.FullText(segs) {
		t.Errorf("single chunk should carry the full extracted text")
	}
	if c.TokenCount != CountTokens(c.Text) {
		t.Errorf("token count mismatch: recorded %d, counted %d", c.TokenCount, CountTokens(c.Text))
	}
}

func TestSplit_CapInvariant(t *testing.T) {
	segs := numberedSegments(10, 3, func(int) int { return 0 })
	cfg := Config{MaxTokens: 60, OverlapTokens: 15}
	chunks := Split(segs, cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
		if got := CountTokens(c.Text); got > cfg.MaxTokens {
			t.Errorf("chunk %d: %d tokens exceeds cap %d", i, got, cfg.MaxTokens)
		}
		if c.TokenCount != CountTokens(c.Text) {
			t.Errorf("chunk %d: recorded %d tokens, counted %d", i, c.TokenCount, CountTokens(c.Text))
		}
	}
}

func TestSplit_OverlapIsSharedText(t *testing.T) {
	// One oversized segment so the chunker works at sentence granularity
	// and whole trailing sentences fit the overlap budget.
	segs := numberedSegments(1, 40, func(int) int { return 0 })
	cfg := Config{MaxTokens: 100, OverlapTokens: 20}
	chunks := Split(segs, cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		ov := longestOverlap(chunks[i-1].Text, chunks[i].Text)
		if chunks[i].OverlapTokensWithPrevious == 0 {
			t.Errorf("chunk %d: expected overlap with previous chunk", i)
			continue
		}
		if got := CountTokens(ov); got != chunks[i].OverlapTokensWithPrevious {
			t.Errorf("chunk %d: shared text is %d tokens, recorded %d",
				i, got, chunks[i].OverlapTokensWithPrevious)
		}
		if chunks[i].OverlapTokensWithPrevious > cfg.OverlapTokens {
			t.Errorf("chunk %d: overlap %d exceeds budget %d",
				i, chunks[i].OverlapTokensWithPrevious, cfg.OverlapTokens)
		}
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	segs := numberedSegments(12, 3, func(int) int { return 0 })
	chunks := Split(segs, Config{MaxTokens: 60, OverlapTokens: 15})

	var sb strings.Builder
	sb.WriteString(chunks[0].Text)
	for i := 1; i < len(chunks); i++ {
		ov := longestOverlap(chunks[i-1].Text, chunks[i].Text)
		sb.WriteString(chunks[i].Text[len(ov):])
	}

	if got, want := sb.String(), document.FullText(segs); got != want {
		t.Errorf("concatenating chunks minus overlaps did not reconstruct the text:\ngot  %q\nwant %q", got, want)
	}
}

func TestSplit_ForceSplitOversizedBlock(t *testing.T) {
	// A single block well over the cap with no sentence breaks must be
	// force-split at word boundaries.
	block := strings.TrimSpace(strings.Repeat("lexeme ", 4500))
	segs := []document.Segment{{Text: block}}
	cfg := Config{MaxTokens: 4000, OverlapTokens: 200}
	chunks := Split(segs, cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks from force-split, got %d", len(chunks))
	}
	for i, c := range chunks {
		if got := CountTokens(c.Text); got > cfg.MaxTokens {
			t.Errorf("chunk %d: %d tokens exceeds cap %d", i, got, cfg.MaxTokens)
		}
	}
}

func TestSplit_PageRangesMonotonicAndGapless(t *testing.T) {
	// One segment per page, sized so each page lands in its own chunk.
	segs := make([]document.Segment, 0, 50)
	for p := 1; p <= 50; p++ {
		var sb strings.Builder
		for s := 0; s < 15; s++ {
			if s > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "Content of page %d item %d with several words here.", p, s)
		}
		segs = append(segs, document.Segment{Text: sb.String(), Page: p})
	}
	chunks := Split(segs, Config{MaxTokens: 200, OverlapTokens: 20})

	prevEnd := 0
	for i, c := range chunks {
		if c.StartPage > c.EndPage {
			t.Errorf("chunk %d: start page %d after end page %d", i, c.StartPage, c.EndPage)
		}
		if i > 0 && c.StartPage > prevEnd+1 {
			t.Errorf("chunk %d: page gap between %d and %d", i, prevEnd, c.StartPage)
		}
		if c.StartPage < prevEnd && i > 0 && c.StartPage == 0 {
			t.Errorf("chunk %d: missing page attribution", i)
		}
		prevEnd = c.EndPage
	}
	if chunks[0].StartPage != 1 {
		t.Errorf("expected coverage to start at page 1, got %d", chunks[0].StartPage)
	}
	if chunks[len(chunks)-1].EndPage != 50 {
		t.Errorf("expected coverage to end at page 50, got %d", chunks[len(chunks)-1].EndPage)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	segs := numberedSegments(8, 4, func(i int) int { return i + 1 })
	cfg := Config{MaxTokens: 80, OverlapTokens: 10}

	first := Split(segs, cfg)
	second := Split(segs, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical input produced different chunk sequences")
	}
}

func TestSplit_HeadingTracksSections(t *testing.T) {
	segs := []document.Segment{
		{Text: "Introduction", Heading: "Introduction", Level: 1},
		{Text: "Opening words about the subject at hand."},
		{Text: "Methods", Heading: "Methods", Level: 1},
		{Text: "A description of the approach taken."},
	}
	chunks := Split(segs, Config{MaxTokens: 4000, OverlapTokens: 0})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Heading != "Introduction" {
		t.Errorf("expected heading of the chunk's first content, got %q", chunks[0].Heading)
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	if chunks := Split(nil, DefaultConfig()); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for no segments, got %d", len(chunks))
	}
}

func TestCountTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"one two three", 3},                      // 3 * 1.33 = 3.99
		{strings.Repeat("word ", 100), 133},       // 100 * 1.33
		{strings.Repeat("a b ", 50) + "tail", 134}, // 101 words
	}
	for _, tt := range tests {
		if got := CountTokens(tt.text); got != tt.want {
			t.Errorf("CountTokens(%.20q...): expected %d, got %d", tt.text, tt.want, got)
		}
	}
}

func TestWordsForTokens_StaysWithinBudget(t *testing.T) {
	for _, budget := range []int{1, 2, 10, 200, 4000} {
		words := wordsForTokens(budget)
		if tokensForWords(words) > budget {
			t.Errorf("budget %d: %d words estimates to %d tokens", budget, words, tokensForWords(words))
		}
		if tokensForWords(words+1) <= budget {
			t.Errorf("budget %d: %d words is not maximal", budget, words)
		}
	}
}
