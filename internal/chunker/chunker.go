package chunker

import (
	"strings"

	"github.com/jdrodriguez/document-summarizer/internal/document"
)

// Config controls chunking behavior.
type Config struct {
	MaxTokens     int // Hard token cap per chunk.
	OverlapTokens int // Token overlap between consecutive chunks.
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     4000,
		OverlapTokens: 200,
	}
}

// unit is an atomic piece of text the chunker will never split further.
// sep is the separator that preceded the unit in the full extracted text;
// a unit that starts a chunk drops its sep, so unit sequences re-join into
// exact substrings of the source.
type unit struct {
	text    string
	sep     string
	page    int
	heading string
	words   int
}

// Split merges segments into token-bounded, overlapping chunks.
//
// Segments are taken in document order. A segment whose own token count
// exceeds MaxTokens is pre-split at sentence boundaries, and a sentence
// that still exceeds the cap is force-split at word boundaries, so no
// chunk ever exceeds MaxTokens. When a chunk closes, the next chunk
// re-includes the trailing whole units of the closed chunk that fit the
// overlap budget. The result is deterministic for identical input.
func Split(segments []document.Segment, cfg Config) []document.Chunk {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = 0
	}
	if cfg.OverlapTokens >= cfg.MaxTokens {
		cfg.OverlapTokens = cfg.MaxTokens - 1
	}

	units := buildUnits(segments, cfg.MaxTokens)
	if len(units) == 0 {
		return nil
	}

	var chunks []document.Chunk
	var cur []unit
	overlapCount := 0
	curWords := 0

	for _, u := range units {
		if len(cur) > 0 && tokensForWords(curWords+u.words) > cfg.MaxTokens {
			ov := overlapTail(cur, cfg.OverlapTokens)
			// Shrink the overlap if it would push the fresh chunk over
			// the cap before any new content fits.
			for len(ov) > 0 && tokensForWords(unitWords(ov)+u.words) > cfg.MaxTokens {
				ov = ov[1:]
			}

			closed := finishChunk(cur, overlapCount, len(chunks))
			if len(ov) == 0 {
				// No overlap carries the separator forward, so keep it on
				// the closing chunk to preserve lossless concatenation.
				closed.Text += u.sep
			}
			chunks = append(chunks, closed)

			cur = append([]unit(nil), ov...)
			overlapCount = len(ov)
			curWords = unitWords(ov)
		}
		cur = append(cur, u)
		curWords += u.words
	}
	chunks = append(chunks, finishChunk(cur, overlapCount, len(chunks)))

	return chunks
}

func finishChunk(units []unit, overlapCount, index int) document.Chunk {
	var sb strings.Builder
	words := 0
	startPage, endPage := 0, 0
	for i, u := range units {
		if i > 0 {
			sb.WriteString(u.sep)
		}
		sb.WriteString(u.text)
		words += u.words
		if u.page > 0 {
			if startPage == 0 {
				startPage = u.page
			}
			endPage = u.page
		}
	}

	// The heading in effect at the first new-content unit.
	heading := ""
	if overlapCount < len(units) {
		heading = units[overlapCount].heading
	} else if len(units) > 0 {
		heading = units[0].heading
	}

	return document.Chunk{
		Index:                     index,
		Text:                      sb.String(),
		TokenCount:                tokensForWords(words),
		StartPage:                 startPage,
		EndPage:                   endPage,
		Heading:                   heading,
		OverlapTokensWithPrevious: tokensForWords(unitWords(units[:overlapCount])),
	}
}

// overlapTail returns the longest run of trailing units whose combined
// token estimate fits within the overlap budget.
func overlapTail(units []unit, overlapTokens int) []unit {
	if overlapTokens <= 0 {
		return nil
	}
	words := 0
	start := len(units)
	for start > 0 {
		next := units[start-1].words
		if tokensForWords(words+next) > overlapTokens {
			break
		}
		words += next
		start--
	}
	return units[start:]
}

func unitWords(units []unit) int {
	n := 0
	for _, u := range units {
		n += u.words
	}
	return n
}

// buildUnits turns segments into atomic units, pre-splitting any segment
// whose token estimate exceeds maxTokens. It also tracks the enclosing
// heading for each unit.
func buildUnits(segments []document.Segment, maxTokens int) []unit {
	var units []unit
	currentHeading := ""

	for i, seg := range segments {
		if seg.IsHeading() {
			currentHeading = seg.Heading
		}
		sep := ""
		if i > 0 {
			sep = document.SegmentSeparator
		}

		words := len(strings.Fields(seg.Text))
		if tokensForWords(words) <= maxTokens {
			if words == 0 {
				continue
			}
			units = append(units, unit{
				text:    seg.Text,
				sep:     sep,
				page:    seg.Page,
				heading: currentHeading,
				words:   words,
			})
			continue
		}

		for j, p := range splitOversized(seg.Text, maxTokens) {
			psep := p.sep
			if j == 0 {
				psep = sep
			}
			units = append(units, unit{
				text:    p.text,
				sep:     psep,
				page:    seg.Page,
				heading: currentHeading,
				words:   len(strings.Fields(p.text)),
			})
		}
	}
	return units
}

// piece is an exact substring of a segment plus the separator that
// preceded it, so pieces re-join losslessly.
type piece struct {
	text string
	sep  string
}

// splitOversized breaks a segment into sentence pieces, then force-splits
// any sentence that alone exceeds the token cap at word boundaries.
func splitOversized(text string, maxTokens int) []piece {
	maxWords := wordsForTokens(maxTokens)
	if maxWords < 1 {
		maxWords = 1
	}

	var out []piece
	for _, s := range splitSentences(text) {
		if len(strings.Fields(s.text)) <= maxWords {
			out = append(out, s)
			continue
		}
		for k, w := range splitWords(s.text, maxWords) {
			if k == 0 {
				w.sep = s.sep
			}
			out = append(out, w)
		}
	}
	return out
}

// splitSentences partitions text into sentences. A sentence ends at
// '.', '!' or '?' followed by whitespace; the whitespace run becomes the
// next piece's separator. The pieces concatenate back to text exactly.
func splitSentences(text string) []piece {
	var pieces []piece
	sep := ""
	start := 0
	i := 0
	for i < len(text) {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && i+1 < len(text) && isSpaceByte(text[i+1]) {
			end := i + 1
			k := end
			for k < len(text) && isSpaceByte(text[k]) {
				k++
			}
			if k < len(text) {
				pieces = append(pieces, piece{text: text[start:end], sep: sep})
				sep = text[end:k]
				start = k
				i = k
				continue
			}
		}
		i++
	}
	if start < len(text) {
		pieces = append(pieces, piece{text: text[start:], sep: sep})
	}
	return pieces
}

// splitWords partitions a single sentence into pieces of at most maxWords
// words, cutting only at whitespace runs. The pieces concatenate back to
// the sentence exactly.
func splitWords(text string, maxWords int) []piece {
	var pieces []piece
	sep := ""
	start := 0
	words := 0
	i := 0
	for i < len(text) {
		// Skip a word.
		for i < len(text) && !isSpaceByte(text[i]) {
			i++
		}
		words++
		if words < maxWords {
			// Skip the following whitespace run and continue.
			for i < len(text) && isSpaceByte(text[i]) {
				i++
			}
			continue
		}
		// Cut here if more content follows.
		end := i
		for i < len(text) && isSpaceByte(text[i]) {
			i++
		}
		if i < len(text) {
			pieces = append(pieces, piece{text: text[start:end], sep: sep})
			sep = text[end:i]
			start = i
			words = 0
		}
	}
	if start < len(text) {
		pieces = append(pieces, piece{text: text[start:], sep: sep})
	}
	return pieces
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
