// Package outline derives a document's heading structure from its
// extracted segments.
package outline

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jdrodriguez/document-summarizer/internal/document"
)

// Section numbering patterns, with detection confidence. Only candidates
// at or above confidenceThreshold make it into the outline.
var sectionPatterns = []struct {
	re         *regexp.Regexp
	confidence float64
}{
	{regexp.MustCompile(`^\s*(\d+\.)+\s+\S`), 0.9},
	{regexp.MustCompile(`^\s*[IVXLCDM]+\.\s+\S`), 0.85},
	{regexp.MustCompile(`^\s*[A-Z]\.\s+\S`), 0.8},
	{regexp.MustCompile(`(?i)^\s*(Section|Article|Chapter|Part)\s+[\dIVXLCDM]+`), 0.95},
}

const confidenceThreshold = 0.7

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	pageNumRe    = regexp.MustCompile(`^[A-Z]?-?\d+\s+`)
	hashPrefixRe = regexp.MustCompile(`^#+\s*`)
	dottedNumRe  = regexp.MustCompile(`^\s*([\d.]+)`)
)

// Analyze produces the ordered outline for one file's segments.
//
// Segments explicitly tagged as headings by their extractor are taken
// verbatim. When a format provides no heading signal at all, line-level
// heuristics run instead. A document with zero detected headings gets a
// single synthetic entry titled from the filename.
func Analyze(segments []document.Segment, totalPages int, filename string) []document.OutlineEntry {
	entries := explicitEntries(segments)
	if len(entries) == 0 {
		entries = heuristicEntries(segments)
	}
	if len(entries) == 0 {
		return []document.OutlineEntry{syntheticEntry(totalPages, filename)}
	}
	assignEndPages(entries, totalPages)
	return entries
}

func explicitEntries(segments []document.Segment) []document.OutlineEntry {
	var entries []document.OutlineEntry
	for _, seg := range segments {
		if !seg.IsHeading() {
			continue
		}
		entries = append(entries, document.OutlineEntry{
			Heading:   CleanHeading(seg.Heading),
			Level:     seg.Level,
			StartPage: seg.Page,
		})
	}
	return entries
}

// heuristicEntries detects candidate headings in untagged text: numbered
// or named section markers, short ALL-CAPS lines, and short isolated
// lines without terminal punctuation. Best-effort; levels come from
// numbering depth where available, otherwise 1.
func heuristicEntries(segments []document.Segment) []document.OutlineEntry {
	var entries []document.OutlineEntry
	for _, seg := range segments {
		lines := strings.Split(seg.Text, "\n")
		for li, line := range lines {
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			confidence := 0.0
			level := 1

			for _, p := range sectionPatterns {
				if p.re.MatchString(text) {
					confidence = p.confidence
					if m := dottedNumRe.FindStringSubmatch(text); m != nil {
						depth := strings.Count(strings.TrimRight(m[1], "."), ".") + 1
						if depth > 4 {
							depth = 4
						}
						level = depth
					}
					break
				}
			}

			// Short ALL-CAPS lines are likely headers.
			if confidence == 0 && len(text) < 120 &&
				len(strings.Fields(text)) >= 2 && text == strings.ToUpper(text) {
				confidence = 0.7
			}

			// Short isolated line with no terminal punctuation. Only the
			// first line of a paragraph segment qualifies: blank lines
			// around it became the segment boundary during extraction.
			if confidence == 0 && li == 0 && len(lines) == 1 &&
				len(text) < 80 && !strings.ContainsAny(text[len(text)-1:], ".,;:!?") {
				confidence = 0.7
			}

			if confidence >= confidenceThreshold {
				entries = append(entries, document.OutlineEntry{
					Heading:   CleanHeading(truncate(text, 120)),
					Level:     level,
					StartPage: seg.Page,
				})
			}
		}
	}
	return entries
}

func syntheticEntry(totalPages int, filename string) document.OutlineEntry {
	start, end := 0, 0
	if totalPages > 0 {
		start, end = 1, totalPages
	}
	return document.OutlineEntry{
		Heading:   TitleFromFilename(filename),
		Level:     1,
		StartPage: start,
		EndPage:   end,
	}
}

// assignEndPages closes each entry at the page before the next entry
// starts, floored at its own start page. The final entry runs to the
// document's last page. Entries without page attribution keep 0-0.
func assignEndPages(entries []document.OutlineEntry, totalPages int) {
	for i := range entries {
		if entries[i].StartPage == 0 {
			entries[i].EndPage = 0
			continue
		}
		if i+1 < len(entries) {
			end := entries[i+1].StartPage - 1
			if end < entries[i].StartPage {
				end = entries[i].StartPage
			}
			entries[i].EndPage = end
		} else {
			end := totalPages
			if end < entries[i].StartPage {
				end = entries[i].StartPage
			}
			entries[i].EndPage = end
		}
	}
}

// CleanHeading normalizes heading text: collapses whitespace, strips
// leading page numbers and markdown hashes.
func CleanHeading(text string) string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	text = strings.TrimSpace(pageNumRe.ReplaceAllString(text, ""))
	text = strings.TrimSpace(hashPrefixRe.ReplaceAllString(text, ""))
	if text == "" {
		return "Untitled Section"
	}
	return text
}

// TitleFromFilename derives a display title from a file's base name.
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
