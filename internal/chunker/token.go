package chunker

import "strings"

// Roughly 1.33 tokens per English word. The same estimator is used for
// budgeting and for reported counts.
const tokensPerWord = 1.33

// CountTokens gives a deterministic token estimate for a piece of text.
func CountTokens(text string) int {
	return tokensForWords(len(strings.Fields(text)))
}

func tokensForWords(words int) int {
	if words == 0 {
		return 0
	}
	tokens := int(float64(words) * tokensPerWord)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// wordsForTokens returns the largest word count whose token estimate
// still fits within the given budget.
func wordsForTokens(tokens int) int {
	if tokens <= 0 {
		return 0
	}
	words := int(float64(tokens) / tokensPerWord)
	for tokensForWords(words+1) <= tokens {
		words++
	}
	for words > 0 && tokensForWords(words) > tokens {
		words--
	}
	return words
}
