package chunker

import "strings"

const tokensPerWord = 1.33

// EstimateTokens gives a rough token count from the word count. Exact
// tokenization is not needed to size chunks.
func EstimateTokens(text string) int {
	return tokensFor(wordCount(text))
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func tokensFor(words int) int {
	if words == 0 {
		return 0
	}
	return max(1, int(float64(words)*tokensPerWord))
}
