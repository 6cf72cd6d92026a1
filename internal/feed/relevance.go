package feed

import (
	"regexp"
	"strings"
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "must": true,
	"this": true, "that": true, "these": true, "those": true,
	"i": true, "you": true, "he": true, "she": true, "it": true,
	"we": true, "they": true, "what": true, "which": true, "who": true,
	"when": true, "where": true, "why": true, "how": true,
	"all": true, "each": true, "every": true, "both": true, "few": true,
	"more": true, "most": true, "other": true, "some": true, "such": true,
	"no": true, "not": true, "only": true, "same": true, "so": true,
	"than": true, "too": true, "very": true, "just": true, "also": true,
}

var wordRegex = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Keywords extracts the distinct significant words of text, in order.
func Keywords(text string, minLen int) []string {
	words := wordRegex.FindAllString(strings.ToLower(text), -1)

	seen := make(map[string]bool)
	var keywords []string
	for _, word := range words {
		if len([]rune(word)) >= minLen && !stopWords[word] && !seen[word] {
			seen[word] = true
			keywords = append(keywords, word)
		}
	}
	return keywords
}

// Relevance scores an item against a topic on a 0-100 scale by keyword
// density per thousand words. Title matches count double.
func Relevance(topic, title, content string) float64 {
	keywords := Keywords(topic, 2)
	if len(keywords) == 0 {
		return 0
	}

	title = strings.ToLower(title)
	text := title + " " + strings.ToLower(content)
	wordCount := len(strings.Fields(text))
	if wordCount == 0 {
		return 0
	}

	matchCount := 0
	for _, keyword := range keywords {
		matchCount += strings.Count(text, keyword)
		matchCount += strings.Count(title, keyword)
	}
	if matchCount == 0 {
		return 0
	}

	density := float64(matchCount) / float64(wordCount) * 1000
	score := density / float64(len(keywords)) * 10
	if score > 100 {
		score = 100
	}
	return score
}
