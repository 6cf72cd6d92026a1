package post

import (
	"fmt"
	"strings"
)

const draftSystemPrompt = `You are an expert blog writer who creates engaging, well-structured, and informative blog posts.
Your writing is clear, compelling, and tailored to the specified tone and audience.

IMPORTANT FORMATTING RULES:
- Write in clean Markdown format that passes markdown linters
- DO NOT use numbered prefixes in headings (e.g., avoid "1.1 Title", "2.3 Section")
- Use plain heading text only (e.g., "## Introduction" not "## 1. Introduction")
- DO NOT add date, author signature, or metadata at the end of the article
- Start the article with a blockquote (using >) containing an AI attribution notice in the target language
- The attribution should state that this article was written with partial assistance from generative AI
- Ensure proper spacing: blank lines before and after headings, lists, and code blocks
- Use consistent list markers (- for unordered, 1. 2. 3. for ordered)
- Properly indent nested lists with 2 or 4 spaces
- Add language identifiers to code blocks (e.g., ` + "```python, ```bash, ```go" + `)
- Avoid trailing spaces at end of lines
- Use proper link and image syntax
- Ensure proper table formatting with aligned columns

CONTENT STRUCTURE:
- AI attribution notice in blockquote format at the very beginning
- An attention-grabbing introduction
- Well-organized main content with clear sections
- Relevant examples or insights
- A strong conclusion
- Natural flow and readability`

const researchSystemNote = "\n\nYou have access to reference materials that you should use to enrich your content with accurate information and insights."

const metadataSystemPrompt = `You are an SEO and content marketing expert.
Analyze the provided blog post content and generate:
1. 5-8 relevant SEO keywords/phrases that would help this article rank well
2. A compelling 2-3 sentence abstract that summarizes the article in a marketing-friendly way
3. A URL slug: English only, lowercase, words separated by hyphens, at most 6 words. Transliterate or translate non-English titles.

Respond in JSON format with 'keywords' (array of strings), 'abstract' (single string) and 'slug' (single string) fields.
Use the same language as the article for keywords and abstract. Return ONLY valid JSON, no other text.`

// maxMetadataInput bounds the draft excerpt sent for metadata extraction.
const maxMetadataInput = 3000

func draftPrompts(req Request, research string) (system, user string) {
	system = draftSystemPrompt
	if research != "" {
		system += researchSystemNote
	}

	guideline := req.Length.Guideline()

	var b strings.Builder
	fmt.Fprintf(&b, "Write a blog post with the following specifications:\n\nTopic: %s\nLanguage: %s\nTone: %s\nTarget Length: %s",
		req.Topic, req.Language, req.Tone, guideline)
	if research != "" {
		b.WriteString("\n")
		b.WriteString(research)
	}

	fmt.Fprintf(&b, `

Please write a complete blog post in %s that:
1. Starts with an AI attribution notice in a blockquote (>) stating this was written with AI assistance
2. Has an engaging title (without numbering)
3. Includes a compelling introduction
4. Covers the topic thoroughly with well-structured sections (use clean headings without numbers)
5. Uses the specified %s tone consistently
6. Ends with a memorable conclusion
7. Targets approximately %s
8. Follows markdown best practices (proper spacing, code block languages, clean formatting)
9. Does NOT include author signature, date, or metadata at the end`, req.Language, req.Tone, guideline)
	if research != "" {
		b.WriteString("\n10. Incorporates insights from the provided reference materials naturally")
	}
	b.WriteString("\n\nFormat the output in Markdown.")

	return system, b.String()
}

func metadataPrompts(content, language string) (system, user string) {
	user = fmt.Sprintf("Analyze this blog post and generate SEO metadata:\n\n%s\n\nGenerate keywords and abstract in %s.",
		truncateRunes(content, maxMetadataInput), language)
	return metadataSystemPrompt, user
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
