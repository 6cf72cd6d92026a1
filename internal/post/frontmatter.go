package post

import (
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// renderFrontMatter builds the YAML block that opens every post, followed by
// a blank line.
func renderFrontMatter(topic, author, language string, date time.Time, meta Metadata) string {
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	b.WriteString("title: " + strconv.Quote(topic) + "\n")
	b.WriteString("date: " + date.Format("2006-01-02") + "\n")
	b.WriteString("author: " + scalar(author) + "\n")
	b.WriteString("language: " + scalar(language) + "\n")
	b.WriteString("slug: " + scalar(meta.Slug) + "\n")
	b.WriteString("keywords:\n")
	for _, k := range meta.Keywords {
		b.WriteString("  - " + scalar(k) + "\n")
	}
	b.WriteString("abstract: |\n")
	for _, line := range strings.Split(meta.Abstract, "\n") {
		if strings.TrimSpace(line) == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("  " + strings.TrimRight(line, " \t") + "\n")
	}
	if meta.Fallback {
		b.WriteString("metadata_fallback: true\n")
	}
	b.WriteString(delimiter + "\n\n")
	return b.String()
}

// scalar leaves plain values bare and quotes anything YAML would read as
// something other than the same string.
func scalar(s string) string {
	if s == "" {
		return `""`
	}
	var m map[string]any
	if err := yaml.Unmarshal([]byte("v: "+s), &m); err == nil {
		if str, ok := m["v"].(string); ok && str == s && !strings.ContainsAny(s, "\n#") {
			return s
		}
	}
	return strconv.Quote(s)
}

// SplitFrontMatter separates a leading front matter block from the body. The
// document must open with a "---" line, and the first later line that is
// exactly "---" closes the block. ok is false when there is no such block or
// its contents are not a YAML mapping.
func SplitFrontMatter(doc string) (front, body string, ok bool) {
	if !strings.HasPrefix(doc, delimiter+"\n") && !strings.HasPrefix(doc, delimiter+"\r\n") {
		return "", doc, false
	}

	offset := 0
	first := true
	for line := range strings.Lines(doc) {
		offset += len(line)
		if first {
			first = false
			continue
		}
		if strings.TrimRight(line, "\r\n") != delimiter {
			continue
		}

		front, body = doc[:offset], doc[offset:]
		inner := strings.TrimSuffix(strings.TrimPrefix(front, delimiter), line)
		var fields map[string]any
		if err := yaml.Unmarshal([]byte(inner), &fields); err != nil || fields == nil {
			return "", doc, false
		}
		return front, body, true
	}
	return "", doc, false
}
