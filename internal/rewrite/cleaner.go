package rewrite

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

var (
	tagPattern   = regexp.MustCompile("<[^>]*>")
	spacePattern = regexp.MustCompile(`[ \t]+`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

// Cleaner prepares pasted resume text for the model and model output for
// decoding.
type Cleaner struct{}

func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// CleanHTML returns the readable text of an HTML paste. Plain text passes
// through with whitespace tidied.
func (c *Cleaner) CleanHTML(input string) string {
	if !strings.Contains(input, "<") {
		return cleanText(input)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return cleanText(tagPattern.ReplaceAllString(input, " "))
	}
	doc.Find("script, style, nav, iframe, noscript, svg").Remove()
	var blocks []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, td").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) > 0 {
		return cleanText(strings.Join(blocks, "\n"))
	}
	return cleanText(doc.Text())
}

// CleanLLMResponse strips markdown fences around a JSON answer and unwraps a
// top-level "document" or "resume" envelope when the model added one.
func (c *Cleaner) CleanLLMResponse(response string) string {
	out := strings.TrimSpace(response)
	if strings.Contains(out, "```") {
		start := strings.Index(out, "```")
		rest := out[start+3:]
		// drop a language tag such as ```json
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
			rest = rest[nl+1:]
		}
		if end := strings.LastIndex(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		out = strings.TrimSpace(rest)
	}
	if !gjson.Valid(out) {
		return out
	}
	for _, envelope := range []string{"document", "resume"} {
		if inner := gjson.Get(out, envelope); inner.IsObject() {
			return inner.Raw
		}
	}
	return out
}

func cleanText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spacePattern.ReplaceAllString(l, " "))
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
