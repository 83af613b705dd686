// Package render turns the publisher's detail-page HTML into flowed
// notification text and pulls out the first inline image reference.
package render

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"feedherald/internal/datetext"
)

var (
	// Inline images survive the text pass as literal placeholder tags so the
	// first one can be promoted to the card image before all are stripped.
	imagePattern = regexp.MustCompile(`<img[^>]*src='([^']*)'[^>]*>`)
	spaceRuns    = regexp.MustCompile(`[ \t]{2,}`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// Renderer converts one HTML fragment into a notification body.
type Renderer struct {
	base       *url.URL
	normalizer *datetext.Normalizer
}

// New builds a renderer resolving relative references against baseURL.
func New(baseURL string, normalizer *datetext.Normalizer) (*Renderer, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %s: %w", baseURL, err)
	}
	return &Renderer{base: base, normalizer: normalizer}, nil
}

// Render returns the flowed text body and the first image reference found in
// the fragment (empty if none). It never fails: unparseable input degrades
// to the raw text run through date normalization.
func (r *Renderer) Render(fragment string) (body, imageURL string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return r.normalizer.Normalize(strings.TrimSpace(fragment)), ""
	}

	var b strings.Builder
	r.renderNodes(doc.Find("body"), &b)
	text := b.String()

	if m := imagePattern.FindStringSubmatch(text); m != nil {
		imageURL = r.resolve(m[1])
	}
	text = imagePattern.ReplaceAllString(text, "")

	text = applyFixups(text)
	text = tidyLines(text)
	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = r.normalizer.Normalize(text)

	return strings.TrimSpace(text), imageURL
}

// renderNodes walks the fragment emitting flowed text: block elements close
// with a single line break, anchors keep their destination literally, and
// img tags become placeholder text.
func (r *Renderer) renderNodes(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "#text":
			writeCollapsed(b, child.Text())
		case "br":
			b.WriteString("\n")
		case "hr":
			b.WriteString("* * *\n")
		case "img":
			src, _ := child.Attr("src")
			fmt.Fprintf(b, "<img src='%s'>", src)
		case "a":
			r.renderNodes(child, b)
			if href, ok := child.Attr("href"); ok && href != "" && !strings.HasPrefix(href, "#") {
				fmt.Fprintf(b, " <%s>", r.resolve(href))
			}
		case "li":
			b.WriteString("* ")
			r.renderNodes(child, b)
			b.WriteString("\n")
		case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol",
			"table", "thead", "tbody", "tr", "section", "article", "blockquote":
			r.renderNodes(child, b)
			b.WriteString("\n")
		case "script", "style", "head", "#comment":
			// non-content
		default:
			r.renderNodes(child, b)
		}
	})
}

// writeCollapsed folds runs of source whitespace into single spaces so the
// markup's own formatting does not leak into the body.
func writeCollapsed(b *strings.Builder, text string) {
	folded := strings.Join(strings.Fields(text), " ")
	if folded == "" {
		return
	}
	if strings.HasPrefix(text, " ") || strings.HasPrefix(text, "\n") || strings.HasPrefix(text, "\t") {
		b.WriteString(" ")
	}
	b.WriteString(folded)
	if strings.HasSuffix(text, " ") || strings.HasSuffix(text, "\n") || strings.HasSuffix(text, "\t") {
		b.WriteString(" ")
	}
}

// applyFixups handles the handful of markers the feed producer emits:
// horizontal rules vanish, dash bullets become standard bullets, the ■
// section glyph becomes a heading-level bullet.
func applyFixups(text string) string {
	text = strings.ReplaceAll(text, "* * *", "")
	text = strings.ReplaceAll(text, "\n-", "\n* ")
	text = strings.ReplaceAll(text, "■", "## ■")
	text = strings.ReplaceAll(text, "•", "* ")
	return text
}

func tidyLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) resolve(ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return r.base.ResolveReference(parsed).String()
}
