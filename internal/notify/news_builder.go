package notify

import (
	"context"
	"fmt"
	"strings"

	"feedherald/internal/domain"
	"feedherald/internal/ports"
	"feedherald/internal/render"
)

const (
	defaultMaxBody = 4096
	ellipsis       = "..."
	truncatedNote  = "Announcement truncated. Read the full text at the link above."
)

// NewsBuilder renders in-game news entries into notifications.
type NewsBuilder struct {
	pages    ports.PageFetcher
	renderer *render.Renderer
	colors   map[string]int
	maxBody  int
}

var _ Builder = (*NewsBuilder)(nil)

// NewNewsBuilder wires the detail-page fetcher and renderer. maxBody is the
// delivery platform's body length cap; zero means the platform default.
func NewNewsBuilder(pages ports.PageFetcher, renderer *render.Renderer, colors map[string]int, maxBody int) *NewsBuilder {
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	return &NewsBuilder{pages: pages, renderer: renderer, colors: colors, maxBody: maxBody}
}

// Kind identifies the feed this builder serves.
func (b *NewsBuilder) Kind() domain.FeedKind {
	return domain.KindNews
}

// Build produces the announcement message and card for one news entry.
// Entries browsed internally get a rendered body; everything else is a
// link-only card.
func (b *NewsBuilder) Build(ctx context.Context, record domain.Record) (domain.Notification, error) {
	news, ok := record.(domain.NewsRecord)
	if !ok {
		return domain.Notification{}, fmt.Errorf("news builder received %s record %d", record.Kind(), record.EntryID())
	}

	card := domain.Card{
		Title: news.Title,
		URL:   escapeURL(cardURL(news)),
		Color: b.colors[news.InformationTag],
	}

	if news.BrowseType == "internal" && news.DetailHTMLURL != "" {
		page, err := b.pages.FetchText(ctx, news.DetailHTMLURL)
		if err != nil {
			return domain.Notification{}, fmt.Errorf("fetch detail page: %w", err)
		}
		body, imageURL := b.renderer.Render(page)
		card.ImageURL = imageURL
		card.Body, card.Footer = clampBody(body, b.maxBody)
	}

	return domain.Notification{
		Content: fmt.Sprintf("New in-game news posted <t:%d:R>!", news.StartAt/1000),
		Card:    card,
	}, nil
}

func cardURL(news domain.NewsRecord) string {
	if news.DetailURL != "" {
		return news.DetailURL
	}
	return news.Path
}

// clampBody enforces the platform cap, counted in characters. An oversized
// body is cut to cap-3 characters plus an ellipsis and gains a footer note;
// a body exactly at the cap passes through untouched.
func clampBody(body string, max int) (clamped, footer string) {
	runes := []rune(body)
	if len(runes) <= max {
		return body, ""
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis, truncatedNote
}

// escapeURL percent-escapes everything except unreserved characters and the
// separators already meaningful in a URL (/ : ? = &).
func escapeURL(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if urlSafe(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func urlSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', '/', ':', '?', '=', '&':
		return true
	}
	return false
}
