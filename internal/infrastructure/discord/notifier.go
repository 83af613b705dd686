// Package discord delivers notifications to per-feed Discord webhooks.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"feedherald/internal/domain"
	"feedherald/internal/ports"
)

// Notifier posts webhook payloads; each feed kind has its own channel URL.
type Notifier struct {
	webhooks map[domain.FeedKind]string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the webhook URL per feed kind.
func NewNotifier(webhooks map[domain.FeedKind]string, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Notifier{webhooks: webhooks, client: client}
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Image       *embedImage  `json:"image,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
}

type embedImage struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text string `json:"text"`
}

// Send posts one notification to the feed's webhook. Any non-2xx response is
// a delivery failure.
func (n *Notifier) Send(ctx context.Context, kind domain.FeedKind, note domain.Notification) error {
	webhookURL, ok := n.webhooks[kind]
	if !ok || webhookURL == "" {
		return fmt.Errorf("no webhook configured for feed %s", kind)
	}

	body, err := json.Marshal(toPayload(note))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}

func toPayload(note domain.Notification) webhookPayload {
	e := embed{
		Title:       note.Card.Title,
		Description: note.Card.Body,
		URL:         note.Card.URL,
		Color:       note.Card.Color,
	}
	if note.Card.ImageURL != "" {
		e.Image = &embedImage{URL: note.Card.ImageURL}
	}
	if note.Card.Footer != "" {
		e.Footer = &embedFooter{Text: note.Card.Footer}
	}
	return webhookPayload{
		Content: note.Content,
		Embeds:  []embed{e},
	}
}
