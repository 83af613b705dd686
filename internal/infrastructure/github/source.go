// Package github fetches the publisher's raw feed files through the GitHub
// contents API.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"feedherald/internal/domain"
	"feedherald/internal/ports"
)

const defaultAPIBase = "https://api.github.com"

// Source reads feed files from a source-control repository.
type Source struct {
	apiBase string
	repo    string
	token   string
	baseURL string
	htmlURL string
	paths   map[domain.FeedKind]string
	client  *http.Client
}

var _ ports.FeedSource = (*Source)(nil)

// Options carries everything needed to locate and decode the feed files.
type Options struct {
	Repo        string
	Token       string
	BaseURL     string
	HTMLBaseURL string
	Paths       map[domain.FeedKind]string
}

// NewSource wires an HTTP client; a nil client gets a sane default.
func NewSource(opts Options, client *http.Client) *Source {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Source{
		apiBase: defaultAPIBase,
		repo:    opts.Repo,
		token:   opts.Token,
		baseURL: opts.BaseURL,
		htmlURL: opts.HTMLBaseURL,
		paths:   opts.Paths,
		client:  client,
	}
}

// Fetch downloads and decodes the feed file configured for the kind.
func (s *Source) Fetch(ctx context.Context, kind domain.FeedKind) ([]domain.Record, error) {
	path, ok := s.paths[kind]
	if !ok {
		return nil, fmt.Errorf("no feed path configured for %s", kind)
	}

	raw, err := s.fetchRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.decode(kind, raw)
}

func (s *Source) fetchRaw(ctx context.Context, path string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/contents/%s", s.apiBase, s.repo, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.raw+json")
	req.Header.Set("User-Agent", "feedherald/1.0")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github returned %s for %s", resp.Status, path)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed file: %w", err)
	}
	return raw, nil
}

func (s *Source) decode(kind domain.FeedKind, raw []byte) ([]domain.Record, error) {
	switch kind {
	case domain.KindNews:
		news, err := domain.DecodeNewsFeed(raw, s.baseURL, s.htmlURL)
		if err != nil {
			return nil, err
		}
		records := make([]domain.Record, len(news))
		for i, rec := range news {
			records[i] = rec
		}
		return records, nil
	case domain.KindEvent:
		events, err := domain.DecodeEventFeed(raw)
		if err != nil {
			return nil, err
		}
		records := make([]domain.Record, len(events))
		for i, rec := range events {
			records[i] = rec
		}
		return records, nil
	case domain.KindGacha:
		gachas, err := domain.DecodeGachaFeed(raw)
		if err != nil {
			return nil, err
		}
		records := make([]domain.Record, len(gachas))
		for i, rec := range gachas {
			records[i] = rec
		}
		return records, nil
	default:
		return nil, fmt.Errorf("unknown feed kind %s", kind)
	}
}
