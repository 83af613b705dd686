package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"feedherald/internal/domain"
	"feedherald/internal/notify"
)

type fakeSource struct {
	records map[domain.FeedKind][]domain.Record
	err     error
}

func (f *fakeSource) Fetch(_ context.Context, kind domain.FeedKind) ([]domain.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[kind], nil
}

type fakeNotifier struct {
	sent    []string
	failing map[string]bool
}

func (f *fakeNotifier) Send(_ context.Context, _ domain.FeedKind, note domain.Notification) error {
	if f.failing[note.Card.Title] {
		return fmt.Errorf("transport refused %s", note.Card.Title)
	}
	f.sent = append(f.sent, note.Card.Title)
	return nil
}

type stubBuilder struct {
	kind domain.FeedKind
}

func (s stubBuilder) Kind() domain.FeedKind { return s.kind }

func (s stubBuilder) Build(_ context.Context, record domain.Record) (domain.Notification, error) {
	return domain.Notification{
		Card: domain.Card{Title: fmt.Sprintf("%d", record.EntryID())},
	}, nil
}

func newsRecord(id int, startAt int64) domain.NewsRecord {
	return domain.NewsRecord{ID: id, Title: fmt.Sprintf("entry %d", id), StartAt: startAt}
}

func testProcessor(t *testing.T, source *fakeSource, notifier *fakeNotifier, maxPerRun int) *Processor {
	t.Helper()

	registry := notify.NewRegistry()
	registry.Register(stubBuilder{kind: domain.KindNews})

	p, err := NewProcessor(Deps{
		Source:    source,
		Builders:  registry,
		Notifier:  notifier,
		Kinds:     []domain.FeedKind{domain.KindNews},
		MaxPerRun: maxPerRun,
	})
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	p.now = func() time.Time {
		return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	}
	return p
}

func TestSchedulingGate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{records: map[domain.FeedKind][]domain.Record{
		domain.KindNews: {
			newsRecord(1, now.Add(-time.Hour).UnixMilli()),
			newsRecord(2, now.Add(time.Hour).UnixMilli()),
			newsRecord(3, 0),
		},
	}}
	notifier := &fakeNotifier{}
	p := testProcessor(t, source, notifier, 10)

	ledger := domain.NewLedger()
	if err := p.Run(context.Background(), ledger); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(notifier.sent) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", notifier.sent)
	}
	if ledger.Contains(domain.KindNews, 2) {
		t.Fatalf("future entry must not be marked delivered")
	}
	if !ledger.Contains(domain.KindNews, 1) || !ledger.Contains(domain.KindNews, 3) {
		t.Fatalf("due entries missing from ledger")
	}
}

func TestDedupSkipsDelivered(t *testing.T) {
	t.Parallel()

	source := &fakeSource{records: map[domain.FeedKind][]domain.Record{
		domain.KindNews: {newsRecord(1, 0), newsRecord(2, 0)},
	}}
	notifier := &fakeNotifier{}
	p := testProcessor(t, source, notifier, 10)

	ledger := domain.NewLedger()
	ledger.Add(domain.KindNews, 1)

	if err := p.Run(context.Background(), ledger); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(notifier.sent) != 1 || notifier.sent[0] != "2" {
		t.Fatalf("expected only entry 2, got %v", notifier.sent)
	}

	// Rerunning with the updated ledger delivers nothing.
	notifier.sent = nil
	if err := p.Run(context.Background(), ledger); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("rerun re-delivered: %v", notifier.sent)
	}
}

func TestDeliveryFailureDoesNotMarkOrAbort(t *testing.T) {
	t.Parallel()

	source := &fakeSource{records: map[domain.FeedKind][]domain.Record{
		domain.KindNews: {newsRecord(1, 0), newsRecord(2, 0), newsRecord(3, 0)},
	}}
	notifier := &fakeNotifier{failing: map[string]bool{"2": true}}
	p := testProcessor(t, source, notifier, 10)

	ledger := domain.NewLedger()
	if err := p.Run(context.Background(), ledger); err != nil {
		t.Fatalf("run: %v", err)
	}

	if ledger.Contains(domain.KindNews, 2) {
		t.Fatalf("failed delivery must stay out of the ledger")
	}
	if !ledger.Contains(domain.KindNews, 1) || !ledger.Contains(domain.KindNews, 3) {
		t.Fatalf("later entries must still be processed")
	}
}

func TestPerRunCap(t *testing.T) {
	t.Parallel()

	var records []domain.Record
	for i := 1; i <= 15; i++ {
		records = append(records, newsRecord(i, 0))
	}
	source := &fakeSource{records: map[domain.FeedKind][]domain.Record{domain.KindNews: records}}
	notifier := &fakeNotifier{}
	p := testProcessor(t, source, notifier, 10)

	ledger := domain.NewLedger()
	if err := p.Run(context.Background(), ledger); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(notifier.sent) != 10 {
		t.Fatalf("expected 10 deliveries, got %d", len(notifier.sent))
	}
	// Source order preserved: first ten entries, in order.
	for i, title := range notifier.sent {
		if want := fmt.Sprintf("%d", i+1); title != want {
			t.Fatalf("delivery %d was %s, want %s", i, title, want)
		}
	}
}

func TestMissingBuilderIsStartupError(t *testing.T) {
	t.Parallel()

	registry := notify.NewRegistry()
	registry.Register(stubBuilder{kind: domain.KindNews})

	_, err := NewProcessor(Deps{
		Source:   &fakeSource{},
		Builders: registry,
		Notifier: &fakeNotifier{},
		Kinds:    []domain.FeedKind{domain.KindNews, domain.KindGacha},
	})
	if err == nil {
		t.Fatalf("expected configuration error for gacha feed without builder")
	}
}

func TestFeedFetchFailureReported(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: fmt.Errorf("upstream down")}
	p := testProcessor(t, source, &fakeNotifier{}, 10)

	if err := p.Run(context.Background(), domain.NewLedger()); err == nil {
		t.Fatalf("expected error when feed fetch fails")
	}
}
