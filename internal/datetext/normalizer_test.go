package datetext

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func testNormalizer(t *testing.T) (*Normalizer, *time.Location) {
	t.Helper()

	loc, err := time.LoadLocation("US/Pacific")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	n := New(loc)
	n.now = func() time.Time {
		return time.Date(2026, time.March, 1, 12, 0, 0, 0, loc)
	}
	return n, loc
}

func TestSingleInstant(t *testing.T) {
	t.Parallel()

	n, loc := testNormalizer(t)

	got := n.Normalize("Event starts Jan 5, 2026 at 10:00AM (PST)!")
	want := fmt.Sprintf("Event starts <t:%d:f>!",
		time.Date(2026, time.January, 5, 10, 0, 0, 0, loc).Unix())
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSingleInstantWithoutTime(t *testing.T) {
	t.Parallel()

	n, loc := testNormalizer(t)

	got := n.Normalize("Maintenance ends Feb 10, 2026.")
	want := fmt.Sprintf("Maintenance ends <t:%d:f>",
		time.Date(2026, time.February, 10, 0, 0, 0, 0, loc).Unix())
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestYearDefaultsToCurrent(t *testing.T) {
	t.Parallel()

	n, loc := testNormalizer(t)

	got := n.Normalize("Feb 10. 08:00 PST")
	want := fmt.Sprintf("<t:%d:f>",
		time.Date(2026, time.February, 10, 8, 0, 0, 0, loc).Unix())
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTwelveHourConversion(t *testing.T) {
	t.Parallel()

	n, _ := testNormalizer(t)

	afternoon := n.Normalize("Jan 5, 2026 at 2:30PM PST")
	military := n.Normalize("Jan 5, 2026 at 14:30 PST")
	if afternoon != military {
		t.Fatalf("2:30PM normalized to %q, 14:30 to %q", afternoon, military)
	}
}

func TestNoonStaysNoon(t *testing.T) {
	t.Parallel()

	n, loc := testNormalizer(t)

	got := n.Normalize("Jan 5, 2026 at 12:00PM PST")
	want := fmt.Sprintf("<t:%d:f>",
		time.Date(2026, time.January, 5, 12, 0, 0, 0, loc).Unix())
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInvalidFieldsLeftVerbatim(t *testing.T) {
	t.Parallel()

	n, _ := testNormalizer(t)

	inputs := []string{
		"Open until Jan 32, 2026.",
		"Open until Feb 30, 2026.",
		"Open until Xqz 5, 2026.",
		"Jan 5, 2026 at 25:00 PST",
	}
	for _, input := range inputs {
		if got := n.Normalize(input); got != input {
			t.Fatalf("normalize(%q) = %q, want verbatim", input, got)
		}
	}
}

func TestListFanOut(t *testing.T) {
	t.Parallel()

	n, loc := testNormalizer(t)

	got := n.Normalize("Jan 5: 10:00AM JST, 11:00AM JST")
	want := fmt.Sprintf("Jan 5: <t:%d:t>, <t:%d:t>",
		time.Date(2026, time.January, 5, 10, 0, 0, 0, loc).Unix(),
		time.Date(2026, time.January, 5, 11, 0, 0, 0, loc).Unix())
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if !strings.HasPrefix(got, "Jan 5: ") {
		t.Fatalf("header not preserved: %q", got)
	}
}

func TestListAppliesMeridiem(t *testing.T) {
	t.Parallel()

	n, loc := testNormalizer(t)

	got := n.Normalize("Jan 5: 01:00PM PST")
	want := fmt.Sprintf("Jan 5: <t:%d:t>",
		time.Date(2026, time.January, 5, 13, 0, 0, 0, loc).Unix())
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIdempotent(t *testing.T) {
	t.Parallel()

	n, _ := testNormalizer(t)

	inputs := []string{
		"Event starts Jan 5, 2026 at 10:00AM (PST)!",
		"Jan 5: 10:00AM JST, 11:00AM JST",
		"Maintenance ends Feb 10, 2026.",
		"No dates in here at all.",
		"Broken date Jan 32, 2026.",
	}
	for _, input := range inputs {
		once := n.Normalize(input)
		twice := n.Normalize(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestSurroundingTextUntouched(t *testing.T) {
	t.Parallel()

	n, _ := testNormalizer(t)

	got := n.Normalize("before Jan 5, 2026 at 10:00AM PST after")
	if !strings.HasPrefix(got, "before ") || !strings.HasSuffix(got, " after") {
		t.Fatalf("surrounding text modified: %q", got)
	}
}
