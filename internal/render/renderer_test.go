package render

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"feedherald/internal/datetext"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()

	loc, err := time.LoadLocation("US/Pacific")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	r, err := New("https://web.example.com/", datetext.New(loc))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderExtractsFirstImage(t *testing.T) {
	t.Parallel()

	r := testRenderer(t)

	html := `<p>Hello</p>
	<img src="/images/banner.png">
	<p>More</p>
	<img src="/images/second.png">`

	body, imageURL := r.Render(html)

	if imageURL != "https://web.example.com/images/banner.png" {
		t.Fatalf("unexpected image url: %s", imageURL)
	}
	if strings.Contains(body, "<img") {
		t.Fatalf("placeholders not stripped: %q", body)
	}
	if !strings.Contains(body, "Hello") || !strings.Contains(body, "More") {
		t.Fatalf("text lost: %q", body)
	}
}

func TestRenderNoImage(t *testing.T) {
	t.Parallel()

	r := testRenderer(t)

	body, imageURL := r.Render("<p>Just text</p>")
	if imageURL != "" {
		t.Fatalf("expected no image, got %s", imageURL)
	}
	if body != "Just text" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestRenderSingleLineBreaks(t *testing.T) {
	t.Parallel()

	r := testRenderer(t)

	body, _ := r.Render("<p>one</p><p>two</p><p>three</p>")
	if strings.Contains(body, "\n\n\n") {
		t.Fatalf("blank runs not collapsed: %q", body)
	}
	for _, line := range []string{"one", "two", "three"} {
		if !strings.Contains(body, line) {
			t.Fatalf("missing line %q in %q", line, body)
		}
	}
}

func TestRenderCosmeticFixups(t *testing.T) {
	t.Parallel()

	r := testRenderer(t)

	html := "<p>■Rewards</p><hr><p>- first</p><p>• second</p>"
	body, _ := r.Render(html)

	if !strings.Contains(body, "## ■Rewards") {
		t.Fatalf("section glyph not promoted: %q", body)
	}
	if strings.Contains(body, "* * *") {
		t.Fatalf("horizontal rule survived: %q", body)
	}
	if !strings.Contains(body, "* first") {
		t.Fatalf("dash bullet not converted: %q", body)
	}
	if !strings.Contains(body, "* second") {
		t.Fatalf("dot bullet not converted: %q", body)
	}
}

func TestRenderListItems(t *testing.T) {
	t.Parallel()

	r := testRenderer(t)

	body, _ := r.Render("<ul><li>alpha</li><li>beta</li></ul>")
	if !strings.Contains(body, "* alpha") || !strings.Contains(body, "* beta") {
		t.Fatalf("list items not bulleted: %q", body)
	}
}

func TestRenderKeepsLinkDestinations(t *testing.T) {
	t.Parallel()

	r := testRenderer(t)

	body, _ := r.Render(`<p><a href="/news?id=1">Details</a></p>`)
	want := "Details <https://web.example.com/news?id=1>"
	if !strings.Contains(body, want) {
		t.Fatalf("got %q, want substring %q", body, want)
	}
}

func TestRenderNormalizesDates(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("US/Pacific")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	r := testRenderer(t)

	body, _ := r.Render("<p>Starts Jan 5, 2026 at 10:00AM (PST)!</p>")
	want := fmt.Sprintf("Starts <t:%d:f>!",
		time.Date(2026, time.January, 5, 10, 0, 0, 0, loc).Unix())
	if body != want {
		t.Fatalf("got %q, want %q", body, want)
	}
}

func TestRenderBreakTags(t *testing.T) {
	t.Parallel()

	r := testRenderer(t)

	body, _ := r.Render("<p>first<br>second</p>")
	if !strings.Contains(body, "first\nsecond") {
		t.Fatalf("br not rendered as line break: %q", body)
	}
}
