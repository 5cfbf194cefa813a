package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/rentwatch/internal/extract"
)

func testInput() Input {
	return Input{
		Date: time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
		Groups: []Group{
			{
				Source: "yad2",
				Listings: []extract.Listing{
					{
						URL:   "https://testsite.com/item/1",
						Text:  "דירה 3 חדרים 4500 ₪",
						Image: "https://cdn.testsite.com/photos/1.jpg",
					},
					{
						URL:  "https://testsite.com/item/2",
						Text: "דירה 2 חדרים 3900 ₪",
					},
				},
			},
			{Source: "homeless", Listings: nil},
		},
		Warnings: []string{"fetch homeless: HTTP 503"},
	}
}

func TestTotalNew(t *testing.T) {
	if got := testInput().TotalNew(); got != 2 {
		t.Fatalf("total = %d, want 2", got)
	}
	if got := (Input{}).TotalNew(); got != 0 {
		t.Fatalf("empty total = %d", got)
	}
}

func TestSnippet(t *testing.T) {
	short := strings.Repeat("a", 310)
	if got := snippet(short); got != short {
		t.Fatal("text within the slack must be kept whole")
	}

	long := strings.Repeat("b", 500)
	got := snippet(long)
	if runeLen(got) != snippetMaxRunes+1 {
		t.Fatalf("snippet is %d runes, want %d plus ellipsis", runeLen(got), snippetMaxRunes)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("snippet %q lacks ellipsis", got[len(got)-12:])
	}

	// Truncation must not split multi-byte characters.
	hebrew := strings.Repeat("א", 500)
	if got := snippet(hebrew); !strings.HasSuffix(got, "…") || runeLen(got) != snippetMaxRunes+1 {
		t.Fatalf("hebrew snippet is %d runes", runeLen(got))
	}
}

func TestHTMLFormat(t *testing.T) {
	var out strings.Builder
	if err := NewHTML("🏠 דירות חדשות").Format(&out, testInput()); err != nil {
		t.Fatalf("format: %v", err)
	}
	html := out.String()

	for _, want := range []string{
		`dir="rtl"`,
		"🏠 דירות חדשות",
		"29.08.2026 10:30",
		"yad2 (2 מודעות)",
		"https://testsite.com/item/1",
		"https://cdn.testsite.com/photos/1.jpg",
		"📷 אין תמונה",
		"אזהרות:",
		"fetch homeless: HTTP 503",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html output missing %q", want)
		}
	}
	// The empty source section is omitted entirely.
	if strings.Contains(html, "homeless (") {
		t.Error("html output must not include sources with no listings")
	}
}

func TestHTMLFormatEmpty(t *testing.T) {
	var out strings.Builder
	input := Input{Date: time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)}
	if err := NewHTML("digest").Format(&out, input); err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.Contains(out.String(), "לא נמצאו מודעות חדשות") {
		t.Fatal("empty digest must render the placeholder message")
	}
}

func TestHTMLFormatEscapes(t *testing.T) {
	input := Input{
		Date: time.Now(),
		Groups: []Group{{
			Source: "x",
			Listings: []extract.Listing{{
				URL:  "https://testsite.com/item/1",
				Text: `<script>alert("x")</script>`,
			}},
		}},
	}

	var out strings.Builder
	if err := NewHTML("digest").Format(&out, input); err != nil {
		t.Fatalf("format: %v", err)
	}
	if strings.Contains(out.String(), "<script>alert") {
		t.Fatal("listing text must be HTML-escaped")
	}
}

func TestTerminalFormat(t *testing.T) {
	var out strings.Builder
	if err := NewTerminal(false).Format(&out, testInput()); err != nil {
		t.Fatalf("format: %v", err)
	}
	text := out.String()

	for _, want := range []string{
		"2 new listings",
		"--- yad2 (2) ---",
		"https://testsite.com/item/1",
		"image: https://cdn.testsite.com/photos/1.jpg",
		"--- Warnings (1) ---",
		"fetch homeless: HTTP 503",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("terminal output missing %q", want)
		}
	}
	if strings.Contains(text, "\033[") {
		t.Error("color disabled but output contains ANSI escapes")
	}
}

func TestTerminalFormatColor(t *testing.T) {
	var out strings.Builder
	if err := NewTerminal(true).Format(&out, testInput()); err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.Contains(out.String(), "\033[1m") {
		t.Fatal("color enabled but output has no ANSI escapes")
	}
}

func TestTerminalFormatEmpty(t *testing.T) {
	var out strings.Builder
	if err := NewTerminal(false).Format(&out, Input{Date: time.Now()}); err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.Contains(out.String(), "No new listings found.") {
		t.Fatal("empty digest must say so")
	}
}

func TestMarkdownFormat(t *testing.T) {
	var out strings.Builder
	if err := NewMarkdown().Format(&out, testInput()); err != nil {
		t.Fatalf("format: %v", err)
	}
	md := out.String()

	for _, want := range []string{
		"# rentwatch digest",
		"## yad2 (2)",
		"- [דירה 3 חדרים 4500 ₪](https://testsite.com/item/1)",
		"![listing](https://cdn.testsite.com/photos/1.jpg)",
		"## Warnings (1)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}
