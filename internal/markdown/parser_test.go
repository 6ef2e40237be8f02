package markdown

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-press/pkg/interfaces"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Sample Document" {
		t.Fatalf("FrontMatter Title mismatch, got %q", fm.Title)
	}
	if !fm.HasDate || !strings.HasPrefix(fm.Date, "2024-01-05") {
		t.Fatalf("FrontMatter Date mismatch, got %q (%v)", fm.Date, fm.HasDate)
	}
	if fm.Raw["custom_flag"] != true {
		t.Fatalf("FrontMatter Raw flag missing: %#v", fm.Raw)
	}
	if len(body) == 0 || !strings.Contains(string(body), "# Heading") {
		t.Fatalf("Markdown body not returned correctly: %q", string(body))
	}
	if strings.Contains(string(body), "custom_flag") {
		t.Fatalf("front matter leaked into body: %q", string(body))
	}
}

func TestParseFrontMatterWithoutBlock(t *testing.T) {
	source := []byte("# Title\n\nbody\n")

	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "" || fm.HasDate {
		t.Fatalf("expected empty front matter, got %+v", fm)
	}
	if string(body) != string(source) {
		t.Fatalf("expected body unchanged, got %q", string(body))
	}
}

func TestParseFrontMatterInvalidYAML(t *testing.T) {
	if _, _, err := ParseFrontMatter([]byte("---\ntitle: [unterminated\n---\nbody")); err == nil {
		t.Fatal("expected YAML error")
	}
}

func TestBuildDocument(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")
	modified := time.Now().UTC()

	doc, err := BuildDocument("basic.md", data, modified)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if doc.FilePath != "basic.md" {
		t.Fatalf("expected FilePath to be set, got %q", doc.FilePath)
	}
	if !doc.LastModified.Equal(modified) {
		t.Fatalf("expected LastModified to equal the provided timestamp")
	}
	if len(doc.Body) == 0 || len(doc.BodyHTML) != 0 {
		t.Fatalf("expected raw body only, got body=%d html=%d", len(doc.Body), len(doc.BodyHTML))
	}
}

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_HardWraps(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("line one\nline two"), interfaces.ParseOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}
	if !strings.Contains(string(html), "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkParser_Typographer(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{Typographer: true})

	html, err := parser.Parse([]byte(`She said "hi" --- then left...`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := string(html)
	for _, want := range []string{"“hi”", "—", "…"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestGoldmarkParser_RawHTML(t *testing.T) {
	source := []byte("<figure class=\"wide\">x</figure>\n\n<script>alert(1)</script>\n")

	unsafe, err := NewGoldmarkParser(interfaces.ParseOptions{}).Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(string(unsafe), "<figure") {
		t.Fatalf("expected raw HTML to pass through, got %q", unsafe)
	}

	safe, err := NewGoldmarkParser(interfaces.ParseOptions{SafeMode: true}).Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Contains(string(safe), "<figure") {
		t.Fatalf("expected safe mode to omit raw HTML, got %q", safe)
	}

	sanitized, err := NewGoldmarkParser(interfaces.ParseOptions{Sanitize: true}).Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Contains(string(sanitized), "<script>") {
		t.Fatalf("expected sanitizer to drop script, got %q", sanitized)
	}
}

func TestCollectExtensions(t *testing.T) {
	if got := collectExtensions(nil); len(got) != 1 {
		t.Fatalf("expected GFM default, got %d extenders", len(got))
	}
	got := collectExtensions([]string{"table", "Tables", "bogus", " footnote "})
	if len(got) != 2 {
		t.Fatalf("expected 2 extenders, got %d", len(got))
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
