package parser

import (
	"strings"
	"testing"
)

func TestParse_FrontmatterTagsAndStatus(t *testing.T) {
	input := []byte("---\ntitle: Trip\nstatus: onHold\ntags:\n  - travel\n  - 2025\n---\n# Packing\nBring #boots.\n")
	r := Parse(input)
	if r.Title != "Trip" {
		t.Errorf("title = %q, want Trip", r.Title)
	}
	if r.Status != "onHold" {
		t.Errorf("status = %q, want onHold", r.Status)
	}
	// Non-string YAML items are skipped.
	if len(r.Tags) != 2 || r.Tags[0] != "travel" || r.Tags[1] != "boots" {
		t.Errorf("tags = %v, want [travel boots]", r.Tags)
	}
	if r.Body != "# Packing\nBring #boots.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r := Parse([]byte("# Hi"))
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Hi" {
		t.Errorf("title = %q, want Hi", r.Title)
	}
	if len(r.Tags) != 0 {
		t.Errorf("a heading is not a tag: %v", r.Tags)
	}
}

func TestParse_InvalidYAMLFallsBackToBody(t *testing.T) {
	input := "---\n: bad: yaml: {{{\n---\nBody\n"
	r := Parse([]byte(input))
	if r.Frontmatter != nil {
		t.Error("expected nil frontmatter on invalid YAML")
	}
	if r.Body != input {
		t.Errorf("body = %q", r.Body)
	}
}

func TestExtractTags_CommaSeparatedString(t *testing.T) {
	tags := extractTags("", map[string]any{"tags": "a, b,a"})
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("tags = %v, want [a b]", tags)
	}
}

func TestRender_RoundTrip(t *testing.T) {
	meta := map[string]any{
		"title":  "Roadmap",
		"tags":   []string{"work", "q3"},
		"status": "active",
	}
	out, err := Render(meta, "Body text")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(string(out), "---\n") || !strings.HasSuffix(string(out), "Body text\n") {
		t.Errorf("unexpected rendering: %q", out)
	}

	r := Parse(out)
	if r.Title != "Roadmap" || r.Status != "active" {
		t.Errorf("title/status = %q/%q", r.Title, r.Status)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "work" {
		t.Errorf("tags = %v", r.Tags)
	}
	if r.Body != "Body text\n" {
		t.Errorf("body = %q", r.Body)
	}
}
