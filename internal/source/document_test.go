package source

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chatbot-rag/internal/chunker"
	"chatbot-rag/internal/models"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDocumentTextFile(t *testing.T) {
	path := writeTestFile(t, "faq.txt",
		"Our store opens at nine. Deliveries arrive before noon. Support answers within a day.")
	d := NewDocument(path, chunker.New(1000, 10))

	chunks, err := d.Chunks(context.Background())
	if err != nil {
		t.Fatalf("chunks failed: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks from text file")
	}
	c := chunks[0]
	if c.SourceType != models.SourceDocument {
		t.Errorf("expected document source type, got %q", c.SourceType)
	}
	if c.SourceName != "faq.txt" {
		t.Errorf("expected source name faq.txt, got %q", c.SourceName)
	}
	if c.Metadata["file_type"] != "txt" {
		t.Errorf("expected file_type txt, got %q", c.Metadata["file_type"])
	}
	if !strings.Contains(c.Text, "opens at nine") {
		t.Errorf("expected file content in chunk, got %q", c.Text)
	}
}

func TestDocumentMarkdownStripsFormatting(t *testing.T) {
	path := writeTestFile(t, "guide.md",
		"# Setup\n\nInstall the **widget** first. Then run the [installer](https://example.com).\n")
	d := NewDocument(path, chunker.New(1000, 10))

	chunks, err := d.Chunks(context.Background())
	if err != nil {
		t.Fatalf("chunks failed: %v", err)
	}
	var all strings.Builder
	for _, c := range chunks {
		all.WriteString(c.Text)
		all.WriteString(" ")
	}
	text := all.String()
	if !strings.Contains(text, "Install the widget first.") {
		t.Errorf("expected plain text, got %q", text)
	}
	for _, markup := range []string{"#", "**", "](", "<strong>"} {
		if strings.Contains(text, markup) {
			t.Errorf("expected markup %q to be stripped, got %q", markup, text)
		}
	}
}

func writeTestPPTX(t *testing.T, slides ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for i, body := range slides {
		name := "ppt/slides/slide" + string(rune('1'+i)) + ".xml"
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		xml := `<p:sld><p:cSld><p:txBody><a:p><a:t>` + body + `</a:t></a:p></p:txBody></p:cSld></p:sld>`
		if _, err := entry.Write([]byte(xml)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := w.Create("ppt/slides/_rels/slide1.xml.rels"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDocumentPPTX(t *testing.T) {
	path := writeTestPPTX(t,
		"Welcome to the quarterly review.",
		"Revenue grew in every region.")
	d := NewDocument(path, chunker.New(1000, 10))

	chunks, err := d.Chunks(context.Background())
	if err != nil {
		t.Fatalf("chunks failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, want := range []string{"quarterly review", "every region"} {
		if !strings.Contains(chunks[i].Text, want) {
			t.Errorf("chunk %d missing %q: %q", i, want, chunks[i].Text)
		}
		if chunks[i].Metadata["slide"] == "" {
			t.Errorf("chunk %d missing slide metadata", i)
		}
		if strings.Contains(chunks[i].Text, "<") {
			t.Errorf("chunk %d contains markup: %q", i, chunks[i].Text)
		}
	}
	if chunks[0].Metadata["file_type"] != "pptx" {
		t.Errorf("expected file_type pptx, got %q", chunks[0].Metadata["file_type"])
	}
}

func TestDocumentUnsupportedFormat(t *testing.T) {
	path := writeTestFile(t, "data.csv", "a,b,c")
	d := NewDocument(path, chunker.New(1000, 10))

	_, err := d.Chunks(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unsupported file format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestDocumentMissingFile(t *testing.T) {
	d := NewDocument(filepath.Join(t.TempDir(), "absent.txt"), chunker.New(1000, 10))
	if _, err := d.Chunks(context.Background()); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestManualTextChunks(t *testing.T) {
	m := NewManualText("", "We accept returns within thirty days of purchase.", chunker.New(1000, 10))

	chunks, err := m.Chunks(context.Background())
	if err != nil {
		t.Fatalf("chunks failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.SourceType != models.SourceManualText {
		t.Errorf("expected manual text source type, got %q", c.SourceType)
	}
	if c.Metadata["source"] != "manual_input" {
		t.Errorf("expected manual_input metadata, got %q", c.Metadata["source"])
	}
	if m.Name() != "manual text" {
		t.Errorf("expected default label, got %q", m.Name())
	}
}
