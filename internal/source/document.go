package source

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"

	"chatbot-rag/internal/chunker"
	"chatbot-rag/internal/htmltext"
	"chatbot-rag/internal/models"
)

// Document extracts text from an uploaded file and chunks it per logical
// unit: page for PDF, paragraph for DOCX, slide for PPTX, sheet for
// spreadsheets, whole file for TXT/Markdown. PDF extraction tries a primary library and falls back to
// a secondary one before giving up on the file.
type Document struct {
	path     string
	splitter *chunker.Splitter
}

func NewDocument(path string, splitter *chunker.Splitter) *Document {
	return &Document{path: path, splitter: splitter}
}

func (d *Document) Name() string { return filepath.Base(d.path) }

func (d *Document) Chunks(ctx context.Context) ([]models.Chunk, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(d.path)), ".")
	switch ext {
	case "pdf":
		return d.pdfChunks(ctx)
	case "docx":
		return d.docxChunks(ext)
	case "pptx":
		return d.pptxChunks(ext)
	case "xlsx":
		return d.xlsxChunks(ext)
	case "ods":
		return d.odsChunks(ext)
	case "txt":
		return d.textChunks(ext)
	case "md", "markdown":
		return d.markdownChunks(ext)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func (d *Document) pdfChunks(ctx context.Context) ([]models.Chunk, error) {
	pages, err := extractPDFPages(d.path)
	if err != nil {
		log.Warn().Err(err).Str("file", d.Name()).Msg("primary pdf extraction failed, trying fallback")
		pages, err = extractPDFPagesFallback(ctx, d.path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract pdf %s: %w", d.Name(), err)
		}
	}

	var chunks []models.Chunk
	for i, pageText := range pages {
		for _, part := range d.splitter.Chunk(pageText) {
			chunks = append(chunks, d.chunk(part, "pdf", map[string]string{
				"page": strconv.Itoa(i + 1),
			}))
		}
	}
	return chunks, nil
}

// extractPDFPages reads page-wise plain text with ledongthuc/pdf.
func extractPDFPages(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		pages = append(pages, pageText)
	}
	return pages, nil
}

// extractPDFPagesFallback retries with the langchaingo loader, which uses a
// different pdf implementation underneath. Malformed files that defeat one
// library often parse with the other.
func extractPDFPagesFallback(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	docs, err := documentloaders.NewPDF(f, stat.Size()).Load(ctx)
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, doc.PageContent)
	}
	return pages, nil
}

func (d *Document) docxChunks(fileType string) ([]models.Chunk, error) {
	r, err := docx.ReadDocxFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read docx %s: %w", d.Name(), err)
	}
	defer r.Close()

	// GetContent returns the document XML; run it through the tag stripper
	// to keep only the paragraph text.
	content := r.Editable().GetContent()
	text, err := htmltext.Extract(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx %s: %w", d.Name(), err)
	}

	var chunks []models.Chunk
	for _, part := range d.splitter.Chunk(text) {
		chunks = append(chunks, d.chunk(part, fileType, nil))
	}
	return chunks, nil
}

// pptxChunks walks the pptx archive and extracts text slide by slide. Slide
// content lives in ppt/slides/slideN.xml; the XML goes through the same tag
// stripper as docx.
func (d *Document) pptxChunks(fileType string) ([]models.Chunk, error) {
	f, err := zip.OpenReader(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pptx %s: %w", d.Name(), err)
	}
	defer f.Close()

	var chunks []models.Chunk
	slideNum := 0
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		slideNum++
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		text, err := htmltext.Extract(bytes.NewReader(data))
		if err != nil {
			continue
		}
		for _, part := range d.splitter.Chunk(text) {
			chunks = append(chunks, d.chunk(part, fileType, map[string]string{
				"slide": strconv.Itoa(slideNum),
			}))
		}
	}
	return chunks, nil
}

func (d *Document) xlsxChunks(fileType string) ([]models.Chunk, error) {
	f, err := xlsx.OpenFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx %s: %w", d.Name(), err)
	}

	var chunks []models.Chunk
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		chunks = append(chunks, d.sheetChunks(text.String(), fileType, sheet.Name, sheetNum+1)...)
	}
	return chunks, nil
}

func (d *Document) odsChunks(fileType string) ([]models.Chunk, error) {
	f, err := excelize.OpenFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ods %s: %w", d.Name(), err)
	}
	defer f.Close()

	var chunks []models.Chunk
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		chunks = append(chunks, d.sheetChunks(text.String(), fileType, sheetName, sheetNum+1)...)
	}
	return chunks, nil
}

func (d *Document) sheetChunks(text, fileType, sheetName string, sheetNum int) []models.Chunk {
	var chunks []models.Chunk
	for _, part := range d.splitter.Chunk(text) {
		chunks = append(chunks, d.chunk(part, fileType, map[string]string{
			"sheet":        sheetName,
			"sheet_number": strconv.Itoa(sheetNum),
		}))
	}
	return chunks
}

func (d *Document) textChunks(fileType string) ([]models.Chunk, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, err
	}
	var chunks []models.Chunk
	for _, part := range d.splitter.Chunk(string(data)) {
		chunks = append(chunks, d.chunk(part, fileType, nil))
	}
	return chunks, nil
}

func (d *Document) markdownChunks(fileType string) ([]models.Chunk, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, err
	}

	// Render the markdown and strip the resulting HTML so headings, lists
	// and links come out as plain sentences.
	var buf bytes.Buffer
	if err := goldmark.Convert(data, &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown %s: %w", d.Name(), err)
	}
	text, err := htmltext.Extract(&buf)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, part := range d.splitter.Chunk(text) {
		chunks = append(chunks, d.chunk(part, fileType, nil))
	}
	return chunks, nil
}

func (d *Document) chunk(text, fileType string, extra map[string]string) models.Chunk {
	md := map[string]string{"file_type": fileType, "original_filename": d.Name()}
	for k, v := range extra {
		md[k] = v
	}
	return models.Chunk{
		Text:       text,
		SourceType: models.SourceDocument,
		SourceName: d.Name(),
		Metadata:   md,
	}
}
