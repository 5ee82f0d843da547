package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/timeline"
)

var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func defaultCards(t *testing.T) []insight.Card {
	t.Helper()
	repo := insight.Default()
	cards, err := insight.FetchAll(context.Background(), repo, repo.Topics())
	if err != nil {
		t.Fatalf("failed to fetch cards: %v", err)
	}
	return cards
}

func sampleTimeline() []timeline.Entry {
	return []timeline.Entry{
		{Name: "Master Agent", Status: timeline.StatusCompleted, Message: "Query decomposed into 6 research tasks", Timestamp: "00:00:01"},
		{Name: "Patent Landscape Agent", Status: timeline.StatusError, Message: "Patent office API timed out", Timestamp: "00:00:04"},
	}
}

func TestBuild(t *testing.T) {
	cards := defaultCards(t)
	r := Build("7", "  ", cards, sampleTimeline(), testNow)

	if r.Query != DefaultQuery {
		t.Errorf("empty query should fall back to default, got %q", r.Query)
	}
	if r.Heading() != "INTELLIGENCE REPORT #7" {
		t.Errorf("Heading = %q", r.Heading())
	}
	if r.GeneratedDate() != "March 10, 2025" {
		t.Errorf("GeneratedDate = %q", r.GeneratedDate())
	}
	if len(r.Sections) != len(cards) {
		t.Fatalf("expected %d sections, got %d", len(cards), len(r.Sections))
	}
	if r.Sections[1].Title != "Patent Landscape & IP Strategy" {
		t.Errorf("patent section title = %q", r.Sections[1].Title)
	}
	if len(r.Sections[0].Metrics) != 2 {
		t.Errorf("market section should carry headline metrics")
	}
	if len(r.Strategies) != 3 {
		t.Errorf("expected 3 strategies, got %d", len(r.Strategies))
	}
	if len(r.Timeline) != 2 {
		t.Errorf("expected timeline copy, got %d entries", len(r.Timeline))
	}

	r2 := Build("8", "custom query", nil, nil, testNow)
	if r2.Query != "custom query" || len(r2.Sections) != 0 {
		t.Errorf("unexpected report: %+v", r2)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPDF, false},
		{"PDF", FormatPDF, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{"docx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("3", FormatPDF); got != "Intelligence_Report_3.pdf" {
		t.Errorf("FileName = %q", got)
	}
	if got := FileName("3", FormatMarkdown); got != "Intelligence_Report_3.md" {
		t.Errorf("FileName = %q", got)
	}
}

func TestPDFExporter(t *testing.T) {
	r := Build("1", "", defaultCards(t), sampleTimeline(), testNow)

	var buf bytes.Buffer
	if err := (PDFExporter{}).Export(context.Background(), r, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestPDFExporter_NonASCIIText(t *testing.T) {
	card := insight.Card{
		Topic: insight.Topic{Key: "market", Title: "Market Insights — IQVIA"},
		Payload: insight.Payload{
			Summary:  "Café-style résumé of the market ≥ 2 segments",
			Insights: []string{"Montelukast — generic entry expected", "Budesonide é inhaler uptake"},
			Table: &insight.Table{
				Headers: []string{"Molecule", "Note"},
				Rows:    [][]string{{"Montelukast", "naïve — patients"}},
			},
		},
	}
	queries := []string{
		"Montelukast in COPD — India",
		"résumé of GLP-1 ≥ 2 trials",
		"Analyse 日本",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			r := Build("1", q, []insight.Card{card}, sampleTimeline(), testNow)

			var buf bytes.Buffer
			if err := (PDFExporter{}).Export(context.Background(), r, &buf); err != nil {
				t.Fatalf("Export: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
				t.Errorf("output is not a PDF")
			}
		})
	}
}

func TestPDFWriter_SplitMeasuresTranslatedBytes(t *testing.T) {
	pdf, err := renderPDF(context.Background(), Build("1", "", nil, nil, testNow))
	if err != nil {
		t.Fatalf("renderPDF: %v", err)
	}
	pdf.SetFont("Helvetica", "", pdfBodySize)
	pw := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), width: 60}

	lines := pw.split(strings.Repeat("résumé — ", 20), pw.width)
	if len(lines) < 2 {
		t.Fatalf("expected wrapped lines, got %d", len(lines))
	}
	// cp1252: é is 0xE9, the em dash 0x97.
	joined := strings.Join(lines, " ")
	if !strings.Contains(joined, "r\xe9sum\xe9") || !strings.Contains(joined, "\x97") {
		t.Errorf("translated bytes lost in split: %q", joined)
	}
}

func TestPDFExporter_Paginates(t *testing.T) {
	long := insight.Card{
		Topic:   insight.Topic{Key: "long", Title: "Long Section"},
		Payload: insight.Payload{Summary: "Overflow test."},
	}
	for i := 0; i < 200; i++ {
		long.Payload.Insights = append(long.Payload.Insights, strings.Repeat("insight text ", 8))
	}
	r := Build("1", "", []insight.Card{long}, nil, testNow)

	pdf, err := renderPDF(context.Background(), r)
	if err != nil {
		t.Fatalf("renderPDF: %v", err)
	}
	if pdf.PageCount() < 3 {
		t.Errorf("expected several pages, got %d", pdf.PageCount())
	}

	short, err := renderPDF(context.Background(), Build("2", "", nil, nil, testNow))
	if err != nil {
		t.Fatalf("renderPDF: %v", err)
	}
	if short.PageCount() != 1 {
		t.Errorf("short report should fit one page, got %d", short.PageCount())
	}
}

func TestExporters_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := Build("1", "", nil, nil, testNow)

	for _, f := range []Format{FormatPDF, FormatMarkdown, FormatJSON} {
		exp, err := ExporterFor(f)
		if err != nil {
			t.Fatalf("ExporterFor(%s): %v", f, err)
		}
		if err := exp.Export(ctx, r, &bytes.Buffer{}); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", f, err)
		}
	}
}

func TestMarkdownExporter(t *testing.T) {
	r := Build("4", "query | with pipe", defaultCards(t), sampleTimeline(), testNow)

	var buf bytes.Buffer
	if err := (MarkdownExporter{}).Export(context.Background(), r, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# " + DefaultTitle,
		"INTELLIGENCE REPORT #4",
		"## Executive Summary",
		"KEY RECOMMENDATION",
		"## Market Intelligence",
		"**$2.4B** Current Market Size",
		"## Strategic Recommendations",
		"### 1. Product Development Strategy",
		"| 00:00:04 | Patent Landscape Agent | error | Patent office API timed out |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestJSONExporter(t *testing.T) {
	r := Build("5", "", nil, sampleTimeline(), testNow)

	var buf bytes.Buffer
	if err := (JSONExporter{}).Export(context.Background(), r, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.ID != "5" || len(decoded.Timeline) != 2 {
		t.Errorf("unexpected decoded report: %+v", decoded)
	}
}

type failingExporter struct{}

func (failingExporter) Export(ctx context.Context, r *Report, w io.Writer) error {
	w.Write([]byte("partial"))
	return errors.New("renderer exploded")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	r := Build("9", "", nil, nil, testNow)
	path := filepath.Join(dir, FileName(r.ID, FormatMarkdown))

	if err := WriteFile(context.Background(), MarkdownExporter{}, r, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "# "+DefaultTitle) {
		t.Errorf("unexpected content: %q", string(data)[:40])
	}
}

func TestWriteFile_FailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	r := Build("9", "", nil, nil, testNow)
	path := filepath.Join(dir, "out.pdf")

	err := WriteFile(context.Background(), failingExporter{}, r, path)
	if err == nil || !strings.Contains(err.Error(), "renderer exploded") {
		t.Fatalf("expected export error, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty dir after failure, found %d entries", len(entries))
	}

	if err := WriteFile(context.Background(), MarkdownExporter{}, r, filepath.Join(dir, "missing", "out.md")); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
