package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FailedMessage is the alert shown when an export fails. The underlying
// error is logged, never displayed.
const FailedMessage = "Failed to generate report. Please try again."

// Format identifies an export format.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// ParseFormat accepts pdf, md (or markdown) and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pdf":
		return FormatPDF, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format %q (valid: pdf, md, json)", s)
	}
}

// Exporter renders a report to w.
type Exporter interface {
	Export(ctx context.Context, r *Report, w io.Writer) error
}

// ExporterFor returns the exporter for a format.
func ExporterFor(f Format) (Exporter, error) {
	switch f {
	case FormatPDF:
		return PDFExporter{}, nil
	case FormatMarkdown:
		return MarkdownExporter{}, nil
	case FormatJSON:
		return JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("no exporter for format %q", f)
	}
}

// FileName is the default export file name for a report id.
func FileName(id string, f Format) string {
	return fmt.Sprintf("Intelligence_Report_%s.%s", id, f)
}

// WriteFile exports r to path through a temp file and rename, so a failed
// export never leaves a partial file behind.
func WriteFile(ctx context.Context, exp Exporter, r *Report, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := exp.Export(ctx, r, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to export report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

type JSONExporter struct{}

func (JSONExporter) Export(ctx context.Context, r *Report, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
