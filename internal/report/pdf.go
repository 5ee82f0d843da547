package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/go-pdf/fpdf"
)

// PDF layout in millimetres on A4 portrait.
const (
	pdfMargin     = 15.0
	pdfFooterZone = 15.0
	pdfLine       = 5.5
	pdfBodySize   = 10.0
)

// PDFExporter renders a report as an A4 PDF. Content is laid out against an
// explicit per-page height limit and every page carries a "Page n/m" footer.
type PDFExporter struct{}

func (PDFExporter) Export(ctx context.Context, r *Report, w io.Writer) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	// fpdf panics on some inputs instead of returning an error.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("failed to render PDF: %v", p)
		}
	}()
	pdf, err := renderPDF(ctx, r)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

type pdfWriter struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	width float64
	limit float64
}

func renderPDF(ctx context.Context, r *Report) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfFooterZone)
	pdf.AliasNbPages("")
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("pharmintel", true)

	pageW, pageH := pdf.GetPageSize()
	pw := &pdfWriter{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		width: pageW - 2*pdfMargin,
		limit: pageH - pdfFooterZone - pdfMargin,
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfFooterZone)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 113, 108)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pw.header(r)

	pw.heading("Executive Summary")
	for _, p := range r.Summary {
		pw.paragraph(p)
	}
	pw.callout("KEY RECOMMENDATION", r.Recommendation)

	for _, s := range r.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pw.section(s)
	}

	pw.heading("Strategic Recommendations")
	for i, s := range r.Strategies {
		pw.subheading(fmt.Sprintf("%d. %s", i+1, s.Title))
		pw.paragraph(s.Body)
	}

	if len(r.Timeline) > 0 {
		pw.heading("Agent Activity")
		for _, e := range r.Timeline {
			line := fmt.Sprintf("[%s] %s (%s)", orDash(e.Timestamp), e.Name, e.Status)
			if e.Message != "" {
				line += ": " + e.Message
			}
			pw.paragraph(line)
		}
	}

	pw.space(pdfLine)
	for _, f := range r.Footer {
		pw.text(f, "I", 8, "C")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return pdf, nil
}

// split wraps s to width w. The core fonts measure cp1252 bytes, so the text
// is translated first and split as bytes, never as runes.
func (pw *pdfWriter) split(s string, w float64) []string {
	raw := pw.pdf.SplitLines([]byte(pw.tr(s)), w)
	lines := make([]string, len(raw))
	for i, b := range raw {
		lines[i] = string(b)
	}
	return lines
}

// ensure starts a new page when h millimetres no longer fit on this one.
func (pw *pdfWriter) ensure(h float64) {
	if pw.pdf.GetY()+h > pw.limit {
		pw.pdf.AddPage()
	}
}

func (pw *pdfWriter) space(h float64) {
	pw.ensure(h)
	pw.pdf.Ln(h)
}

func (pw *pdfWriter) header(r *Report) {
	pdf := pw.pdf
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(88, 28, 135)
	pdf.CellFormat(pw.width/2, pdfLine, pw.tr(r.Heading()), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 113, 108)
	pdf.CellFormat(pw.width/2, pdfLine, pw.tr("Generated "+r.GeneratedDate()), "", 1, "R", false, 0, "")

	pw.text(r.Title, "B", 18, "L")
	pw.text(r.Molecule, "", 12, "L")
	pw.space(2)
	pw.text("Original Query:", "I", 9, "L")
	pw.text(r.Query, "", pdfBodySize, "L")
	pw.space(pdfLine)
}

func (pw *pdfWriter) heading(s string) {
	pw.space(2)
	pw.ensure(3 * pdfLine)
	pw.text(s, "B", 14, "L")
	y := pw.pdf.GetY()
	pw.pdf.SetDrawColor(231, 229, 228)
	pw.pdf.Line(pdfMargin, y, pdfMargin+pw.width, y)
	pw.pdf.Ln(2)
}

func (pw *pdfWriter) subheading(s string) {
	pw.ensure(2 * pdfLine)
	pw.text(s, "B", 11, "L")
}

func (pw *pdfWriter) paragraph(s string) {
	pw.text(s, "", pdfBodySize, "L")
	pw.pdf.Ln(1)
}

// text wraps s to the content width and writes it line by line, breaking
// pages whenever the page is full.
func (pw *pdfWriter) text(s, style string, size float64, align string) {
	pdf := pw.pdf
	pdf.SetFont("Helvetica", style, size)
	pdf.SetTextColor(41, 37, 36)
	h := size * 0.5
	if h < pdfLine {
		h = pdfLine
	}
	for _, line := range pw.split(s, pw.width) {
		pw.ensure(h)
		pdf.CellFormat(pw.width, h, line, "", 1, align, false, 0, "")
	}
}

func (pw *pdfWriter) callout(label, body string) {
	pdf := pw.pdf
	pdf.SetFont("Helvetica", "", 9)
	lines := pw.split(body, pw.width-6)
	pw.ensure(float64(len(lines)+1)*pdfLine + 4)

	pdf.SetFillColor(255, 251, 235)
	pdf.SetTextColor(120, 53, 15)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(pw.width, pdfLine, "  "+label, "L", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range lines {
		pdf.CellFormat(pw.width, pdfLine, "  "+line, "L", 1, "L", true, 0, "")
	}
	pdf.Ln(2)
}

func (pw *pdfWriter) section(s Section) {
	pw.heading(s.Title)
	if s.Summary != "" {
		pw.paragraph(s.Summary)
	}

	if len(s.Metrics) > 0 {
		pw.ensure(2*pdfLine + 2)
		colW := pw.width / float64(len(s.Metrics))
		pdf := pw.pdf
		pdf.SetFillColor(239, 246, 255)
		pdf.SetTextColor(30, 58, 138)
		pdf.SetFont("Helvetica", "B", 14)
		for _, m := range s.Metrics {
			pdf.CellFormat(colW, pdfLine+2, pw.tr(m.Value), "", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
		for _, m := range s.Metrics {
			pdf.CellFormat(colW, pdfLine, pw.tr(m.Label), "", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.Ln(2)
	}

	if s.Table != nil {
		pw.table(s.Table)
	}

	for _, in := range s.Insights {
		pw.text("- "+in, "", pdfBodySize, "L")
	}

	if len(s.References) > 0 {
		pw.space(1)
		for _, ref := range s.References {
			label := ref.Title
			if ref.URL != "" {
				label += " <" + ref.URL + ">"
			}
			pw.text(label, "I", 8, "L")
		}
	}
}

func (pw *pdfWriter) table(t *insight.Table) {
	if len(t.Headers) == 0 {
		return
	}
	pdf := pw.pdf
	colW := pw.width / float64(len(t.Headers))

	row := func(cells []string, style string, fill bool) {
		pdf.SetFont("Helvetica", style, 8)
		// Rows grow to fit the tallest wrapped cell.
		wrapped := make([][]string, len(t.Headers))
		lines := 1
		for i := range t.Headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			wrapped[i] = pw.split(cell, colW-2)
			if len(wrapped[i]) > lines {
				lines = len(wrapped[i])
			}
		}
		h := float64(lines) * 4.5
		pw.ensure(h)

		x, y := pdf.GetX(), pdf.GetY()
		if fill {
			pdf.Rect(x, y, pw.width, h, "F")
		}
		for i := range t.Headers {
			pdf.SetXY(x+float64(i)*colW, y)
			pdf.MultiCell(colW, 4.5, strings.Join(wrapped[i], "\n"), "", "L", false)
		}
		pdf.Line(x, y+h, x+pw.width, y+h)
		pdf.SetXY(x, y+h)
	}

	pdf.SetFillColor(255, 251, 235)
	pdf.SetDrawColor(231, 229, 228)
	pdf.SetTextColor(28, 25, 23)
	row(t.Headers, "B", true)
	pdf.SetTextColor(68, 64, 60)
	for _, r := range t.Rows {
		row(r, "", false)
	}
	pdf.Ln(2)
}

func orDash(s string) string {
	if s == "" {
		return "--:--:--"
	}
	return s
}
