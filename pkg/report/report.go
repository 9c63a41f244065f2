// Package report lays out the technical report of a project as a PDF.
package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	DefaultGenerator = "Gerado por: FisiQIA (IA sugerida)"
	ReferencesTitle  = "Referências / Livros consultados (prioritários):"
)

var ErrEmptyDocument = errors.New("report: document has no content")

// fontFamily is DejaVu Sans Condensed, embedded so Greek letters, arrows and
// math symbols from the answers survive into the PDF.
const fontFamily = "DejaVu"

//go:embed fonts/*.ttf
var fontFiles embed.FS

var fontStyles = map[string]string{
	"":  "fonts/DejaVuSansCondensed.ttf",
	"B": "fonts/DejaVuSansCondensed-Bold.ttf",
	"I": "fonts/DejaVuSansCondensed-Oblique.ttf",
}

func registerFonts(pdf *fpdf.Fpdf) error {
	for style, name := range fontStyles {
		data, err := fontFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("report: font %s: %w", name, err)
		}
		pdf.AddUTF8FontFromBytes(fontFamily, style, data)
	}
	return pdf.Error()
}

// Document is everything that goes into one report.
type Document struct {
	Project     string
	Generator   string
	GeneratedAt time.Time
	Chapters    []Chapter
	References  []string
}

// Chapter is one section of the report.
type Chapter struct {
	Title   string
	Entries []Entry
}

// Entry is one recorded answer. Question is printed as a sub-heading when set.
type Entry struct {
	Question string
	Body     string
}

func (d Document) Title() string {
	return fmt.Sprintf("Relatório Técnico — %s", d.Project)
}

func (d Document) empty() bool {
	for _, c := range d.Chapters {
		for _, e := range c.Entries {
			if strings.TrimSpace(e.Body) != "" {
				return false
			}
		}
	}
	return true
}

// Layout in millimetres; A4 with 2 cm margins.
const (
	margin      = 20.0
	lineHeight  = 5.6
	bulletInset = 5.0
)

var accent = [3]int{0, 51, 102} // #003366

// Render writes the PDF for doc to w.
func Render(doc Document, w io.Writer) error {
	return render(doc, w, true)
}

func render(doc Document, w io.Writer, compress bool) error {
	if doc.empty() {
		return ErrEmptyDocument
	}
	if doc.Generator == "" {
		doc.Generator = DefaultGenerator
	}
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	if err := registerFonts(pdf); err != nil {
		return err
	}
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(doc.Title(), true)
	pdf.SetCreator("FisiQIA", true)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.AliasNbPages("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Página %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 8, doc.Title(), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont(fontFamily, "", 10)
	pdf.MultiCell(0, 5, doc.Generator, "", "L", false)
	pdf.MultiCell(0, 5, "Data: "+doc.GeneratedAt.Format("02/01/2006 15:04"), "", "L", false)
	pdf.Ln(6)

	for _, chapter := range doc.Chapters {
		if len(chapter.Entries) == 0 {
			continue
		}
		heading(pdf, chapter.Title)

		for _, entry := range chapter.Entries {
			if q := strings.TrimSpace(entry.Question); q != "" {
				pdf.SetFont(fontFamily, "B", 11)
				pdf.SetTextColor(0, 0, 0)
				pdf.MultiCell(0, lineHeight, Clean(q), "", "L", false)
				pdf.Ln(1)
			}
			body(pdf, entry.Body)
		}
		pdf.Ln(3)
	}

	if len(doc.References) > 0 {
		pdf.AddPage()
		heading(pdf, ReferencesTitle)
		pdf.SetFont(fontFamily, "", 11)
		pdf.SetTextColor(0, 0, 0)
		for _, ref := range doc.References {
			bullet(pdf, ref)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("report: layout: %w", err)
	}
	return pdf.Output(w)
}

// Bytes renders doc into memory.
func Bytes(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(doc, &buf); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, errors.New("report: renderer produced no output")
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont(fontFamily, "B", 13)
	pdf.SetTextColor(accent[0], accent[1], accent[2])
	pdf.MultiCell(0, 7, title, "", "L", false)
	pdf.Ln(2)
}

func body(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont(fontFamily, "", 11)
	pdf.SetTextColor(0, 0, 0)

	for _, para := range Paragraphs(text) {
		for _, line := range strings.Split(para, "\n") {
			if item, ok := bulletItem(line); ok {
				bullet(pdf, item)
				continue
			}
			pdf.MultiCell(0, lineHeight, Clean(line), "", "L", false)
		}
		pdf.Ln(2)
	}
}

func bullet(pdf *fpdf.Fpdf, text string) {
	left, _, _, _ := pdf.GetMargins()
	pdf.SetX(left + bulletInset)
	pdf.CellFormat(bulletInset, lineHeight, "•", "", 0, "L", false, 0, "")
	pdf.SetLeftMargin(left + 2*bulletInset)
	pdf.MultiCell(0, lineHeight, Clean(text), "", "L", false)
	pdf.SetLeftMargin(left)
}

// Paragraphs splits text on blank lines and drops empty paragraphs.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var (
	headingMark = regexp.MustCompile(`^\s{0,3}#{1,6}\s+`)
	emphasis    = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	inlineCode  = regexp.MustCompile("`([^`]*)`")
	bulletMark  = regexp.MustCompile(`^\s*(?:[-*•+])\s+(.*)$`)
	link        = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// Clean removes the markdown the model tends to emit but a PDF line cannot show.
func Clean(line string) string {
	line = headingMark.ReplaceAllString(line, "")
	line = emphasis.ReplaceAllString(line, "$2")
	line = inlineCode.ReplaceAllString(line, "$1")
	line = link.ReplaceAllString(line, "$1 ($2)")
	return strings.TrimSpace(line)
}

func bulletItem(line string) (string, bool) {
	m := bulletMark.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}
