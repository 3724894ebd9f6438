package converters

import (
	"fmt"
	"io"
	"strings"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfFormat     = "pdf"
	pdfFontFamily = "Arial"
	pdfBodyWidth  = 190.0
	pdfMargin     = 10.0
	pdfRowHeight  = 5.0
	pdfIndent     = 4
)

type pdfFont struct {
	style string
	size  float64
}

var (
	fontCover      = pdfFont{"B", 28}
	fontSubtitle   = pdfFont{"", 14}
	fontHeading    = pdfFont{"B", 18}
	fontTOCEntry   = pdfFont{"", 9}
	fontTOCSection = pdfFont{"B", 12}
	fontBadge      = pdfFont{"B", 11}
	fontLabel      = pdfFont{"B", 10}
	fontNote       = pdfFont{"", 8}
	fontTableHead  = pdfFont{"B", 8}
	fontTableBody  = pdfFont{"", 8}
)

type rgb [3]int

var (
	black     = rgb{0, 0, 0}
	white     = rgb{255, 255, 255}
	grey      = rgb{128, 128, 128}
	linkBlue  = rgb{0, 102, 204}
	headFill  = rgb{245, 245, 245}
	ruleColor = rgb{220, 220, 220}
	gridColor = rgb{180, 180, 180}
)

var badgeColors = map[string]rgb{
	"GET":    {97, 175, 254},
	"POST":   {73, 204, 144},
	"PUT":    {252, 161, 48},
	"PATCH":  {80, 227, 194},
	"DELETE": {249, 62, 62},
}

// PDFConverter renders resource forms as PDF reference documents.
type PDFConverter struct {
	pdf      *gofpdf.Fpdf
	tocItems []tocItem
}

type tocItem struct {
	title  string
	nested bool
	linkID int
}

type pdfCell struct {
	text   string
	align  string
	linkID int
}

// NewPDFConverter creates a new PDF converter.
func NewPDFConverter() *PDFConverter {
	return &PDFConverter{}
}

// Format returns the output format name.
func (c *PDFConverter) Format() string {
	return pdfFormat
}

// Convert writes form as a PDF: a cover page, a table of contents and one
// section per operation with its field table.
func (c *PDFConverter) Convert(form *domain.ResourceForm, output io.Writer) error {
	c.pdf = gofpdf.New("P", "mm", "A4", "")
	c.pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	c.setDrawColor(gridColor)
	c.tocItems = c.tocItems[:0]

	c.registerLinks(form)
	c.coverPage(form)
	c.contentsPage()
	c.operationsPages(form)

	if err := c.pdf.Output(output); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// registerLinks reserves one link per section before any page exists.
// Entry 0 is the operations overview, entry i+1 is operation i.
func (c *PDFConverter) registerLinks(form *domain.ResourceForm) {
	c.tocItems = append(c.tocItems, tocItem{title: "Operations", linkID: c.pdf.AddLink()})
	for _, op := range form.Operations {
		c.tocItems = append(c.tocItems, tocItem{
			title:  operationTitle(op),
			nested: true,
			linkID: c.pdf.AddLink(),
		})
	}
}

func (c *PDFConverter) coverPage(form *domain.ResourceForm) {
	c.pdf.AddPage()
	c.pdf.Ln(40)

	c.setFont(fontCover)
	c.line(15, form.Label, "C")
	c.pdf.Ln(5)

	subtitle := form.Title
	if form.Version != "" {
		subtitle = fmt.Sprintf("%s (%s)", form.Title, form.Version)
	}
	c.setFont(fontSubtitle)
	c.withTextColor(grey, func() { c.line(8, subtitle, "C") })
	c.pdf.Ln(50)

	c.setFont(fontLabel)
	c.withTextColor(grey, func() {
		c.line(6, fmt.Sprintf("Resource: %s", form.Tag), "C")
		c.line(6, fmt.Sprintf("%d operations", len(form.Operations)), "C")
	})
}

func (c *PDFConverter) contentsPage() {
	c.pdf.AddPage()
	c.setFont(fontHeading)
	c.line(10, "Contents", "")
	c.pdf.Ln(8)

	for _, item := range c.tocItems {
		indent := 0.0
		c.setFont(fontTOCSection)
		if item.nested {
			indent = 8
			c.setFont(fontTOCEntry)
		}

		c.pdf.SetX(pdfMargin + indent)
		c.pdf.CellFormat(pdfBodyWidth-indent, pdfRowHeight, truncate(item.title, 60), "", 1, "", false, item.linkID, "")
	}
}

func (c *PDFConverter) operationsPages(form *domain.ResourceForm) {
	c.pdf.AddPage()
	c.anchor(0)

	c.setFont(fontHeading)
	c.line(10, "Operations", "")
	c.pdf.Ln(4)
	c.summaryTable(form.Operations)
	c.pdf.Ln(6)

	for i, op := range form.Operations {
		c.ensureSpace(50)
		c.anchor(i + 1)
		c.operationSection(op)
	}
}

func (c *PDFConverter) anchor(tocIndex int) {
	if tocIndex < len(c.tocItems) {
		c.pdf.SetLink(c.tocItems[tocIndex].linkID, -1, -1)
	}
}

func (c *PDFConverter) summaryTable(ops []*domain.OperationForm) {
	if len(ops) == 0 {
		return
	}

	widths := []float64{90, 85, 15}
	c.tableHeader(widths, "Operation", "Path", "Method")

	c.setFont(fontTableBody)
	for i, op := range ops {
		link := c.tocItems[i+1].linkID
		c.tableRow(widths, []pdfCell{
			{text: truncate(op.Name, 60), linkID: link},
			{text: op.Path, linkID: link},
			{text: formatMethod(op.Method), align: "C", linkID: link},
		})
	}
}

func (c *PDFConverter) operationSection(op *domain.OperationForm) {
	c.methodBadge(formatMethod(op.Method), op.Path)
	c.pdf.Ln(2)

	c.setFont(fontNote)
	c.withTextColor(grey, func() { c.line(4, fmt.Sprintf("Operation ID: %s", op.ID), "") })

	if op.Name != "" {
		c.setFont(fontLabel)
		c.pdf.MultiCell(pdfBodyWidth, pdfRowHeight, stripHTML(op.Name), "", "", false)
	}
	c.pdf.Ln(2)

	if rows := flattenFields(formFields(op), 0); len(rows) > 0 {
		c.setFont(fontLabel)
		c.line(6, "Fields", "")
		c.fieldTable(rows)
	}

	c.pdf.Ln(2)
	c.setDrawColor(ruleColor)
	y := c.pdf.GetY()
	c.pdf.Line(pdfMargin, y, pdfMargin+pdfBodyWidth, y)
	c.setDrawColor(gridColor)
	c.pdf.Ln(6)
}

func (c *PDFConverter) methodBadge(method, path string) {
	color, ok := badgeColors[method]
	if !ok {
		color = grey
	}

	c.setFont(fontBadge)
	width := float64(len(method)*3) + 8
	c.pdf.SetFillColor(color[0], color[1], color[2])
	c.withTextColor(white, func() {
		c.pdf.CellFormat(width, 7, method, "", 0, "C", true, 0, "")
	})
	c.pdf.CellFormat(pdfBodyWidth-width, 7, " "+path, "", 1, "", false, 0, "")
}

// fieldTable lists the fields of an operation, indenting nested fields in
// the label column.
func (c *PDFConverter) fieldTable(rows []fieldRow) {
	widths := []float64{45, 35, 35, 15, 60}
	c.tableHeader(widths, "Label", "Key", "Type", "Required", "Description")

	c.setFont(fontTableBody)
	for _, row := range rows {
		c.tableRow(widths, []pdfCell{
			{text: strings.Repeat(" ", pdfIndent*row.depth) + row.label},
			{text: row.key},
			{text: row.kind},
			{text: requiredLabel(row.required), align: "C"},
			{text: row.description},
		})
	}
	c.pdf.Ln(3)
}

func (c *PDFConverter) tableHeader(widths []float64, titles ...string) {
	c.setFont(fontTableHead)
	c.pdf.SetFillColor(headFill[0], headFill[1], headFill[2])
	for i, title := range titles {
		c.pdf.CellFormat(widths[i], 6, title, "1", 0, "", true, 0, "")
	}
	c.pdf.Ln(-1)
}

// tableRow draws one bordered row tall enough for its longest cell.
func (c *PDFConverter) tableRow(widths []float64, cells []pdfCell) {
	lines := 1
	for i, cell := range cells {
		lines = max(lines, len(c.pdf.SplitLines([]byte(cell.text), widths[i])))
	}
	height := float64(lines) * pdfRowHeight
	c.ensureSpace(height)

	x, y := c.pdf.GetX(), c.pdf.GetY()
	for i, cell := range cells {
		c.pdf.SetXY(x, y)
		if cell.linkID > 0 {
			c.withTextColor(linkBlue, func() {
				c.pdf.MultiCell(widths[i], pdfRowHeight, cell.text, "0", cell.align, false)
			})
			c.pdf.Link(x, y, widths[i], height, cell.linkID)
		} else {
			c.pdf.MultiCell(widths[i], pdfRowHeight, cell.text, "0", cell.align, false)
		}

		c.pdf.Rect(x, y, widths[i], height, "D")
		x += widths[i]
	}

	c.pdf.SetXY(pdfMargin, y+height)
}

func (c *PDFConverter) ensureSpace(height float64) {
	_, pageHeight := c.pdf.GetPageSize()
	_, _, _, bottom := c.pdf.GetMargins()

	if c.pdf.GetY()+height > pageHeight-bottom-10 {
		c.pdf.AddPage()
	}
}

func (c *PDFConverter) line(height float64, text, align string) {
	c.pdf.CellFormat(pdfBodyWidth, height, text, "", 1, align, false, 0, "")
}

func (c *PDFConverter) setFont(f pdfFont) {
	c.pdf.SetFont(pdfFontFamily, f.style, f.size)
}

func (c *PDFConverter) setDrawColor(color rgb) {
	c.pdf.SetDrawColor(color[0], color[1], color[2])
}

func (c *PDFConverter) withTextColor(color rgb, draw func()) {
	c.pdf.SetTextColor(color[0], color[1], color[2])
	draw()
	c.pdf.SetTextColor(black[0], black[1], black[2])
}

func operationTitle(op *domain.OperationForm) string {
	return fmt.Sprintf("%s %s", formatMethod(op.Method), op.Path)
}
