// Package pdf renders contracts and invoices to PDF. Output is
// deterministic: the document creation date is pinned to the entity's own
// date so the same input always produces the same bytes.
package pdf

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/jung-kurt/gofpdf"
)

const (
	marginX      = 20.0
	lineHeight   = 5.0
	contentWidth = 170.0
)

// Party identifies the freelancer issuing the document. Filled from the
// account profile; zero-value fields are simply omitted from the layout.
type Party struct {
	Name    string
	Company string
	Address string
	Phone   string
	Email   string
}

// Renderer draws contract and invoice documents.
type Renderer struct{}

// NewRenderer returns a Renderer.
func NewRenderer() *Renderer { return &Renderer{} }

// page tracks the vertical cursor over a gofpdf document. bottom is the
// last usable y; text drawn past it belongs on the next page.
type page struct {
	f      *gofpdf.Fpdf
	y      float64
	bottom float64
}

// breakAt starts a new page when the cursor has passed limit.
func (p *page) breakAt(limit float64) {
	if p.y > limit {
		p.f.AddPage()
		p.y = marginX
	}
}

// text draws one line at x without advancing the cursor.
func (p *page) text(x float64, s string) {
	p.f.Text(x, p.y, s)
}

// line draws one line at x and advances the cursor by dy.
func (p *page) line(x float64, s string, dy float64) {
	p.f.Text(x, p.y, s)
	p.y += dy
}

// wrapped draws s word-wrapped to width at x, advancing one text line per
// wrapped line, then adds pad. Blocks longer than a page continue on the
// next one; nothing is clipped at the page bottom.
func (p *page) wrapped(x, width float64, s string, pad float64) {
	lines := p.f.SplitText(s, width)
	for _, l := range lines {
		p.breakAt(p.bottom)
		p.f.Text(x, p.y, l)
		p.y += lineHeight
	}
	p.y += pad
}

func (p *page) setFont(style string, size float64) {
	p.f.SetFont("Helvetica", style, size)
}

// RenderContract draws the design services contract.
func (r *Renderer) RenderContract(contract *model.Contract, contractor Party) ([]byte, error) {
	f := gofpdf.New("P", "mm", "A4", "")
	f.SetCatalogSort(true)
	f.SetCreationDate(contract.EffectiveDate.UTC())
	f.SetModificationDate(contract.EffectiveDate.UTC())
	f.SetAutoPageBreak(false, 0)
	f.AddPage()

	pageWidth, pageHeight := f.GetPageSize()
	p := &page{f: f, y: marginX, bottom: pageHeight - marginX}

	// Title
	p.setFont("B", 20)
	f.SetXY(0, p.y-7)
	f.CellFormat(pageWidth, 10, "DESIGN SERVICES CONTRACT", "", 0, "C", false, 0, "")
	p.y += 15

	p.setFont("", 10)
	p.text(marginX, "Contract #: "+contract.ContractNumber)
	p.line(150, "Effective Date: "+contract.EffectiveDate.Format("1/2/2006"), 10)

	// Parties
	p.setFont("B", 14)
	p.line(marginX, "PARTIES", 8)

	p.setFont("", 10)
	p.line(marginX, "Designer (Service Provider):", lineHeight)
	p.line(25, contractor.Name, 0)
	if contractor.Address != "" {
		p.y += lineHeight
		p.line(25, contractor.Address, 0)
	}
	p.y += 10

	p.line(marginX, "Client:", lineHeight)
	p.line(25, contract.ClientName, lineHeight)
	p.line(25, contract.ClientEmail, 0)
	if contract.ClientCompany != "" {
		p.y += lineHeight
		p.line(25, contract.ClientCompany, 0)
	}
	p.y += 12

	// Project details
	p.setFont("B", 14)
	p.line(marginX, "PROJECT DETAILS", 8)

	p.setFont("", 10)
	p.line(marginX, "Project Name: "+contract.ProjectName, 6)
	if contract.ProjectDescription != "" {
		p.wrapped(marginX, contentWidth, "Description: "+contract.ProjectDescription, lineHeight)
	}

	p.setFont("B", 12)
	p.line(marginX, "Scope of Work:", 6)
	p.setFont("", 10)
	p.wrapped(marginX, contentWidth, contract.ScopeOfWork, 8)

	p.breakAt(250)

	p.setFont("B", 12)
	p.line(marginX, "Deliverables:", 6)
	p.setFont("", 10)
	p.wrapped(marginX, contentWidth, contract.Deliverables, 8)

	// Financial terms
	p.setFont("B", 14)
	p.line(marginX, "FINANCIAL TERMS", 8)

	p.setFont("", 10)
	p.line(marginX, "Total Project Fee: "+formatMoney(contract.TotalAmount), 6)
	p.line(marginX, "Payment Schedule: "+contract.PaymentSchedule, 6)
	p.line(marginX, fmt.Sprintf("Revisions Included: %d rounds", contract.RevisionsIncluded), 10)

	p.setFont("B", 12)
	p.line(marginX, "Timeline:", 6)
	p.setFont("", 10)
	p.line(marginX, contract.Timeline, 10)

	p.breakAt(230)

	// Standard terms
	p.setFont("B", 14)
	p.line(marginX, "STANDARD TERMS & CONDITIONS", 8)

	p.setFont("", 10)
	for _, term := range standardTerms(contract) {
		p.breakAt(250)
		p.setFont("B", 10)
		p.line(marginX, term.title, lineHeight)
		p.setFont("", 10)
		p.wrapped(marginX, contentWidth, term.text, 6)
	}

	// Signature block
	p.breakAt(220)
	p.y += 10
	p.setFont("B", 12)
	p.line(marginX, "SIGNATURES", 15)

	p.setFont("", 10)
	p.text(marginX, "Designer:")
	p.line(120, "Client:", 15)

	f.Line(marginX, p.y, 80, p.y)
	f.Line(120, p.y, 180, p.y)
	p.y += lineHeight

	p.text(marginX, contractor.Name)
	p.line(120, contract.ClientName, 6)

	p.text(marginX, "Date: _______________")
	p.text(120, "Date: _______________")

	return output(f)
}

type termClause struct {
	title string
	text  string
}

func standardTerms(c *model.Contract) []termClause {
	return []termClause{
		{
			"1. Intellectual Property Rights",
			"Upon full payment, all rights to the final approved designs will transfer to the Client. Designer retains the right to display work in portfolio.",
		},
		{
			"2. Revisions",
			fmt.Sprintf("The project includes %d rounds of revisions. Additional revisions will be billed at $100/hour.", c.RevisionsIncluded),
		},
		{
			"3. Timeline",
			"Timeline begins upon receipt of deposit and all required materials. Delays caused by Client may extend delivery dates accordingly.",
		},
		{
			"4. Kill Fee",
			"If project is cancelled by Client, Designer retains deposit and is entitled to 50% of remaining balance for work completed.",
		},
		{
			"5. Confidentiality",
			"Both parties agree to keep confidential information private and not disclose to third parties without written consent.",
		},
		{
			"6. Termination",
			"Either party may terminate with 14 days written notice. Client pays for all work completed to date.",
		},
		{
			"7. Governing Law",
			fmt.Sprintf("This contract is governed by the laws of %s.", c.GoverningState),
		},
	}
}

// RenderInvoice draws the invoice on US letter.
func (r *Renderer) RenderInvoice(invoice *model.Invoice, contractor Party) ([]byte, error) {
	f := gofpdf.New("P", "mm", "Letter", "")
	f.SetCatalogSort(true)
	f.SetCreationDate(invoice.InvoiceDate.UTC())
	f.SetModificationDate(invoice.InvoiceDate.UTC())
	f.SetAutoPageBreak(false, 0)
	f.AddPage()

	pageWidth, pageHeight := f.GetPageSize()
	// The footer occupies the bottom strip, keep body text above it.
	p := &page{f: f, y: marginX, bottom: pageHeight - 20}

	// Header
	p.setFont("B", 32)
	f.SetTextColor(59, 130, 246)
	p.text(marginX, "INVOICE")

	p.setFont("B", 12)
	f.SetTextColor(0, 0, 0)
	num := "#" + invoice.InvoiceNumber
	p.line(pageWidth-marginX-f.GetStringWidth(num), num, 15)

	f.SetLineWidth(0.5)
	f.SetDrawColor(59, 130, 246)
	f.Line(marginX, p.y, pageWidth-marginX, p.y)
	p.y += 10

	// From / bill-to columns
	colWidth := (pageWidth - 3*marginX) / 2
	rightColX := marginX + colWidth + marginX

	leftY := p.y
	p.setFont("B", 10)
	f.SetTextColor(128, 128, 128)
	f.Text(marginX, leftY, "FROM:")
	leftY += 6

	p.setFont("B", 11)
	f.SetTextColor(0, 0, 0)
	f.Text(marginX, leftY, contractor.Name)
	leftY += lineHeight

	p.setFont("", 10)
	if contractor.Company != "" {
		f.Text(marginX, leftY, contractor.Company)
		leftY += lineHeight
	}
	for _, l := range f.SplitText(contractor.Address, colWidth-5) {
		f.Text(marginX, leftY, l)
		leftY += lineHeight
	}
	f.Text(marginX, leftY, contractor.Phone)
	leftY += lineHeight
	f.Text(marginX, leftY, contractor.Email)

	rightY := p.y
	p.setFont("B", 10)
	f.SetTextColor(128, 128, 128)
	f.Text(rightColX, rightY, "BILL TO:")
	rightY += 6

	p.setFont("B", 11)
	f.SetTextColor(0, 0, 0)
	f.Text(rightColX, rightY, invoice.ClientName)
	rightY += lineHeight

	p.setFont("", 10)
	if invoice.ClientCompany != "" {
		f.Text(rightColX, rightY, invoice.ClientCompany)
		rightY += lineHeight
	}
	f.Text(rightColX, rightY, invoice.ClientEmail)

	p.y = math.Max(leftY, rightY) + 15

	// Details box
	f.SetFillColor(245, 247, 250)
	f.Rect(marginX, p.y, pageWidth-2*marginX, 20, "F")

	detailsY := p.y + 7
	p.setFont("B", 10)
	f.Text(marginX+5, detailsY, "Invoice Date:")
	p.setFont("", 10)
	f.Text(marginX+40, detailsY, invoice.InvoiceDate.Format("1/2/2006"))

	p.setFont("B", 10)
	f.Text(marginX+5, detailsY+7, "Due Date:")
	p.setFont("", 10)
	f.Text(marginX+40, detailsY+7, invoice.DueDate.Format("1/2/2006"))

	p.setFont("B", 10)
	f.Text(marginX+100, detailsY, "Payment Terms:")
	p.setFont("", 10)
	f.Text(marginX+140, detailsY, invoice.PaymentTerms)

	p.y += 25

	r.lineItemTable(p, invoice, pageWidth)
	p.y += 10
	p.breakAt(p.bottom - 30)

	// Totals
	totalsX := pageWidth - marginX - 60

	p.setFont("", 10)
	p.text(totalsX-30, "Subtotal:")
	p.line(totalsX+30-f.GetStringWidth(money2(invoice.Subtotal)), money2(invoice.Subtotal), 7)

	if invoice.TaxRate > 0 {
		p.text(totalsX-30, fmt.Sprintf("Tax (%s%%):", trimFloat(invoice.TaxRate)))
		p.line(totalsX+30-f.GetStringWidth(money2(invoice.TaxAmount)), money2(invoice.TaxAmount), 7)
	}

	f.SetFillColor(59, 130, 246)
	f.Rect(totalsX-35, p.y-5, 65, 10, "F")
	p.setFont("B", 12)
	f.SetTextColor(255, 255, 255)
	p.text(totalsX-30, "TOTAL:")
	total := money2(invoice.Total)
	p.line(totalsX+30-f.GetStringWidth(total), total, 15)

	f.SetTextColor(0, 0, 0)

	if invoice.PaymentInstructions != "" {
		p.y += 5
		p.setFont("B", 11)
		p.line(marginX, "Payment Instructions:", 6)
		p.setFont("", 10)
		p.wrapped(marginX, pageWidth-2*marginX, invoice.PaymentInstructions, 5)
	}
	if invoice.Notes != "" {
		p.y += 5
		p.setFont("B", 11)
		p.line(marginX, "Notes:", 6)
		p.setFont("", 10)
		p.wrapped(marginX, pageWidth-2*marginX, invoice.Notes, 0)
	}

	// Footer
	p.setFont("", 8)
	f.SetTextColor(128, 128, 128)
	footer := "Thank you for your business! - " + invoice.InvoiceNumber
	f.Text(pageWidth/2-f.GetStringWidth(footer)/2, pageHeight-10, footer)

	return output(f)
}

// lineItemTable draws the striped line-item table with a filled header row.
func (r *Renderer) lineItemTable(p *page, invoice *model.Invoice, pageWidth float64) {
	f := p.f
	widths := []float64{90, 20, 30, 30}
	rowPad := 2.0

	f.SetFillColor(59, 130, 246)
	f.SetTextColor(255, 255, 255)
	p.setFont("B", 10)
	f.SetXY(marginX, p.y)
	f.CellFormat(widths[0], 8, "Description", "", 0, "L", true, 0, "")
	f.CellFormat(widths[1], 8, "Qty", "", 0, "C", true, 0, "")
	f.CellFormat(widths[2], 8, "Rate", "", 0, "R", true, 0, "")
	f.CellFormat(widths[3], 8, "Amount", "", 0, "R", true, 0, "")
	p.y += 8

	f.SetTextColor(0, 0, 0)
	p.setFont("", 10)
	for i, item := range invoice.LineItems {
		descLines := f.SplitText(item.Description, widths[0]-4)
		rowHeight := float64(len(descLines))*lineHeight + 2*rowPad

		if p.y+rowHeight > 250 {
			f.AddPage()
			p.y = marginX
		}

		if i%2 == 1 {
			f.SetFillColor(245, 247, 250)
			f.Rect(marginX, p.y, widths[0]+widths[1]+widths[2]+widths[3], rowHeight, "F")
		}

		firstY := p.y + rowPad + 3.5
		qty := trimFloat(item.Quantity)
		rate := money2(item.Rate)
		amount := money2(item.Amount)
		f.Text(marginX+widths[0]+widths[1]/2-f.GetStringWidth(qty)/2, firstY, qty)
		f.Text(marginX+widths[0]+widths[1]+widths[2]-2-f.GetStringWidth(rate), firstY, rate)
		f.Text(marginX+widths[0]+widths[1]+widths[2]+widths[3]-2-f.GetStringWidth(amount), firstY, amount)

		// A description taller than a page continues on the next one.
		textY := firstY
		for _, l := range descLines {
			if textY > p.bottom {
				f.AddPage()
				textY = marginX + rowPad + 3.5
			}
			f.Text(marginX+2, textY, l)
			textY += lineHeight
		}

		p.y = textY - 3.5 + rowPad
	}
	_ = pageWidth
}

// output closes the document and returns its bytes.
func output(f *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// formatMoney renders "$1,234.56" with thousands grouping.
func formatMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	out := "$" + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// money2 renders "$123.45" without grouping, matching the invoice layout.
func money2(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

// trimFloat renders a float without trailing zeros (2 -> "2", 1.5 -> "1.5").
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
