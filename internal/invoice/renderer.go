// Package invoice renders a single-page A4 tax invoice for one expert.
package invoice

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"github.com/varun160398/auto-invoice-portal/internal/format"
	"github.com/varun160398/auto-invoice-portal/internal/models"
	"github.com/varun160398/auto-invoice-portal/internal/signature"
	"github.com/varun160398/auto-invoice-portal/internal/textnorm"
)

// SignatureOutcome tells the caller what happened to the signature block.
type SignatureOutcome string

const (
	// SignatureNone means no signature was supplied.
	SignatureNone SignatureOutcome = "none"
	// SignatureDrawn means the image was placed in the signature box.
	SignatureDrawn SignatureOutcome = "drawn"
	// SignatureFallback means an image was supplied but could not be used;
	// only the label was drawn and Diagnostic holds the reason.
	SignatureFallback SignatureOutcome = "fallback"
)

// Result is a rendered invoice.
type Result struct {
	PDF        []byte
	Signature  SignatureOutcome
	Diagnostic error
}

// Options configures a Renderer.
type Options struct {
	Letterhead models.Letterhead
	// Timestamp is written as the document creation and modification date.
	// Zero means the time of each render.
	Timestamp time.Time
	// MaxSignatureDimension caps the embedded signature size in pixels.
	MaxSignatureDimension int
}

// Renderer draws invoices. It holds no per-render state and is safe for
// concurrent use.
type Renderer struct {
	opts   Options
	logger zerolog.Logger
}

func NewRenderer(opts Options, logger zerolog.Logger) *Renderer {
	return &Renderer{
		opts:   opts,
		logger: logger.With().Str("component", "invoice").Logger(),
	}
}

// Render lays out rec for period. sig is the raw signature image or nil.
// A signature that cannot be used never fails the render; see
// Result.Signature. The returned error is reserved for PDF generation
// failures.
func (r *Renderer) Render(rec models.ExpertRecord, sig []byte, period models.Period) (*Result, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCatalogSort(true)
	ts := r.opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	pdf.SetCreationDate(ts)
	pdf.SetModificationDate(ts)
	pdf.SetTitle(fmt.Sprintf("Invoice %s", rec.InvoiceNumber), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	c := &canvas{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	c.header(rec, period)
	y := c.billTo(r.opts.Letterhead)
	y = c.items(rec, period, y)
	y = c.bank(rec, y)

	res := &Result{Signature: SignatureNone}
	r.signatureBlock(c, rec, sig, y, res)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render invoice for %q: %w", rec.ExpertName, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write invoice for %q: %w", rec.ExpertName, err)
	}
	res.PDF = buf.Bytes()
	return res, nil
}

func (r *Renderer) signatureBlock(c *canvas, rec models.ExpertRecord, sig []byte, y float64, res *Result) {
	sigX := right - sigBoxW
	sigY := math.Max(sigMinY, y-sigDrop)

	if len(sig) > 0 {
		box := signature.Box{
			X: sigX,
			Y: pageH - (sigY + sigLabelGap + sigBoxH),
			W: sigBoxW,
			H: sigBoxH,
		}
		if err := c.signature(sig, box, r.opts.MaxSignatureDimension); err != nil {
			res.Signature = SignatureFallback
			res.Diagnostic = err
			r.logger.Warn().Err(err).Str("expert", rec.ExpertName).Msg("signature skipped, drawing label only")
		} else {
			res.Signature = SignatureDrawn
		}
	}

	c.centered(sigX+sigBoxW/2, sigY, signatoryLabel, sizeBody, false)
}

// canvas wraps gofpdf with bottom-up coordinates and normalized text.
type canvas struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (c *canvas) font(size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	c.pdf.SetFont(fontFamily, style, size)
}

func (c *canvas) prepare(s string) string {
	return c.tr(textnorm.Normalize(s))
}

func (c *canvas) text(x, y float64, s string, size float64, bold bool) {
	c.font(size, bold)
	c.pdf.Text(x, pageH-y, c.prepare(s))
}

func (c *canvas) rightText(x, y float64, s string, size float64, bold bool) {
	c.font(size, bold)
	s = c.prepare(s)
	c.pdf.Text(x-c.pdf.GetStringWidth(s), pageH-y, s)
}

func (c *canvas) centered(x, y float64, s string, size float64, bold bool) {
	c.font(size, bold)
	s = c.prepare(s)
	c.pdf.Text(x-c.pdf.GetStringWidth(s)/2, pageH-y, s)
}

func (c *canvas) rule(y float64) {
	c.pdf.SetLineWidth(ruleWidth)
	c.pdf.Line(left, pageH-y, right, pageH-y)
}

// header draws the issuer block, invoice meta and title.
func (c *canvas) header(rec models.ExpertRecord, period models.Period) {
	c.rightText(right, top-6, "Invoice No: "+rec.InvoiceNumber, sizeHeading, true)
	c.rightText(right, top-20, "Period: "+period.String(), sizeHeading, false)

	y := top
	c.text(left, y, strings.ToUpper(rec.ExpertName), sizeName, true)
	y -= 14
	for _, line := range []string{
		"Address: " + rec.Address,
		"Phone: " + rec.Phone,
		"Email: " + rec.Email,
	} {
		c.text(left, y, line, sizeBody, false)
		y -= 11
	}
	c.text(left, y, "PAN: "+rec.PAN, sizeBody, false)

	c.centered(pageW/2, top-52, titleLabel, sizeTitle, true)
	c.rule(top - 62)
}

// billTo draws the fixed company block and returns the table header line.
func (c *canvas) billTo(lh models.Letterhead) float64 {
	y := top - 82
	c.text(left, y, "Bill To:", sizeHeading, true)
	y -= 14
	c.text(left, y, lh.Name, sizeCompany, true)
	y -= 12
	for _, line := range lh.AddressLines {
		c.text(left, y, line, sizeBody, false)
		y -= 11
	}

	y -= 10
	c.rule(y)
	return y - 16
}

func (c *canvas) items(rec models.ExpertRecord, period models.Period, y float64) float64 {
	c.text(left, y, "Sr.", sizeBody, true)
	c.text(left+descOffset, y, "Description", sizeBody, true)
	c.rightText(right-salesOffset, y, "Total Sales", sizeBody, true)
	c.rightText(right, y, "Amount", sizeBody, true)

	y -= 10
	c.rule(y)

	sales := format.FormatMoney(rec.TotalSales)
	commission := format.FormatMoney(rec.Commission)

	y -= 18
	c.text(left, y, "1", sizeBody, false)
	c.text(left+descOffset, y, "Affiliate marketing - "+period.String(), sizeBody, false)
	c.rightText(right-salesOffset, y, sales, sizeBody, false)
	c.rightText(right, y, commission, sizeBody, false)

	y -= 16
	c.rule(y)

	y -= 18
	c.rightText(right-salesOffset, y, "Total", sizeHeading, true)
	c.rightText(right, y, commission, sizeHeading, true)

	y -= 20
	if words := format.AmountInWords(rec); words != "" {
		c.text(left, y, "Rupees: "+words+" only.", sizeBody, false)
	} else {
		c.text(left, y, "Rupees:", sizeBody, false)
	}
	return y
}

func (c *canvas) bank(rec models.ExpertRecord, y float64) float64 {
	y -= 28
	c.text(left, y, "Bank Details:", sizeHeading, true)
	y -= 14
	c.text(left, y, rec.BankDetails, sizeBody, false)
	y -= 11
	c.text(left, y, "Account No: "+format.FormatAccountNumber(rec.AccountNo), sizeBody, false)
	y -= 11
	c.text(left, y, "IFSC Code: "+rec.IFSC, sizeBody, false)
	return y
}

// signature prepares data and draws it aspect-fit inside box, which is in
// top-down page coordinates. Any failure leaves the document error-free.
func (c *canvas) signature(data []byte, box signature.Box, maxDim int) error {
	img, err := signature.Prepare(data, signature.Options{MaxDimension: maxDim})
	if err != nil {
		return err
	}
	encoded, err := img.PNG()
	if err != nil {
		return err
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	c.pdf.RegisterImageOptionsReader("signature", opts, bytes.NewReader(encoded))
	if err := c.pdf.Error(); err != nil {
		c.pdf.ClearError()
		return fmt.Errorf("embed signature: %w", err)
	}

	p := signature.PlaceInBox(img.Width(), img.Height(), box)
	c.pdf.ImageOptions("signature", p.X, p.Y, p.W, p.H, false, opts, 0, "")
	return nil
}
