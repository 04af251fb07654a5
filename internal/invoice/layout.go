package invoice

// Page geometry in points. Vertical positions are measured upward from the
// bottom edge and flipped when drawn.
const (
	mm = 72.0 / 25.4

	pageW = 595.28
	pageH = 841.89

	margin = 18 * mm

	left  = margin
	right = pageW - margin
	top   = pageH - margin

	ruleWidth = 0.8

	// Description and "Total Sales" columns.
	descOffset  = 18 * mm
	salesOffset = 55 * mm

	sigBoxW     = 70 * mm
	sigBoxH     = 22 * mm
	sigMinY     = 35 * mm
	sigDrop     = 75
	sigLabelGap = 10
)

const (
	fontFamily = "Helvetica"

	sizeName    = 14
	sizeTitle   = 14
	sizeCompany = 11
	sizeHeading = 10
	sizeBody    = 9
)

const (
	signatoryLabel = "Authorised Signatory"
	titleLabel     = "TAX INVOICE"
)
