package export

import (
	"strings"

	"github.com/varun160398/auto-invoice-portal/internal/models"
	"github.com/varun160398/auto-invoice-portal/internal/textnorm"
)

// InvoiceFilename names the PDF for rec.
func InvoiceFilename(rec models.ExpertRecord) string {
	return textnorm.SafeFilename(strings.TrimSpace(rec.ExpertName) + "_Invoice_" + strings.TrimSpace(rec.InvoiceNumber) + ".pdf")
}
