// Package models contains domain types for the invoice portal.
package models

// Field names a canonical column every roster must resolve to.
type Field string

const (
	FieldSrNo          Field = "srno"
	FieldExpertName    Field = "expert_name"
	FieldPhone         Field = "phone"
	FieldEmail         Field = "email"
	FieldAddress       Field = "address"
	FieldPAN           Field = "pan"
	FieldBankDetails   Field = "bank_details"
	FieldAccountNo     Field = "account_no"
	FieldIFSC          Field = "ifsc"
	FieldTotalSales    Field = "total_sales"
	FieldCommission    Field = "commission"
	FieldInWords       Field = "in_words"
	FieldCommissionPct Field = "commission_pct"
	FieldInvoiceNumber Field = "invoice_number"
	FieldNotes         Field = "notes"
	FieldPaymentStatus Field = "payment_status"
)

// CanonicalFields lists every canonical field in display order.
var CanonicalFields = []Field{
	FieldSrNo,
	FieldExpertName,
	FieldPhone,
	FieldEmail,
	FieldAddress,
	FieldPAN,
	FieldBankDetails,
	FieldAccountNo,
	FieldIFSC,
	FieldTotalSales,
	FieldCommission,
	FieldInWords,
	FieldCommissionPct,
	FieldInvoiceNumber,
	FieldNotes,
	FieldPaymentStatus,
}

// ExpertRecord is one roster row after column mapping and text normalization.
// TotalSales and Commission hold numeric-parseable text; everything else is free text.
type ExpertRecord struct {
	SrNo          string `json:"srno" msgpack:"srno"`
	ExpertName    string `json:"expertName" msgpack:"expertName"`
	Phone         string `json:"phone" msgpack:"phone"`
	Email         string `json:"email" msgpack:"email"`
	Address       string `json:"address" msgpack:"address"`
	PAN           string `json:"pan" msgpack:"pan"`
	BankDetails   string `json:"bankDetails" msgpack:"bankDetails"`
	AccountNo     string `json:"accountNo" msgpack:"accountNo"`
	IFSC          string `json:"ifsc" msgpack:"ifsc"`
	TotalSales    string `json:"totalSales" msgpack:"totalSales"`
	Commission    string `json:"commission" msgpack:"commission"`
	InWords       string `json:"inWords" msgpack:"inWords"`
	CommissionPct string `json:"commissionPct" msgpack:"commissionPct"`
	InvoiceNumber string `json:"invoiceNumber" msgpack:"invoiceNumber"`
	Notes         string `json:"notes" msgpack:"notes"`
	PaymentStatus string `json:"paymentStatus" msgpack:"paymentStatus"`
}

// Set assigns the value of a canonical field. Unknown fields are ignored.
func (r *ExpertRecord) Set(f Field, v string) {
	if p := r.field(f); p != nil {
		*p = v
	}
}

// Get returns the value of a canonical field.
func (r *ExpertRecord) Get(f Field) string {
	if p := r.field(f); p != nil {
		return *p
	}
	return ""
}

func (r *ExpertRecord) field(f Field) *string {
	switch f {
	case FieldSrNo:
		return &r.SrNo
	case FieldExpertName:
		return &r.ExpertName
	case FieldPhone:
		return &r.Phone
	case FieldEmail:
		return &r.Email
	case FieldAddress:
		return &r.Address
	case FieldPAN:
		return &r.PAN
	case FieldBankDetails:
		return &r.BankDetails
	case FieldAccountNo:
		return &r.AccountNo
	case FieldIFSC:
		return &r.IFSC
	case FieldTotalSales:
		return &r.TotalSales
	case FieldCommission:
		return &r.Commission
	case FieldInWords:
		return &r.InWords
	case FieldCommissionPct:
		return &r.CommissionPct
	case FieldInvoiceNumber:
		return &r.InvoiceNumber
	case FieldNotes:
		return &r.Notes
	case FieldPaymentStatus:
		return &r.PaymentStatus
	}
	return nil
}

// Letterhead is the fixed "Bill To" company block printed on every invoice.
type Letterhead struct {
	Name         string   `json:"name" yaml:"name"`
	AddressLines []string `json:"addressLines" yaml:"addressLines"`
}
