package parser

import (
	"fmt"
	"strings"

	"github.com/varun160398/auto-invoice-portal/internal/models"
	"github.com/varun160398/auto-invoice-portal/internal/textnorm"
)

// ColumnAliases lists the accepted header spellings for one canonical field,
// in priority order.
type ColumnAliases struct {
	Field   models.Field `yaml:"field"`
	Aliases []string     `yaml:"aliases"`
}

// AliasTable covers every canonical field.
type AliasTable []ColumnAliases

// DefaultAliases is the header vocabulary seen in real rosters.
var DefaultAliases = AliasTable{
	{models.FieldSrNo, []string{"Sr.No", "Sr.No ", "Sr No", "Sr. No.", "Sr.No."}},
	{models.FieldExpertName, []string{"Expert's name", "Experts name", "Expert name", "Expert Name"}},
	{models.FieldPhone, []string{"Phone No.", "Phone No", "Phone", "Mobile"}},
	{models.FieldEmail, []string{"Email Address", "Email", "Email Id", "E-mail"}},
	{models.FieldAddress, []string{"Address", "Address ", "Full Address"}},
	{models.FieldPAN, []string{"Pancard", "PAN", "Pan Card"}},
	{models.FieldBankDetails, []string{"Bank Details", "Bank", "Bank Name"}},
	{models.FieldAccountNo, []string{"Ac/No.", "Ac/No", "Account No", "Account Number", "A/c No"}},
	{models.FieldIFSC, []string{"IFSC Code", "IFSC", "IFSC code"}},
	{models.FieldTotalSales, []string{"Total Sales", "Sales", "TotalSale"}},
	{models.FieldCommission, []string{"Commission", "Comm"}},
	{models.FieldInWords, []string{"In words", "In Words", "Amount in words"}},
	{models.FieldCommissionPct, []string{"% of Commission", "Commission %", "Percent of Commission"}},
	{models.FieldInvoiceNumber, []string{"Invoice number", "Invoice No", "Invoice No."}},
	{models.FieldNotes, []string{"Notes", "Remark", "Remarks"}},
	{models.FieldPaymentStatus, []string{"Payment Status", "Status"}},
}

// Lookup returns the aliases for f.
func (t AliasTable) Lookup(f models.Field) ([]string, bool) {
	for _, c := range t {
		if c.Field == f {
			return c.Aliases, true
		}
	}
	return nil, false
}

// numericFields have spreadsheet "missing" markers cleared to "".
var numericFields = map[models.Field]bool{
	models.FieldTotalSales: true,
	models.FieldCommission: true,
	models.FieldAccountNo:  true,
}

// MissingColumn is one canonical field no header matched.
type MissingColumn struct {
	Field   models.Field `json:"field"`
	Aliases []string     `json:"aliases"`
}

// MissingColumnsError reports every unresolved field at once, together with
// the headers that were actually present.
type MissingColumnsError struct {
	Missing []MissingColumn `json:"missing"`
	Found   []string        `json:"found"`
}

func (e *MissingColumnsError) Error() string {
	var b strings.Builder
	b.WriteString("Missing required columns:\n")
	for _, m := range e.Missing {
		fmt.Fprintf(&b, "- %s (any of %q)\n", m.Field, m.Aliases)
	}
	fmt.Fprintf(&b, "Found columns: %q", e.Found)
	return b.String()
}

// CanonicalTable is a roster whose columns are keyed by canonical field.
type CanonicalTable struct {
	columns map[models.Field]int
	rows    [][]string
}

// Len returns the number of data rows.
func (t *CanonicalTable) Len() int {
	return len(t.rows)
}

// Column returns the source column index a field was resolved to.
func (t *CanonicalTable) Column(f models.Field) (int, bool) {
	idx, ok := t.columns[f]
	return idx, ok
}

// Value returns the cleaned value of field f in data row i.
func (t *CanonicalTable) Value(i int, f models.Field) string {
	col, ok := t.columns[f]
	if !ok || i < 0 || i >= len(t.rows) {
		return ""
	}
	row := t.rows[i]
	if col >= len(row) {
		return ""
	}
	return row[col]
}

// Records returns one ExpertRecord per data row, in source order.
func (t *CanonicalTable) Records() []models.ExpertRecord {
	records := make([]models.ExpertRecord, len(t.rows))
	for i := range t.rows {
		for f := range t.columns {
			records[i].Set(f, t.Value(i, f))
		}
	}
	return records
}

// MapColumns resolves each canonical field to the first alias that exactly
// matches a header. Every cell of the result is normalized, and the numeric
// fields have "nan"/"none" cleared. If any field is unresolved no table is
// returned, only a *MissingColumnsError naming all of them.
func MapColumns(table *models.Table, aliases AliasTable) (*CanonicalTable, error) {
	index := make(map[string]int, len(table.Headers))
	for i, h := range table.Headers {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	columns := make(map[models.Field]int, len(models.CanonicalFields))
	var missing []MissingColumn
	for _, f := range models.CanonicalFields {
		names, _ := aliases.Lookup(f)
		resolved := false
		for _, name := range names {
			if col, ok := index[name]; ok {
				columns[f] = col
				resolved = true
				break
			}
		}
		if !resolved {
			missing = append(missing, MissingColumn{Field: f, Aliases: names})
		}
	}
	if len(missing) > 0 {
		found := make([]string, len(table.Headers))
		copy(found, table.Headers)
		return nil, &MissingColumnsError{Missing: missing, Found: found}
	}

	numericCols := make(map[int]bool)
	for f, col := range columns {
		if numericFields[f] {
			numericCols[col] = true
		}
	}

	rows := make([][]string, len(table.Rows))
	for i, src := range table.Rows {
		row := textnorm.NormalizeAll(src)
		for col := range numericCols {
			if col < len(row) && isMissingMarker(row[col]) {
				row[col] = ""
			}
		}
		rows[i] = row
	}

	return &CanonicalTable{columns: columns, rows: rows}, nil
}

func isMissingMarker(s string) bool {
	return strings.EqualFold(s, "nan") || strings.EqualFold(s, "none")
}
