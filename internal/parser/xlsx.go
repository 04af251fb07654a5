package parser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/varun160398/auto-invoice-portal/internal/models"
)

// XLSXParser reads one named sheet of an .xlsx/.xlsm workbook.
type XLSXParser struct {
	sheetName string
}

func NewXLSXParser(sheetName string) *XLSXParser {
	return &XLSXParser{sheetName: sheetName}
}

func (p *XLSXParser) Name() string {
	return "xlsx"
}

func (p *XLSXParser) CanParse(filePath string) (bool, error) {
	head, err := sniff(filePath)
	if err != nil {
		return false, err
	}
	return looksLikeZip(head), nil
}

// Parse returns raw cell values, so numbers keep their stored precision
// instead of the sheet's display format.
func (p *XLSXParser) Parse(filePath string) (*models.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(p.sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found (sheets: %q)", p.sheetName, f.GetSheetList())
	}

	rows, err := f.GetRows(p.sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", p.sheetName, err)
	}
	return toTable(rows)
}
