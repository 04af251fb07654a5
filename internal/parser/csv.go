package parser

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/varun160398/auto-invoice-portal/internal/models"
)

// CSVParser handles rosters exported as comma-separated text.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Name() string {
	return "csv"
}

func (p *CSVParser) CanParse(filePath string) (bool, error) {
	head, err := sniff(filePath)
	if err != nil {
		return false, err
	}
	return !looksLikeZip(head) && looksLikeText(head), nil
}

func (p *CSVParser) Parse(filePath string) (*models.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	return toTable(rows)
}
