package parser

import (
	"fmt"
	"strings"

	"github.com/varun160398/auto-invoice-portal/internal/models"
)

// Registry holds the available roster parsers and provides auto-detection.
type Registry struct {
	parsers []Parser
	aliases AliasTable
}

// NewRegistry creates a registry that reads workbooks from sheetName and
// maps columns with aliases.
func NewRegistry(sheetName string, aliases AliasTable) *Registry {
	return &Registry{
		parsers: []Parser{
			NewXLSXParser(sheetName),
			NewCSVParser(),
		},
		aliases: aliases,
	}
}

// Register adds a new parser to the registry.
func (r *Registry) Register(p Parser) {
	r.parsers = append(r.parsers, p)
}

// FindParser detects the correct parser for a file.
func (r *Registry) FindParser(filePath string) (Parser, error) {
	for _, p := range r.parsers {
		can, err := p.CanParse(filePath)
		if err != nil {
			return nil, err
		}
		if can {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no suitable parser found for file: %s", filePath)
}

// GetParserByName returns a parser by its name.
func (r *Registry) GetParserByName(name string) (Parser, error) {
	name = strings.ToLower(name)
	for _, p := range r.parsers {
		if strings.ToLower(p.Name()) == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("parser not found: %s", name)
}

// MapFile parses a roster file and resolves its columns. The raw table is
// returned alongside so callers can report which header each field used.
// A *MissingColumnsError is returned unwrapped.
func (r *Registry) MapFile(filePath string) (*models.Table, *CanonicalTable, error) {
	p, err := r.FindParser(filePath)
	if err != nil {
		return nil, nil, err
	}

	table, err := p.Parse(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", p.Name(), err)
	}

	canonical, err := MapColumns(table, r.aliases)
	if err != nil {
		return table, nil, err
	}
	return table, canonical, nil
}

// LoadRecords parses a roster file and maps it onto canonical records.
// A *MissingColumnsError is returned unwrapped so callers can show it as is.
func (r *Registry) LoadRecords(filePath string) ([]models.ExpertRecord, error) {
	_, canonical, err := r.MapFile(filePath)
	if err != nil {
		return nil, err
	}
	return canonical.Records(), nil
}
