package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/varun160398/auto-invoice-portal/internal/models"
)

// Parser reads a roster file into a raw header/rows table.
type Parser interface {
	// Name returns the unique name of the parser.
	Name() string
	// CanParse returns true if this parser can handle the given file.
	CanParse(filePath string) (bool, error)
	// Parse reads the whole file.
	Parse(filePath string) (*models.Table, error)
}

// sniffSize is how much of a file is inspected to pick a parser.
const sniffSize = 512

var zipMagic = []byte("PK\x03\x04")

func sniff(filePath string) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	return buf[:n], nil
}

func looksLikeZip(head []byte) bool {
	return bytes.HasPrefix(head, zipMagic)
}

// looksLikeText accepts UTF-8 without NUL bytes. The sniffed prefix may end
// mid-rune, so the last few bytes are not required to decode.
func looksLikeText(head []byte) bool {
	if len(head) == 0 || bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	for len(head) > utf8.UTFMax {
		r, size := utf8.DecodeRune(head)
		if r == utf8.RuneError && size == 1 {
			return false
		}
		head = head[size:]
	}
	return true
}

// dropBlankRows removes rows in which every cell is empty.
func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, cell := range row {
			if cell != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// toTable splits raw rows into the header row and data rows.
func toTable(rows [][]string) (*models.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header row found")
	}
	return &models.Table{
		Headers: rows[0],
		Rows:    dropBlankRows(rows[1:]),
	}, nil
}
