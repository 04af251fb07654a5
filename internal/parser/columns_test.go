package parser

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varun160398/auto-invoice-portal/internal/models"
	"github.com/varun160398/auto-invoice-portal/internal/textnorm"
)

// fullHeaders picks one alias per canonical field, rotating through the
// alternatives with offset.
func fullHeaders(offset int) []string {
	headers := make([]string, 0, len(DefaultAliases))
	for _, c := range DefaultAliases {
		headers = append(headers, c.Aliases[offset%len(c.Aliases)])
	}
	return headers
}

func rowFor(headers []string, values map[string]string) []string {
	row := make([]string, len(headers))
	for i, h := range headers {
		row[i] = values[h]
	}
	return row
}

func TestMapColumnsAnyOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for offset := 0; offset < 5; offset++ {
		headers := fullHeaders(offset)
		rng.Shuffle(len(headers), func(i, j int) { headers[i], headers[j] = headers[j], headers[i] })

		values := make(map[string]string, len(headers))
		for _, h := range headers {
			values[h] = h + "-value"
		}
		table := &models.Table{Headers: headers, Rows: [][]string{rowFor(headers, values)}}

		canonical, err := MapColumns(table, DefaultAliases)
		require.NoError(t, err, "headers %q", headers)
		require.Equal(t, 1, canonical.Len())

		for _, f := range models.CanonicalFields {
			col, ok := canonical.Column(f)
			require.True(t, ok, "field %s unresolved", f)
			assert.Equal(t, textnorm.Normalize(headers[col]+"-value"), canonical.Value(0, f))
		}
	}
}

func TestMapColumnsFirstAliasWins(t *testing.T) {
	headers := append(fullHeaders(0), "Comm")
	table := &models.Table{
		Headers: headers,
		Rows:    [][]string{rowFor(headers, map[string]string{"Commission": "100", "Comm": "999"})},
	}

	canonical, err := MapColumns(table, DefaultAliases)
	require.NoError(t, err)
	assert.Equal(t, "100", canonical.Value(0, models.FieldCommission))
}

func TestMapColumnsReportsEveryMissingField(t *testing.T) {
	var headers []string
	for _, c := range DefaultAliases {
		if c.Field == models.FieldPAN || c.Field == models.FieldIFSC {
			continue
		}
		headers = append(headers, c.Aliases[0])
	}
	// Case and whitespace are significant.
	headers = append(headers, "pan", " IFSC")

	_, err := MapColumns(&models.Table{Headers: headers}, DefaultAliases)
	require.Error(t, err)

	var mce *MissingColumnsError
	require.True(t, errors.As(err, &mce))

	fields := make([]models.Field, 0, len(mce.Missing))
	for _, m := range mce.Missing {
		fields = append(fields, m.Field)
	}
	assert.Equal(t, []models.Field{models.FieldPAN, models.FieldIFSC}, fields)
	assert.Equal(t, []string{"Pancard", "PAN", "Pan Card"}, mce.Missing[0].Aliases)
	assert.Equal(t, headers, mce.Found)

	msg := err.Error()
	assert.Contains(t, msg, "Missing required columns:")
	assert.Contains(t, msg, "- pan (any of")
	assert.Contains(t, msg, "- ifsc (any of")
	assert.Contains(t, msg, "Found columns:")
}

func TestMapColumnsEmptyHeaderRow(t *testing.T) {
	_, err := MapColumns(&models.Table{}, DefaultAliases)

	var mce *MissingColumnsError
	require.True(t, errors.As(err, &mce))
	assert.Len(t, mce.Missing, len(models.CanonicalFields))
	assert.Empty(t, mce.Found)
}

func TestMapColumnsCleansCells(t *testing.T) {
	headers := fullHeaders(0)
	table := &models.Table{
		Headers: headers,
		Rows: [][]string{rowFor(headers, map[string]string{
			"Expert's name": "  Asha  Rao ",
			"Total Sales":   "NaN",
			"Commission":    "None",
			"Ac/No.":        "nan",
			"Notes":         "nan",
		})},
	}

	canonical, err := MapColumns(table, DefaultAliases)
	require.NoError(t, err)

	records := canonical.Records()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "Asha Rao", rec.ExpertName)
	assert.Equal(t, "", rec.TotalSales)
	assert.Equal(t, "", rec.Commission)
	assert.Equal(t, "", rec.AccountNo)
	assert.Equal(t, "nan", rec.Notes, "only numeric fields are cleared")
}

func TestMapColumnsRaggedRows(t *testing.T) {
	headers := fullHeaders(0)
	table := &models.Table{
		Headers: headers,
		Rows:    [][]string{{"1", "Asha"}},
	}

	canonical, err := MapColumns(table, DefaultAliases)
	require.NoError(t, err)
	rec := canonical.Records()[0]
	assert.Equal(t, "Asha", rec.ExpertName)
	assert.Equal(t, "", rec.PaymentStatus)
}

func TestMapColumnsLeavesInputUntouched(t *testing.T) {
	headers := fullHeaders(0)
	row := rowFor(headers, map[string]string{
		"Expert's name": "  Asha  Rao ",
		"Commission":    "None",
	})
	table := &models.Table{Headers: headers, Rows: [][]string{row}}
	before := append([]string(nil), row...)

	_, err := MapColumns(table, DefaultAliases)
	require.NoError(t, err)
	assert.Equal(t, before, table.Rows[0])
}
