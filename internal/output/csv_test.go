package output

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVFormatter_RowPerOccurrence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(sampleReport(), &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{KindLeak, hashA, "billing", "billing/util.js", "Grace Hopper", "2024-05-06", "20", "2", "2", "56.57"}, rows[1])
	assert.Equal(t, "shop/util.js", rows[2][3])
	assert.Equal(t, "", rows[2][4])
	assert.Equal(t, []string{KindDuplicate, hashB, "billing", "billing/a.js", "", "", "8", "2", "1", "8.00"}, rows[3])
	assert.Equal(t, "billing/b.js", rows[4][3])
}

func TestCSVFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(nil, &buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCSVFormatter_QuotesCommas(t *testing.T) {
	r := sampleReport()
	r.CrossProjectLeakage[0].Occurrences[0].Author = "Hopper, Grace"

	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(r, &buf))
	assert.Contains(t, buf.String(), `"Hopper, Grace"`)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Hopper, Grace", rows[1][4])
}
