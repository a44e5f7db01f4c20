package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	table, err := Parse("name,email,unit\nJohn,j@x.com,4A\nJane,jane@x.com,4B")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "email", "unit"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "John", table.Rows[0]["name"])
	assert.Equal(t, "jane@x.com", table.Rows[1]["email"])
	assert.Equal(t, "4B", table.Rows[1]["unit"])
}

func TestParseTrimsQuotesAndWhitespace(t *testing.T) {
	table, err := Parse(`name, city
"Oak House" ,  Berlin `)
	require.NoError(t, err)
	assert.Equal(t, "Oak House", table.Rows[0]["name"])
	assert.Equal(t, "Berlin", table.Rows[0]["city"])
}

func TestParsePadsAndDropsFields(t *testing.T) {
	table, err := Parse("a,b,c\n1,2\n1,2,3,4")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	// missing trailing field defaults to empty
	assert.Equal(t, "", table.Rows[0]["c"])
	// extra fields beyond the header count are dropped
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3"}, table.Rows[1])
}

func TestParseDiscardsBlankAndEmptyRows(t *testing.T) {
	table, err := Parse("a,b\n\n  \nx,y\n,\n")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "x", table.Rows[0]["a"])
}

func TestParseHeaderOnlyFails(t *testing.T) {
	_, err := Parse("name,email")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseEmptyInputFails(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
}

func TestParseRoundTrip(t *testing.T) {
	headers := []string{"name", "unit", "rent"}
	rows := []map[string]string{
		{"name": "John", "unit": "4A", "rent": "1200"},
		{"name": "Jane", "unit": "4B", "rent": "1350"},
	}

	table, err := Parse(Serialize(headers, rows))
	require.NoError(t, err)
	assert.Equal(t, headers, table.Headers)
	assert.Equal(t, rows, table.Rows)
}

func TestDuplicateHeaders(t *testing.T) {
	assert.Nil(t, DuplicateHeaders([]string{"a", "b", "c"}))
	assert.Equal(t, []string{"name"}, DuplicateHeaders([]string{"name", "email", "name"}))
}
