package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type callRow struct {
	Proc string `json:"proc" yaml:"proc"`
	Name string `json:"name" yaml:"name"`
}

func TestPrinter(t *testing.T) {
	tbl := NewTable("Proc", "Name")
	tbl.AddRow("REMOVE", "report.txt")
	tbl.AddRow("RMDIR", "old")

	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable).Print(tbl))
		out := buf.String()
		assert.Contains(t, out, "PROC")
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "REMOVE")
		assert.Contains(t, out, "report.txt")
		assert.Contains(t, out, "RMDIR")
	})

	t.Run("TableFallsBackToJSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable).Print(callRow{"REMOVE", "a"}))
		assert.JSONEq(t, `{"proc":"REMOVE","name":"a"}`, buf.String())
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatJSON).Print([]callRow{{"REMOVE", "a"}}))
		assert.JSONEq(t, `[{"proc":"REMOVE","name":"a"}]`, buf.String())
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatYAML).Print(callRow{"REMOVE", "a"}))
		assert.Equal(t, "proc: REMOVE\nname: a\n", buf.String())
	})

	t.Run("Unknown", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, NewPrinter(&buf, Format("xml")).Print(tbl))
	})
}

func TestPrintKeyValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintKeyValues(&buf, [][2]string{{"xid", "0x0000002a"}, {"proc", "REMOVE"}}))
	out := buf.String()
	assert.Contains(t, out, "xid")
	assert.Contains(t, out, "0x0000002a")
	assert.Contains(t, out, "REMOVE")
}
