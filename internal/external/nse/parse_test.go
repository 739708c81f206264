package nse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMasterCSV(t *testing.T) {
	csv := "SYMBOL,NAME OF COMPANY, SERIES, DATE OF LISTING\n" +
		"RELIANCE,Reliance Industries Limited,EQ,29-NOV-1995\n" +
		"TCS,Tata Consultancy Services Limited,EQ,25-AUG-2004\n" +
		"SOMESME,Some SME Limited,BE,01-JAN-2020\n"

	symbols, err := ParseMasterCSV([]byte(csv))
	require.NoError(t, err)
	require.Len(t, symbols, 3)

	assert.Equal(t, "RELIANCE", symbols[0].Ticker)
	assert.Equal(t, "Reliance Industries Limited", symbols[0].Name)
	assert.Equal(t, "EQ", symbols[0].Series)
	assert.Equal(t, "BE", symbols[2].Series)
}

func TestParseMasterCSV_SkipsBlankAndDuplicateRows(t *testing.T) {
	csv := "SYMBOL,SERIES\n" +
		"RELIANCE,EQ\n" +
		",EQ\n" +
		"TCS,\n" +
		"RELIANCE,BE\n" +
		"INFY,eq\n"

	symbols, err := ParseMasterCSV([]byte(csv))
	require.NoError(t, err)
	require.Len(t, symbols, 2)

	// First occurrence wins for duplicates, series is normalized upper
	assert.Equal(t, "RELIANCE", symbols[0].Ticker)
	assert.Equal(t, "EQ", symbols[0].Series)
	assert.Equal(t, "INFY", symbols[1].Ticker)
	assert.Equal(t, "EQ", symbols[1].Series)
}

func TestParseMasterCSV_BhavHeaderVariant(t *testing.T) {
	// The bhav dump spells headers differently and pads fields
	csv := "SYMBOL, SERIES, DATE1, PREV_CLOSE\n" +
		"RELIANCE, EQ, 28-Aug-2026, 2950.10\n"

	symbols, err := ParseMasterCSV([]byte(csv))
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "RELIANCE", symbols[0].Ticker)
	assert.Equal(t, "EQ", symbols[0].Series)
}

func TestParseMasterCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty input", ""},
		{"header only", "SYMBOL,SERIES\n"},
		{"missing columns", "FOO,BAR\nx,y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMasterCSV([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
