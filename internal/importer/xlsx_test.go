package importer

import (
	"bytes"
	"testing"

	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildSheet(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellStr(sheet, cell, val))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

var header = []string{
	"Group No.", "Plant", "Address", "Scheme",
	"A Reg. No.", "A Status", "A Valid From", "A Valid To",
	"B Reg. No.", "B Status", "B Valid From", "B Valid To",
	"Models", "Standard", "Renewal Status", "Alarm", "Action",
}

func TestParseRegister(t *testing.T) {
	buf := buildSheet(t, [][]string{
		header,
		{"G-1", "Coimbatore Plant", "Industrial Estate", "A",
			"R-1001", "Active", "2024-06-01", "2026-05-31",
			"", "", "", "",
			"MX-1", "IS 302-2-30", "In progress", "", "renew early"},
		{"", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		{"G-2", "Pune Plant", "MIDC", "both",
			"R-2001", "Under Process", "01-07-2024", "30/06/2026",
			"R-2002", "expired", "", "not a date",
			"", "", "", "", ""},
	})

	certs, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, certs, 2)

	first := certs[0]
	assert.Equal(t, "G-1", first.GroupNumber)
	assert.Equal(t, models.SchemeA, first.Scheme)
	assert.Equal(t, "R-1001", first.SchemeA.RegistrationNumber)
	assert.Equal(t, models.StatusActive, first.SchemeA.Status)
	require.NotNil(t, first.SchemeA.ValidTo)
	assert.Equal(t, "2026-05-31", first.SchemeA.ValidTo.Format("2006-01-02"))
	assert.Empty(t, first.SchemeB.RegistrationNumber)

	second := certs[1]
	assert.Equal(t, models.SchemeBoth, second.Scheme)
	assert.Equal(t, models.StatusUnderProcess, second.SchemeA.Status)
	require.NotNil(t, second.SchemeA.ValidFrom)
	assert.Equal(t, "2024-07-01", second.SchemeA.ValidFrom.Format("2006-01-02"))
	require.NotNil(t, second.SchemeA.ValidTo)
	assert.Equal(t, models.StatusExpired, second.SchemeB.Status)
	// Unparseable date imported as absent, not rejected.
	assert.Nil(t, second.SchemeB.ValidTo)
}

func TestParseHeaderOnly(t *testing.T) {
	buf := buildSheet(t, [][]string{header})
	certs, err := Parse(buf)
	require.NoError(t, err)
	assert.Empty(t, certs)
}

func TestParseNotASpreadsheet(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("group,plant\nG-1,Coimbatore")))
	assert.Error(t, err)
}

func TestParseSchemeAliases(t *testing.T) {
	assert.Equal(t, models.SchemeA, parseScheme("scheme_a"))
	assert.Equal(t, models.SchemeB, parseScheme(" B "))
	assert.Equal(t, models.SchemeBoth, parseScheme("A + B"))
	assert.Equal(t, models.SchemeBoth, parseScheme(""))
}
