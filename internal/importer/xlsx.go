// Package importer parses the register spreadsheet used for bulk reseeding.
package importer

import (
	"io"
	"strings"
	"time"

	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Column order of the register sheet, one certification row each. The first
// row is a header and is skipped.
const (
	colGroupNumber = iota
	colPlantName
	colAddress
	colScheme
	colARegistration
	colAStatus
	colAValidFrom
	colAValidTo
	colBRegistration
	colBStatus
	colBValidFrom
	colBValidTo
	colModelList
	colStandardRef
	colRenewalStatus
	colAlarmNote
	colActionNote
	columnCount
)

// Parse reads the first sheet of an .xlsx register export into certification
// rows. Blank rows are dropped; unparseable dates are imported as absent
// rather than rejected, so a sloppy sheet never alarms spuriously.
func Parse(r io.Reader) ([]models.Certification, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open spreadsheet")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheet)
	}

	var certs []models.Certification
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		cert, ok := parseRow(row)
		if !ok {
			continue
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

func parseRow(row []string) (models.Certification, bool) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	blank := true
	for i := 0; i < columnCount; i++ {
		if cell(i) != "" {
			blank = false
			break
		}
	}
	if blank {
		return models.Certification{}, false
	}

	cert := models.Certification{
		GroupNumber:   cell(colGroupNumber),
		PlantName:     cell(colPlantName),
		Address:       cell(colAddress),
		Scheme:        parseScheme(cell(colScheme)),
		ModelList:     cell(colModelList),
		StandardRef:   cell(colStandardRef),
		RenewalStatus: cell(colRenewalStatus),
		AlarmNote:     cell(colAlarmNote),
		ActionNote:    cell(colActionNote),
		SchemeA: models.SchemeRecord{
			RegistrationNumber: cell(colARegistration),
			Status:             parseStatus(cell(colAStatus)),
			ValidFrom:          parseDate(cell(colAValidFrom)),
			ValidTo:            parseDate(cell(colAValidTo)),
		},
		SchemeB: models.SchemeRecord{
			RegistrationNumber: cell(colBRegistration),
			Status:             parseStatus(cell(colBStatus)),
			ValidFrom:          parseDate(cell(colBValidFrom)),
			ValidTo:            parseDate(cell(colBValidTo)),
		},
	}
	return cert, true
}

func parseScheme(raw string) models.Scheme {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SCHEME_A", "A":
		return models.SchemeA
	case "SCHEME_B", "B":
		return models.SchemeB
	default:
		return models.SchemeBoth
	}
}

func parseStatus(raw string) models.CertStatus {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", "_")) {
	case "active":
		return models.StatusActive
	case "under_process", "underprocess":
		return models.StatusUnderProcess
	case "expired":
		return models.StatusExpired
	case "pending":
		return models.StatusPending
	default:
		return ""
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"02 Jan 2006",
	"1/2/06 15:04", // excelize default date rendering
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
