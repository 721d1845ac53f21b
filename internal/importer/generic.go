package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/money"
)

// GenericParser parses a plain "date,description,amount" CSV with an
// ISO date column, in header order.
type GenericParser struct{}

const genericNumFields = 3

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads a generic CSV and returns Rows.
func (p *GenericParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = genericNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	start := 0
	if strings.EqualFold(strings.TrimSpace(records[0][0]), "date") {
		start = 1
	}

	var rows []Row
	for i, rec := range records[start:] {
		date, err := model.ParseDate(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", start+i+1, err)
		}
		cents, err := money.ParseCents(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", start+i+1, err)
		}
		rows = append(rows, Row{
			Date:        date,
			Description: strings.TrimSpace(rec[1]),
			Amount:      cents,
		})
	}
	return rows, nil
}
