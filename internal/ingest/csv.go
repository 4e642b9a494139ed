package ingest

import (
	"encoding/csv"
	"fmt"
	"strings"

	"feedback-service/internal/models"
)

// Table is one parsed CSV file: the header row plus the data rows in
// original file order. The header is not repeated in Records.
type Table struct {
	Headers []string
	Records [][]string
}

// Parse reads decoded text as CSV. Ragged rows are allowed (the source
// exports are messy); a syntax error, a missing header or a file with no
// data rows is models.ErrMalformedInput.
func Parse(text string) (*Table, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: need a header row and at least one data row", models.ErrMalformedInput)
	}

	headers := rows[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	return &Table{Headers: headers, Records: rows[1:]}, nil
}
