// Package csvimport parses bank-export CSV batches. Files are headerless
// with positional columns: date, activity, expense, income, total.
package csvimport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"easyaccounting/internal/core"
)

// Parse reads every line as one transaction row. Malformed amounts become 0;
// short lines are padded with empty columns. No row is ever dropped.
func Parse(r io.Reader) ([]core.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []core.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line: %w", err)
		}

		row := core.Row{
			Date:     field(record, 0),
			Activity: field(record, 1),
			Expense:  core.ParseAmount(field(record, 2)),
			Income:   core.ParseAmount(field(record, 3)),
		}
		total := core.ParseAmount(field(record, 4))
		row.Extra = map[string]json.RawMessage{
			"total": json.RawMessage(strconv.FormatFloat(total, 'f', -1, 64)),
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
