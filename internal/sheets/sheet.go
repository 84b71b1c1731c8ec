package sheets

import (
	"bytes"
	"encoding/csv"
)

// Ref identifies one tab of the source spreadsheet
type Ref struct {
	Key  string
	GID  string
	Name string
}

// Sheet holds the parsed CSV export of one tab. Header is the first row; Rows
// are the remaining rows in positional form.
type Sheet struct {
	Ref    Ref
	Header []string
	Rows   [][]string
}

// Records returns the rows keyed by header name. Cells missing from short rows
// map to "", cells beyond the header are dropped, and for duplicated headers
// the leftmost column wins.
func (s *Sheet) Records() []map[string]string {
	records := make([]map[string]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		record := make(map[string]string, len(s.Header))
		for i, h := range s.Header {
			if _, dup := record[h]; dup {
				continue
			}
			if i < len(row) {
				record[h] = row[i]
			} else {
				record[h] = ""
			}
		}
		records = append(records, record)
	}
	return records
}

var utf8BOM = []byte("\xef\xbb\xbf")

// parseCSV splits a CSV body into header and data rows. Blank lines are
// skipped; rows may have differing lengths.
func parseCSV(body []byte) (header []string, rows [][]string, err error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, utf8BOM)))
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, [][]string{}, nil
	}
	return all[0], all[1:], nil
}
