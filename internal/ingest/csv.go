package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"ddlgen/pkg/records"
)

// decodeCSV reads a delimited file with a header row. Every value stays a
// string; the coercer decides types downstream. Short rows leave trailing
// fields absent (null), long rows are a syntax error.
func decodeCSV(data []byte, comma rune, opt Options) (Batch, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Batch{}, fmt.Errorf("ingest: read csv header: %w", err)
	}
	if len(header) == 0 {
		return Batch{}, fmt.Errorf("ingest: csv has no header row")
	}
	seen := make(map[string]struct{}, len(header))
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		if header[i] == "" {
			continue
		}
		if _, dup := seen[header[i]]; dup {
			return Batch{}, fmt.Errorf("ingest: duplicate csv header %q", header[i])
		}
		seen[header[i]] = struct{}{}
	}

	var recs records.Batch
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Batch{}, fmt.Errorf("ingest: read csv: %w", err)
		}
		line++
		if len(row) > len(header) {
			return Batch{}, fmt.Errorf("ingest: csv line %d has %d fields, header has %d", line, len(row), len(header))
		}
		rec := make(records.Record, len(header))
		for i, v := range row {
			if header[i] == "" {
				continue
			}
			rec[header[i]] = v
		}
		recs = append(recs, rec)
		if opt.Limit > 0 && len(recs) >= opt.Limit {
			break
		}
	}
	return Batch{Records: recs}, nil
}
