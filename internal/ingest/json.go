package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"ddlgen/pkg/records"
)

// decodeJSON accepts three document shapes:
//
//   - a root array of objects, one record per element
//   - an envelope object whose first array-of-objects field holds the
//     records (the array field name becomes the table name suggestion)
//   - a single object, which becomes a batch of one
//
// Numbers decode as json.Number so integer/decimal distinctions survive into
// coercion.
func decodeJSON(data []byte, opt Options) (Batch, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return Batch{}, fmt.Errorf("ingest: parse json: %w", err)
	}

	switch t := root.(type) {
	case []any:
		recs, err := objectSlice(t)
		if err != nil {
			return Batch{}, err
		}
		return Batch{Records: recs[:capRecords(len(recs), opt.Limit)]}, nil

	case map[string]any:
		if name, recs, ok := envelopeRecords(t); ok {
			return Batch{Name: name, Records: recs[:capRecords(len(recs), opt.Limit)]}, nil
		}
		return Batch{Records: records.Batch{records.Record(t)}}, nil

	default:
		return Batch{}, fmt.Errorf("ingest: json root is %T, want object or array", root)
	}
}

// envelopeRecords finds the first field of obj (in sorted order, for
// determinism) that holds a non-empty array of objects.
func envelopeRecords(obj map[string]any) (string, records.Batch, bool) {
	type hit struct {
		name string
		recs records.Batch
	}
	var best *hit
	for name, v := range obj {
		arr, ok := v.([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		recs, err := objectSlice(arr)
		if err != nil {
			continue
		}
		if best == nil || name < best.name {
			best = &hit{name: name, recs: recs}
		}
	}
	if best == nil {
		return "", nil, false
	}
	return best.name, best.recs, true
}

func objectSlice(arr []any) (records.Batch, error) {
	recs := make(records.Batch, 0, len(arr))
	for i, e := range arr {
		obj, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ingest: json array element %d is %T, want object", i, e)
		}
		recs = append(recs, records.Record(obj))
	}
	return recs, nil
}

// decodeNDJSON reads one object per line, skipping blank lines.
func decodeNDJSON(data []byte, opt Options) (Batch, error) {
	var recs records.Batch
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return Batch{}, fmt.Errorf("ingest: parse ndjson line %d: %w", line, err)
		}
		recs = append(recs, records.Record(obj))
		if opt.Limit > 0 && len(recs) >= opt.Limit {
			break
		}
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return Batch{}, fmt.Errorf("ingest: scan ndjson: %w", err)
	}
	return Batch{Records: recs}, nil
}
