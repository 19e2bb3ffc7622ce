package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"ddlgen/pkg/records"
)

// decodeYAML accepts the same shapes as JSON (sequence of mappings, envelope
// mapping, single mapping) and additionally multi-document streams, one
// record or sequence per document.
func decodeYAML(data []byte, opt Options) (Batch, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var (
		recs records.Batch
		name string
	)
	for doc := 0; ; doc++ {
		var root any
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Batch{}, fmt.Errorf("ingest: parse yaml document %d: %w", doc+1, err)
		}
		switch t := root.(type) {
		case nil:
			continue
		case []any:
			more, err := yamlObjectSlice(t)
			if err != nil {
				return Batch{}, err
			}
			recs = append(recs, more...)
		case map[string]any:
			if n, more, ok := envelopeRecords(t); ok {
				if name == "" {
					name = n
				}
				recs = append(recs, more...)
			} else {
				recs = append(recs, records.Record(t))
			}
		default:
			return Batch{}, fmt.Errorf("ingest: yaml document %d is %T, want mapping or sequence", doc+1, root)
		}
		if opt.Limit > 0 && len(recs) >= opt.Limit {
			break
		}
	}
	return Batch{Name: name, Records: recs[:capRecords(len(recs), opt.Limit)]}, nil
}

func yamlObjectSlice(arr []any) (records.Batch, error) {
	recs := make(records.Batch, 0, len(arr))
	for i, e := range arr {
		obj, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ingest: yaml sequence element %d is %T, want mapping", i, e)
		}
		recs = append(recs, records.Record(obj))
	}
	return recs, nil
}
