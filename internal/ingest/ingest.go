// Package ingest turns input files in any supported format into a
// records.Batch ready for inference.
//
// Format is decided by file extension first, and by content sniffing when the
// extension is unknown or the input is a stream. All decoders are best-effort
// about shape (records need not share fields) but strict about syntax: a
// malformed document is an error, not an empty batch.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ddlgen/pkg/records"
)

// Format identifies a supported input encoding.
type Format string

const (
	FormatUnknown Format = ""
	FormatJSON    Format = "json"
	FormatNDJSON  Format = "ndjson"
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatYAML    Format = "yaml"
	FormatHTML    Format = "html"
)

// Batch is the decoded result: the records plus a table name suggestion
// taken from the source (file stem, HTML table caption) when one exists.
type Batch struct {
	Name    string
	Records records.Batch
}

// Options controls ingestion.
type Options struct {
	// Format forces a decoder. FormatUnknown means detect.
	Format Format

	// Limit caps the number of records read; zero or negative means all.
	Limit int
}

var extFormats = map[string]Format{
	".json":   FormatJSON,
	".js":     FormatJSON,
	".ndjson": FormatNDJSON,
	".jsonl":  FormatNDJSON,
	".csv":    FormatCSV,
	".tsv":    FormatTSV,
	".tab":    FormatTSV,
	".yaml":   FormatYAML,
	".yml":    FormatYAML,
	".html":   FormatHTML,
	".htm":    FormatHTML,
}

// DetectPath maps a file extension to a format.
func DetectPath(path string) Format {
	return extFormats[strings.ToLower(filepath.Ext(path))]
}

// DetectContent sniffs a format from the document's leading bytes.
func DetectContent(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\uFEFF")
	switch {
	case len(trimmed) == 0:
		return FormatUnknown
	case trimmed[0] == '{' || trimmed[0] == '[':
		return FormatJSON
	case trimmed[0] == '<':
		return FormatHTML
	}
	// A YAML list or mapping at the top of the document.
	if bytes.HasPrefix(trimmed, []byte("- ")) || bytes.HasPrefix(trimmed, []byte("---")) {
		return FormatYAML
	}
	if line, _, _ := bytes.Cut(trimmed, []byte("\n")); bytes.ContainsRune(line, '\t') {
		return FormatTSV
	}
	return FormatCSV
}

// File reads and decodes one input file. "-" reads stdin.
func File(path string, opt Options) (Batch, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Batch{}, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	format := opt.Format
	if format == FormatUnknown && path != "-" {
		format = DetectPath(path)
	}
	if format == FormatUnknown {
		format = DetectContent(data)
	}
	b, err := Decode(data, format, opt)
	if err != nil {
		return Batch{}, err
	}
	if b.Name == "" {
		b.Name = tableNameFromPath(path)
	}
	return b, nil
}

// Decode parses data in the given format.
func Decode(data []byte, format Format, opt Options) (Batch, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data, opt)
	case FormatNDJSON:
		return decodeNDJSON(data, opt)
	case FormatCSV:
		return decodeCSV(data, ',', opt)
	case FormatTSV:
		return decodeCSV(data, '\t', opt)
	case FormatYAML:
		return decodeYAML(data, opt)
	case FormatHTML:
		return decodeHTML(data, opt)
	default:
		return Batch{}, fmt.Errorf("ingest: cannot determine input format")
	}
}

func tableNameFromPath(path string) string {
	if path == "" || path == "-" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func capRecords(n, limit int) int {
	if limit > 0 && limit < n {
		return limit
	}
	return n
}
