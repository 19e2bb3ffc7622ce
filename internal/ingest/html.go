package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ddlgen/pkg/records"
)

// decodeHTML extracts records from the first <table> in the document. The
// header row comes from <thead> when present, otherwise from the first row.
// Cell text is trimmed; empty cells become nulls downstream.
func decodeHTML(data []byte, opt Options) (Batch, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return Batch{}, fmt.Errorf("ingest: parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return Batch{}, fmt.Errorf("ingest: html document has no table")
	}

	name := strings.TrimSpace(table.Find("caption").First().Text())

	var header []string
	headerRow := table.Find("thead tr").First()
	if headerRow.Length() == 0 {
		headerRow = table.Find("tr").First()
	}
	headerRow.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		header = append(header, strings.TrimSpace(cell.Text()))
	})
	if len(header) == 0 {
		return Batch{}, fmt.Errorf("ingest: html table has no header row")
	}

	var recs records.Batch
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if opt.Limit > 0 && len(recs) >= opt.Limit {
			return
		}
		if len(row.Nodes) > 0 && len(headerRow.Nodes) > 0 && row.Nodes[0] == headerRow.Nodes[0] {
			return
		}
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		rec := make(records.Record, len(header))
		cells.Each(func(i int, cell *goquery.Selection) {
			if i >= len(header) || header[i] == "" {
				return
			}
			rec[header[i]] = strings.TrimSpace(cell.Text())
		})
		if len(rec) > 0 {
			recs = append(recs, rec)
		}
	})
	return Batch{Name: name, Records: recs}, nil
}
