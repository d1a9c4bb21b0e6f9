package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeCSV reads delimited text as one sheet. A UTF-8 BOM is skipped and
// files that are not valid UTF-8 are decoded as Windows-1252, the encoding
// Excel uses for "CSV" exports on Windows.
func decodeCSV(content []byte) ([]core.RawSheet, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), content)
		if err != nil {
			return nil, fmt.Errorf("decode windows-1252: %w", err)
		}
		content = decoded
	}

	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = detectDelimiter(content)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([]core.Row, len(records))
	for i, rec := range records {
		row := make(core.Row, len(rec))
		for c, v := range rec {
			row[c] = parseValue(v)
		}
		rows[i] = row
	}
	return []core.RawSheet{{Name: csvSheetName, Rows: rows}}, nil
}

// detectDelimiter picks ';' when the first line has more semicolons than
// commas (European Excel exports), otherwise ','.
func detectDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// EncodeCSV writes sheet as UTF-8 comma-separated text.
func EncodeCSV(w io.Writer, sheet core.RawSheet) error {
	cw := csv.NewWriter(w)
	for _, row := range sheet.Rows {
		rec := make([]string, len(row))
		for c, cell := range row {
			rec[c] = cell.String()
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
