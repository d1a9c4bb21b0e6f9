package workbook

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

// Encode writes sheet in the given format.
func Encode(w io.Writer, sheet core.RawSheet, format Format) error {
	switch format {
	case FormatXLSX:
		return EncodeXLSX(w, sheet)
	case FormatCSV:
		return EncodeCSV(w, sheet)
	default:
		return fmt.Errorf("cannot encode %s", format)
	}
}

// ContentType returns the MIME type for an export format.
func ContentType(format Format) string {
	if format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ExportName derives a download name: "tickets.xls" → "tickets-edited.xlsx".
func ExportName(fileName string, format Format) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	if base == "" || base == "." {
		base = "tickets"
	}
	return base + "-edited." + string(format)
}

// WriteFile encodes sheet to path, choosing the format from its extension.
func WriteFile(path string, sheet core.RawSheet) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	if format == FormatXLS {
		return fmt.Errorf("%s: writing .xls is not supported, use .xlsx or .csv", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, sheet, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads and decodes a workbook from disk.
func ReadFile(ctx context.Context, path string) (*core.Workbook, error) {
	if _, err := DetectFormat(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(ctx, path, data)
}
