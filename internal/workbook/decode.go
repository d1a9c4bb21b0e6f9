// Package workbook reads and writes ticket spreadsheets.
//
// Supported containers are .xlsx (excelize), .xls (xlsReader) and .csv,
// which decodes as a single sheet. Every decode failure is a
// *core.FormatError.
package workbook

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

// Format is a supported container type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// csvSheetName names the implicit sheet of a CSV file.
const csvSheetName = "Sheet1"

// DetectFormat returns the container type for a file name's extension.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", &core.FormatError{
			FileName: fileName,
			Reason:   "only .xlsx, .xls and .csv files are accepted",
			Err:      core.ErrUnsupportedExtension,
		}
	}
}

// ParseFormat accepts "xlsx" or "csv" for export; anything else is an error.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX, "":
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Decode reads an uploaded file into a workbook. It satisfies core.DecodeFunc.
func Decode(ctx context.Context, fileName string, data []byte) (*core.Workbook, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sheets []core.RawSheet
	switch format {
	case FormatXLSX:
		sheets, err = decodeXLSX(data)
	case FormatXLS:
		sheets, err = decodeXLS(data)
	case FormatCSV:
		sheets, err = decodeCSV(data)
	}
	if err != nil {
		return nil, &core.FormatError{FileName: fileName, Reason: "corrupt or unreadable " + string(format), Err: err}
	}
	if len(sheets) == 0 {
		return nil, &core.FormatError{FileName: fileName, Reason: "no sheets", Err: core.ErrNoSheets}
	}

	return &core.Workbook{FileName: filepath.Base(fileName), Sheets: sheets}, nil
}

// parseValue turns exported text into a typed cell. Plain numbers become
// Number cells so they sort and convert to dates like native numerics.
// A number that float64 cannot hold exactly (long ticket ids) stays text.
func parseValue(s string) core.Cell {
	if strings.TrimSpace(s) == "" {
		return core.Cell{}
	}
	trimmed := strings.TrimSpace(s)
	if isPlainNumber(trimmed) {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == trimmed {
			return core.Number(f)
		}
	}
	return core.Text(s)
}

// isPlainNumber matches digits with an optional sign and fraction.
// Leading zeros mark identifiers ("007"), which stay text.
func isPlainNumber(s string) bool {
	if s == "" {
		return false
	}
	body := strings.TrimPrefix(s, "-")
	if body == "" {
		return false
	}
	intPart, frac, hasFrac := strings.Cut(body, ".")
	if intPart == "" || (hasFrac && frac == "") {
		return false
	}
	if len(intPart) > 1 && intPart[0] == '0' {
		return false
	}
	for _, part := range []string{intPart, frac} {
		for i := 0; i < len(part); i++ {
			if part[i] < '0' || part[i] > '9' {
				return false
			}
		}
	}
	return true
}

// uniqueSheetName appends " (n)" to repeated names.
func uniqueSheetName(name string, seen map[string]int) string {
	if name == "" {
		name = "Sheet" + strconv.Itoa(len(seen)+1)
	}
	seen[name]++
	if n := seen[name]; n > 1 {
		return fmt.Sprintf("%s (%d)", name, n)
	}
	return name
}
