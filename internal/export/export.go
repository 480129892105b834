package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/FranksOps/scout/internal/results"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is a download format for the result table.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// columns defines the exported column order.
var columns = []string{"No.", "Title", "URL", "Content"}

// ParseFormat maps a user-supplied name to a Format. "excel" is accepted as
// an alias for xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q (want csv or excel)", ErrUnknownFormat, s)
}

// FileName is the default download name for the format.
func (f Format) FileName() string {
	return "search_results." + string(f)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Write serializes entries to w in the given format.
func Write(w io.Writer, format Format, entries []results.Entry) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, entries)
	case FormatXLSX:
		return WriteXLSX(w, entries)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}
