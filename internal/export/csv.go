package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/FranksOps/scout/internal/results"
)

// WriteCSV writes a UTF-8, comma-separated table with a header row.
func WriteCSV(w io.Writer, entries []results.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}

	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.No),
			e.Title,
			e.URL,
			e.Content,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv row %d: %w", e.No, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}
