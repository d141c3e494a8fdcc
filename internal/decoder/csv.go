// Package decoder turns the delimited events source file into a stream of
// well-formed RawEvents. Malformed rows are rejected here, before they can
// reach the aggregator.
package decoder

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	v1 "github.com/HonRosie/probable-octo-tribble/internal/api/v1"
)

// Column layout of the events source file. There is no header row.
const (
	colCustomerID = 0
	colEventType  = 1
	colTxnID      = 2
	colTimestamp  = 3

	fieldCount = 4
)

// timestampLayouts are tried in order before falling back to the lenient
// parser. The source emits RFC 3339-style timestamps with a space separator,
// optional fractional seconds, and an offset with or without a colon.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05.999999-0700",
	time.RFC3339Nano,
}

// ParseTimestamp parses a source timestamp and normalizes it to UTC.
// Offsets shortened to fewer than four digits (e.g. "+00") are padded to a
// full "+0000" before parsing, since some rows in the source carry them.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	normalized := padShortOffset(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t.UTC(), nil
		}
	}

	// Lenient fallback for the occasional row in a format the fast path
	// does not recognize.
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// padShortOffset extends a trailing "+HH"/"-HH" style offset to four digits.
// Offsets already carrying a colon or four digits pass through unchanged.
func padShortOffset(s string) string {
	idx := strings.LastIndexAny(s, "+-")
	if idx <= 10 { // a '-' at or before index 10 belongs to the date part
		return s
	}

	offset := s[idx+1:]
	if strings.Contains(offset, ":") || len(offset) >= 4 || len(offset) == 0 {
		return s
	}
	return s + strings.Repeat("0", 4-len(offset))
}

// Decode reads delimited event rows from r and passes each decoded RawEvent
// to fn. Decoding stops at the first malformed row or the first error
// returned by fn.
func Decode(ctx context.Context, r io.Reader, fn func(*v1.RawEvent) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = fieldCount

	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read events row %d: %w", row, err)
		}

		ts, err := ParseTimestamp(record[colTimestamp])
		if err != nil {
			return fmt.Errorf("events row %d: %w", row, err)
		}

		evt := &v1.RawEvent{
			CustomerID: strings.TrimSpace(record[colCustomerID]),
			Timestamp:  ts,
		}
		if err := evt.Validate(); err != nil {
			return fmt.Errorf("events row %d: %w", row, err)
		}

		if err := fn(evt); err != nil {
			return err
		}
	}
}

// CSVSource streams RawEvents out of a delimited events file.
// It implements ingestion.EventSource.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for the events file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Events opens the file and decodes every row through fn.
func (c *CSVSource) Events(ctx context.Context, fn func(*v1.RawEvent) error) error {
	f, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	return Decode(ctx, f, fn)
}
