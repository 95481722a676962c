// Package layout reads the fixed-position device export: a metadata line with
// the subject name, a header row at a fixed offset and delimited data after it.
package layout

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
)

// UnknownSubject is returned when no subject name can be extracted.
const UnknownSubject = "Unknown"

// Default 1-indexed line positions of the device export.
const (
	DefaultNameLine   = 3
	DefaultHeaderLine = 5
)

var playerNameRe = regexp.MustCompile(`(?i)Player\s*Name\s*[:,]?\s*(.*)$`)

// Reader locates metadata and tabular data inside decoded text.
type Reader struct {
	nameLine   int
	headerLine int
	sniffLines int
	delimiters []rune
}

// NewReader creates a Reader with the device defaults.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		nameLine:   DefaultNameLine,
		headerLine: DefaultHeaderLine,
		sniffLines: DefaultSniffLines,
		delimiters: DefaultDelimiters,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Delimiter detects the delimiter of text from the header region, the same
// sample ParseTable splits on. Text shorter than the header offset is
// sampled whole.
func (r *Reader) Delimiter(text string) rune {
	return r.detect(splitLines(text))
}

func (r *Reader) detect(lines []string) rune {
	sample := lines
	if hi := r.headerLine - 1; hi >= 0 && hi < len(lines) {
		sample = lines[hi:]
	}
	return DetectDelimiter(sample, r.delimiters, r.sniffLines)
}

// ExtractSubjectName returns the second field of the name line, trimmed of
// quotes and whitespace. The line is split on the file's delimiter, so a
// comma inside a tab or semicolon separated name is kept. It never fails;
// UnknownSubject covers a missing line, a malformed line and an empty field.
func (r *Reader) ExtractSubjectName(text string) string {
	lines := splitLines(text)
	if len(lines) < r.nameLine {
		return UnknownSubject
	}
	line := lines[r.nameLine-1]
	if strings.TrimSpace(line) == "" {
		return UnknownSubject
	}

	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = r.detect(lines)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	fields, err := cr.Read()
	if err != nil {
		return UnknownSubject
	}

	var name string
	switch {
	case len(fields) >= 2:
		name = fields[1]
	case len(fields) == 1:
		// older exports: `Player Name: X` in a single cell
		if m := playerNameRe.FindStringSubmatch(cleanField(fields[0])); m != nil {
			name = m[1]
		}
	}
	if name = cleanField(name); name == "" {
		return UnknownSubject
	}
	return name
}

// ParseTable skips the lines before the header offset, reads the header row
// and parses the rest with the detected delimiter. Empty rows and empty
// columns are dropped.
func (r *Reader) ParseTable(text string) (*Table, error) {
	lines := splitLines(text)
	hi := r.headerLine - 1
	if len(lines) <= hi {
		return nil, fmt.Errorf("%w: header expected on line %d but input has %d lines", ErrLayout, r.headerLine, len(lines))
	}
	if strings.TrimSpace(lines[hi]) == "" {
		return nil, fmt.Errorf("%w: header line %d is blank", ErrLayout, r.headerLine)
	}

	region := lines[hi:]
	delim := r.detect(lines)
	cr := csv.NewReader(strings.NewReader(strings.Join(region, "\n")))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayout, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: header line %d is blank", ErrLayout, r.headerLine)
	}

	header := records[0]
	data := records[1:]
	width := len(header)
	for _, row := range data {
		width = max(width, len(row))
	}

	headers := make([]string, width)
	for j := range headers {
		if j < len(header) {
			headers[j] = cleanField(header[j])
		}
	}
	if allBlank(headers) {
		return nil, fmt.Errorf("%w: header line %d has no column names", ErrLayout, r.headerLine)
	}

	rows := make([][]string, 0, len(data))
	for _, row := range data {
		cells := make([]string, width)
		for j := range row {
			cells[j] = strings.TrimSpace(row[j])
		}
		if allBlank(cells) {
			continue
		}
		rows = append(rows, cells)
	}

	keep := make([]int, 0, width)
	for j := 0; j < width; j++ {
		empty := true
		for _, row := range rows {
			if row[j] != "" {
				empty = false
				break
			}
		}
		switch {
		case len(rows) > 0 && empty:
			continue
		case len(rows) == 0 && headers[j] == "":
			continue
		}
		if headers[j] == "" {
			headers[j] = fmt.Sprintf("Unnamed: %d", j)
		}
		keep = append(keep, j)
	}

	t := &Table{delimiter: delim}
	t.headers = make([]string, len(keep))
	for k, j := range keep {
		t.headers[k] = headers[j]
	}
	t.rows = make([][]string, len(rows))
	for i, row := range rows {
		out := make([]string, len(keep))
		for k, j := range keep {
			out[k] = row[j]
		}
		t.rows[i] = out
	}
	return t, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func cleanField(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"'`)
	return strings.TrimSpace(v)
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
