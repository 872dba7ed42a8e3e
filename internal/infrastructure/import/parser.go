package csvimport

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSVParser reads UTF-8 tabular text line by line. Each line is split with
// ParseLine, so a malformed row degrades to best-effort fields instead of
// failing the whole file.
type CSVParser struct {
	delimiter  rune
	trimSpace  bool
	headerMap  map[string]int
	headers    []string
	currentRow int
	totalRows  int
	scanner    *bufio.Scanner
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithTrimSpace enables trimming of leading/trailing spaces from fields
func WithTrimSpace(trim bool) ParserOption {
	return func(p *CSVParser) {
		p.trimSpace = trim
	}
}

// NewCSVParser creates a new CSV parser from a reader
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter: ',',
		trimSpace: true,
		headerMap: make(map[string]int),
	}

	for _, opt := range opts {
		opt(parser)
	}

	bufReader := bufio.NewReader(r)

	// Detect and strip UTF-8 BOM (0xEF, 0xBB, 0xBF)
	content, err := bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		_, _ = bufReader.Discard(3)
	}

	if err := validateUTF8(bufReader); err != nil {
		return nil, err
	}

	parser.scanner = bufio.NewScanner(bufReader)
	parser.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return parser, nil
}

// validateUTF8 checks that the content is valid UTF-8
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}

	if len(content) == 0 {
		return ErrEmptyFile
	}

	// A full buffer may end mid-rune; trim the partial tail before checking
	if len(content) == checkSize {
		for i := 0; i < utf8.UTFMax && len(content) > 0; i++ {
			if r, _ := utf8.DecodeLastRune(content); r != utf8.RuneError {
				break
			}
			content = content[:len(content)-1]
		}
	}

	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}

	return nil
}

// ParseLine splits one line into fields. A field may be wrapped in double
// quotes; inside quotes the delimiter loses its splitting meaning and a
// doubled quote is an escaped literal quote. Unbalanced quotes never fail:
// the open field consumes the rest of the line.
func ParseLine(line string, delimiter rune) []string {
	fields := make([]string, 0, 8)
	var field strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case r == delimiter && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, field.String())

	return fields
}

func (p *CSVParser) parseLine(line string) []string {
	fields := ParseLine(line, p.delimiter)
	if p.trimSpace {
		for i, f := range fields {
			fields[i] = strings.TrimSpace(f)
		}
	}
	return fields
}

// nextLine advances to the next non-empty line, stripping a trailing CR
func (p *CSVParser) nextLine() (string, bool, error) {
	for p.scanner.Scan() {
		p.currentRow++
		line := strings.TrimSuffix(p.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, true, nil
	}
	if err := p.scanner.Err(); err != nil {
		return "", false, fmt.Errorf("error reading line %d: %w", p.currentRow+1, err)
	}
	return "", false, nil
}

// ParseHeader reads and parses the header row
func (p *CSVParser) ParseHeader() error {
	line, ok, err := p.nextLine()
	if err != nil {
		return err
	}
	if !ok {
		return ErrMissingHeader
	}

	record := p.parseLine(line)
	p.headers = make([]string, len(record))
	for i, h := range record {
		p.headers[i] = h
		p.headerMap[h] = i
	}

	if len(p.headers) == 0 {
		return ErrMissingHeader
	}

	return nil
}

// Headers returns the parsed header names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HeaderMap returns a map of header name to column index
func (p *CSVParser) HeaderMap() map[string]int {
	return p.headerMap
}

// Row represents a parsed CSV row with its data and line number
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the value for a column, or default if not present
func (r *Row) GetOrDefault(header, defaultVal string) string {
	if val, ok := r.Data[header]; ok && val != "" {
		return val
	}
	return defaultVal
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next row, io.EOF at end of input
func (p *CSVParser) ReadRow() (*Row, error) {
	line, ok, err := p.nextLine()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, io.EOF
	}

	record := p.parseLine(line)
	p.totalRows++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
		RawFields:  record,
	}

	// Map fields to headers; short rows pad with empty values
	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = record[i]
		} else {
			row.Data[header] = ""
		}
	}

	return row, nil
}

// ReadAllRows reads all remaining rows from the CSV
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// TotalRows returns the number of data rows read so far
func (p *CSVParser) TotalRows() int {
	return p.totalRows
}
