// Package csvfile reads the CSV exports downloaded from the backoffice API
// and the hand-maintained reference lists. Parsing is header-driven: columns
// are addressed by name, extra columns are ignored and missing ones read as
// empty strings.
package csvfile

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser walks one export row by row. The header row is consumed at
// construction; every exported column is addressable by its header name
// afterwards.
type Parser struct {
	reader    *csv.Reader
	headers   []string
	headerIdx map[string]int
	line      int
	dataRows  int
}

// NewParser prepares a parser over r. The exports come UTF-8 encoded,
// sometimes with a BOM; anything else is rejected up front rather than
// surfacing as garbled product names downstream.
func NewParser(r io.Reader) (*Parser, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if string(head) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	if err := checkEncoding(br); err != nil {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // exports vary in column count

	p := &Parser{reader: cr}
	if err := p.readHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// checkEncoding peeks at the start of the file and rejects non-UTF-8
// content. Windows-exported reference lists occasionally arrive UTF-16.
func checkEncoding(r *bufio.Reader) error {
	const peekSize = 4096
	content, err := r.Peek(peekSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

func (p *Parser) readHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	p.headerIdx = make(map[string]int, len(record))
	for i, h := range record {
		name := strings.TrimSpace(h)
		p.headers[i] = name
		p.headerIdx[name] = i
	}
	p.line = 1
	return nil
}

// Headers returns the column names in export order.
func (p *Parser) Headers() []string {
	return p.headers
}

// MissingHeaders returns the required column names the export lacks.
func (p *Parser) MissingHeaders(required ...string) []string {
	var missing []string
	for _, h := range required {
		if _, ok := p.headerIdx[h]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one data row keyed by header name. LineNumber counts from the
// top of the file, header included, for error messages.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the cell under the named column.
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the cell under the named column, or defaultVal
// when the cell is absent or blank.
func (r *Row) GetOrDefault(header, defaultVal string) string {
	if val, ok := r.Data[header]; ok && val != "" {
		return val
	}
	return defaultVal
}

// IsEmpty reports whether every cell in the row is blank.
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next data row. Short rows read missing cells as
// empty strings; io.EOF marks the end of the export.
func (p *Parser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		p.line++
		return nil, fmt.Errorf("error reading row %d: %w", p.line, err)
	}

	p.line++
	p.dataRows++

	row := &Row{
		LineNumber: p.line,
		Data:       make(map[string]string, len(p.headers)),
	}
	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}

// ReadAllRows drains the export, dropping rows that are entirely blank.
func (p *Parser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}

// TotalRows returns the count of data rows read so far.
func (p *Parser) TotalRows() int {
	return p.dataRows
}
