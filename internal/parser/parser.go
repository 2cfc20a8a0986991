package parser

import (
	"bufio"
	"bytes"
	"io"
)

// newSplitFunc creates a split function for a bufio.Scanner that splits a sequence of
// bytes into events. Each event ends with two consecutive newline sequences,
// where a newline sequence is defined as either "\n", "\r", or "\r\n".
//
// This split function also removes the BOM sequence from the first event, if it exists.
func newSplitFunc() bufio.SplitFunc {
	isFirstToken := true

	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if len(data) == 0 {
			return 0, nil, nil
		}

		var start, index, endlineLen int
		for {
			index, endlineLen = NewlineIndex(string(data[advance:]))
			advance += index + endlineLen
			if index == 0 {
				// Blank lines before an event are skipped.
				start += endlineLen
			}
			// Either the end of data or a second newline after a non-blank line, which closes the event.
			if advance == len(data) || (isNewlineChar(data[advance]) && index > 0) {
				break
			}
		}

		if l := len(data); advance == l && !atEOF {
			return 0, nil, nil
		} else if advance < l {
			advance++
			if advance < l && data[advance-1] == '\r' && data[advance] == '\n' {
				advance++
			}
		}

		token = data[start:advance]
		if isFirstToken {
			token = bytes.TrimPrefix(token, []byte("\xEF\xBB\xBF"))
			isFirstToken = false
		}

		return advance, token, nil
	}
}

// Parser extracts fields from a reader. Reading is buffered using a bufio.Scanner.
// The Parser also removes the UTF-8 BOM if it exists.
type Parser struct {
	inputScanner *bufio.Scanner
	fieldScanner *FieldParser
}

// Next parses a single field from the reader. It returns false when there are no more fields to parse.
func (r *Parser) Next(f *Field) bool {
	for !r.fieldScanner.Next(f) {
		if r.fieldScanner.Err() != nil || !r.inputScanner.Scan() {
			return false
		}

		// Text allocates once per event, so returned fields own their memory.
		r.fieldScanner.Reset(r.inputScanner.Text())
	}

	return true
}

// Err returns the last read error.
func (r *Parser) Err() error {
	if err := r.inputScanner.Err(); err != nil {
		return err
	}
	return r.fieldScanner.Err()
}

// Buffer sets the initial buffer and the maximum event size of the underlying scanner.
func (r *Parser) Buffer(buf []byte, maxSize int) {
	r.inputScanner.Buffer(buf, maxSize)
}

// New returns a Parser that extracts fields from a reader.
func New(r io.Reader) *Parser {
	sc := bufio.NewScanner(r)
	sc.Split(newSplitFunc())

	return &Parser{
		inputScanner: sc,
		fieldScanner: NewFieldParser(""),
	}
}
