package parser

// isNewlineChar returns whether the given character is '\n' or '\r'.
func isNewlineChar(b byte) bool {
	return b == '\n' || b == '\r'
}

// NewlineIndex returns the index of the first occurrence of a newline sequence (\n, \r, or \r\n).
// It also returns the sequence's length. If no sequence is found, index is equal to len(s)
// and length is 0.
func NewlineIndex(s string) (index, length int) {
	for l := len(s); index < l; index++ {
		b := s[index]

		if isNewlineChar(b) {
			length++
			if b == '\r' && index < l-1 && s[index+1] == '\n' {
				length++
			}

			break
		}
	}

	return
}

// A Chunk of data that may or may not end in a newline.
type Chunk struct {
	// Not owned by the Chunk instance.
	Data string
	// Whether the Data slice ends with a newline sequence or not.
	HasNewline bool
}

// Line returns the chunk's data without the trailing newline sequence.
func (c Chunk) Line() string {
	return trimNewline(c.Data)
}

// NextChunk retrieves the next Chunk of data from the given string
// along with the data remaining after the returned Chunk.
// If the returned chunk is the last one, len(remaining) will be 0.
func NextChunk(s string) (Chunk, string) {
	index, length := NewlineIndex(s)
	if length == 0 {
		return Chunk{Data: s}, ""
	}

	end := index + length

	return Chunk{Data: s[:end], HasNewline: true}, s[end:]
}

// Lines splits s on every newline sequence and calls fn with each line, in order.
// A trailing newline does not produce an empty final line and an empty input
// produces no lines at all.
func Lines(s string, fn func(line string)) {
	for s != "" {
		var c Chunk
		c, s = NextChunk(s)
		fn(c.Line())
	}
}

// IsSingleLine reports whether s contains no newline sequences.
func IsSingleLine(s string) bool {
	_, length := NewlineIndex(s)
	return length == 0
}
