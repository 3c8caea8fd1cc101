package ascii

import (
	"bufio"
	"bytes"
)

// Splitter tokenizes the byte stream received from the bus into protocol
// lines. It uses the signature of bufio.SplitFunc so it can be directly
// used with bufio.Scanner.
//
// Devices terminate every message with CRLF, but some serial adapters eat
// the carriage return, so lines are split on LF and a preceding CR is
// consumed without being returned as part of the token.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining unterminated bytes are returned as the final
// token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, bytes.TrimSuffix(data[:i], []byte("\r")), nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter
