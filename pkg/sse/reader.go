package sse

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize bounds a single SSE line. Tool inputs can be large.
const maxLineSize = 1 << 20

// Event is one dispatched Server-Sent Event.
type Event struct {
	// Event is the value of the event field, empty when absent.
	Event string

	// Data is the concatenation of the event's data fields, joined by "\n".
	Data string

	// ID is the value of the id field, empty when absent.
	ID string
}

// Reader parses events from an io.Reader.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next event. It returns io.EOF when the stream ends cleanly
// between events, and io.ErrUnexpectedEOF when it ends inside one.
func (r *Reader) Next() (*Event, error) {
	var (
		ev        Event
		dataLines []string
		seen      bool
	)

	for r.scanner.Scan() {
		line := r.scanner.Text()

		// A blank line dispatches the event.
		if line == "" {
			if seen {
				ev.Data = strings.Join(dataLines, "\n")
				return &ev, nil
			}
			continue
		}

		// Comment line, used for keepalives.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := parseField(line)
		switch field {
		case "event":
			ev.Event = value
			seen = true
		case "data":
			dataLines = append(dataLines, value)
			seen = true
		case "id":
			ev.ID = value
			seen = true
		}
		// retry and unknown fields are ignored.
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if seen {
		return nil, io.ErrUnexpectedEOF
	}
	return nil, io.EOF
}

func parseField(line string) (string, string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
