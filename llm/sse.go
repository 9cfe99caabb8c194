package llm

import (
	"bufio"
	"bytes"
	"io"
)

// SSEDecoder reads Server-Sent Events from a streaming response body.
// Only data fields matter for the chat-completions stream; event names and
// comments are skipped.
type SSEDecoder struct {
	scanner *bufio.Scanner
	data    []byte
}

func NewSSEDecoder(r io.Reader) *SSEDecoder {
	scanner := bufio.NewScanner(r)
	// Completion chunks can exceed the default scanner buffer when a tool
	// call carries large arguments.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &SSEDecoder{scanner: scanner}
}

// Next advances to the next event. It returns false when the stream is
// exhausted or a read error occurred; check Err afterwards.
func (d *SSEDecoder) Next() bool {
	buf := bytes.NewBuffer(nil)
	dispatched := false

	for d.scanner.Scan() {
		line := d.scanner.Bytes()

		// Empty line terminates the current event.
		if len(line) == 0 {
			if dispatched {
				d.data = buf.Bytes()
				return true
			}
			continue
		}

		name, value, _ := bytes.Cut(line, []byte(":"))
		if len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}

		if string(name) == "data" {
			buf.Write(value)
			dispatched = true
		}
		// ":" comments and "event:" names carry nothing we use.
	}

	if dispatched {
		d.data = buf.Bytes()
		return true
	}
	return false
}

// Data returns the payload of the current event.
func (d *SSEDecoder) Data() []byte {
	return d.data
}

func (d *SSEDecoder) Err() error {
	return d.scanner.Err()
}
