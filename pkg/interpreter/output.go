package interpreter

import (
	"fmt"
	"io"
	"strings"
)

// outputLog records everything DISPLAY and INPUT produce and optionally
// streams it to a writer as it is produced.
type outputLog struct {
	buf    strings.Builder
	stream io.Writer
}

// write appends s to the log and streams it.
func (o *outputLog) write(s string) error {
	o.buf.WriteString(s)
	if o.stream == nil {
		return nil
	}
	if _, err := io.WriteString(o.stream, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// record appends s to the log without streaming it. INPUT prompts go through
// here because the host's line reader presents them.
func (o *outputLog) record(s string) {
	o.buf.WriteString(s)
}

func (o *outputLog) String() string {
	return o.buf.String()
}
