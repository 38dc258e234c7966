package interp

import (
	"bufio"
	"io"
	"os"
)

// Runtime abstracts the host facilities the interpreted program's host
// builtins (putchar, printf, exit, ...) reach through, so tests can
// capture output instead of writing to the real stdout/stdin.
type Runtime interface {
	Stdout() io.Writer
	Stdin() *bufio.Reader
}

// DefaultRuntime wires Stdout/Stdin to the process's own streams.
type DefaultRuntime struct {
	stdout io.Writer
	stdin  *bufio.Reader
}

// NewDefaultRuntime returns a Runtime backed by os.Stdout/os.Stdin.
func NewDefaultRuntime() *DefaultRuntime {
	return &DefaultRuntime{stdout: os.Stdout, stdin: bufio.NewReader(os.Stdin)}
}

func (r *DefaultRuntime) Stdout() io.Writer    { return r.stdout }
func (r *DefaultRuntime) Stdin() *bufio.Reader { return r.stdin }

// CapturingRuntime sends output to a caller-supplied writer (tests pass a
// bytes.Buffer) instead of the process's stdout.
type CapturingRuntime struct {
	Out   io.Writer
	stdin *bufio.Reader
}

// NewCapturingRuntime returns a Runtime that writes to out and reads no
// stdin input (every read reports EOF).
func NewCapturingRuntime(out io.Writer) *CapturingRuntime {
	return &CapturingRuntime{Out: out, stdin: bufio.NewReader(new(nullReader))}
}

func (r *CapturingRuntime) Stdout() io.Writer    { return r.Out }
func (r *CapturingRuntime) Stdin() *bufio.Reader { return r.stdin }

type nullReader struct{}

func (nullReader) Read([]byte) (int, error) { return 0, io.EOF }
