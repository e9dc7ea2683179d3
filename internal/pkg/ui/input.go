package ui

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/cancelreader"
)

// lineReader reads single lines from the prompter's input. It reads one byte
// at a time so nothing past the newline is consumed: the rest of stdin still
// belongs to the git or gh process that runs after the prompt.
type lineReader struct {
	r      io.Reader
	cancel func() bool
	close  func() error
}

func newLineReader(in io.Reader) *lineReader {
	cr, err := cancelreader.NewReader(in)
	if err != nil {
		// Regular files cannot be polled, but reads on them never block.
		return &lineReader{
			r:      in,
			cancel: func() bool { return false },
			close:  func() error { return nil },
		}
	}
	return &lineReader{r: cr, cancel: cr.Cancel, close: cr.Close}
}

// readLine returns the next line without its line ending. A final line
// without a newline is returned as is; io.EOF is returned only when no bytes
// were read.
func (l *lineReader) readLine() (string, error) {
	var (
		line []byte
		b    [1]byte
	)
	for {
		n, err := l.r.Read(b[:])
		if n > 0 {
			if b[0] == '\n' {
				return strings.TrimRight(string(line), "\r"), nil
			}
			line = append(line, b[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				return strings.TrimRight(string(line), "\r"), nil
			}
			return "", err
		}
	}
}

// isTerminal reports whether w writes to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
