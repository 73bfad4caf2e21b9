package draw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Escape sequences used by the frame loop.
const (
	ClearScreen = "\033[H\033[2J"
	HideCursor  = "\033[?25l"
	ShowCursor  = "\033[?25h"
)

// segmentSize keeps each write inside one TCP segment when the game runs over SSH.
const segmentSize = 1400

// Frame collects one screen update and sends it in segment-sized writes.
type Frame struct {
	pending strings.Builder
	out     *bufio.Writer
	digits  [20]byte
}

// NewFrame returns a Frame that flushes to w.
func NewFrame(w io.Writer) *Frame {
	return &Frame{out: bufio.NewWriterSize(w, 8192)}
}

// Clear queues a full terminal clear ahead of whatever is placed next.
func (f *Frame) Clear() {
	f.pending.WriteString(ClearScreen)
}

func (f *Frame) moveTo(col, row int) {
	f.pending.WriteString("\033[")
	f.pending.Write(strconv.AppendInt(f.digits[:0], int64(row), 10))
	f.pending.WriteByte(';')
	f.pending.Write(strconv.AppendInt(f.digits[:0], int64(col), 10))
	f.pending.WriteByte('H')
}

// Place queues block with its top-left corner at the 1-based col and row.
// Every line gets its own cursor move because a raw terminal does not
// return the carriage on a bare newline.
func (f *Frame) Place(col, row int, block string) {
	for i, line := range strings.Split(block, "\n") {
		f.moveTo(col, row+i)
		f.pending.WriteString(line)
	}
}

// Center queues block in the middle of a width by height terminal. A block
// larger than the terminal is pinned to the top-left corner.
func (f *Frame) Center(width, height int, block string) {
	col := max((width-BlockWidth(block))/2+1, 1)
	row := max((height-BlockHeight(block))/2+1, 1)
	f.Place(col, row, block)
}

// Flush sends the queued frame and empties it.
func (f *Frame) Flush() error {
	data := f.pending.String()
	f.pending.Reset()
	for len(data) > 0 {
		n := min(len(data), segmentSize)
		if _, err := f.out.WriteString(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return f.out.Flush()
}

// TermSizeFunc reports the terminal's columns and rows.
type TermSizeFunc func() (width, height int, err error)

// StdoutSize reads the size of the local terminal.
func StdoutSize() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}
