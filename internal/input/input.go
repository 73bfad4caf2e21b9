package input

import (
	"bufio"
	"strings"
)

// SlotKeys maps slot indices to keys, in board order. p, q and r are reserved
// for pause, quit and reset.
const SlotKeys = "1234567890abcdefghijklmnostuvwxyz"

// Input represents the keys pressed since the previous frame.
type Input struct {
	Quit    bool  // q or Ctrl-C, also set once the reader is exhausted
	Start   bool  // Space or Enter
	Pause   bool  // p or Escape
	Reset   bool  // r
	Hits    []int // Slot indices in press order, repeats kept
	Pressed []byte
}

// Any reports whether a key was pressed.
func (in Input) Any() bool {
	return len(in.Pressed) > 0
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch chan byte
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// The channel is closed when r returns an error.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking) and parses them.
func ReadInput(s *Stream) Input {
	var buf []byte
	closed := false

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := Parse(buf)
	if closed {
		in.Quit = true
	}
	return in
}

// Parse turns raw terminal bytes into an Input. Escape sequences such as
// arrow keys are skipped; a lone ESC is a pause.
func Parse(buf []byte) Input {
	in := Input{Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' {
			if i+1 < len(buf) && buf[i+1] == '[' {
				// CSI sequence: skip to the final byte
				j := i + 2
				for j < len(buf) && (buf[j] < 0x40 || buf[j] > 0x7e) {
					j++
				}
				i = j
				continue
			}
			in.Pause = true
			continue
		}
		applyByte(&in, b)
	}
	return in
}

// applyByte records the action for a single key.
func applyByte(in *Input, b byte) {
	switch b {
	case 'q', 'Q', '\x03':
		in.Quit = true
	case ' ', '\n', '\r':
		in.Start = true
	case 'p', 'P':
		in.Pause = true
	case 'r', 'R':
		in.Reset = true
	default:
		if i := SlotIndex(b); i >= 0 {
			in.Hits = append(in.Hits, i)
		}
	}
}

// SlotIndex returns the slot for key b, or -1.
func SlotIndex(b byte) int {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	return strings.IndexByte(SlotKeys, b)
}

// SlotKey returns the key label for slot i, or a blank for slots without a key.
func SlotKey(i int) byte {
	if i < 0 || i >= len(SlotKeys) {
		return ' '
	}
	return SlotKeys[i]
}
