package termwright

// Key names a symbolic control key. The constants use the conventional
// terminal names so backends that speak them natively (tmux) can pass
// them through unchanged.
type Key string

const (
	KeyNone   Key = ""
	KeyEnter  Key = "Enter"
	KeyTab    Key = "Tab"
	KeyEscape Key = "Escape"
	KeyUp     Key = "Up"
	KeyDown   Key = "Down"
	KeyCtrlC  Key = "C-c"
	KeyCtrlD  Key = "C-d"
)

// Sequence returns the raw control sequence equivalent of the key, for
// backends that write bytes directly into a terminal.
func (k Key) Sequence() string {
	switch k {
	case KeyEnter:
		return "\r"
	case KeyTab:
		return "\t"
	case KeyEscape:
		return "\x1b"
	case KeyUp:
		return "\x1b[A"
	case KeyDown:
		return "\x1b[B"
	case KeyCtrlC:
		return "\x03"
	case KeyCtrlD:
		return "\x04"
	}
	return ""
}

// KeyEvent is one unit of session input: either a literal text payload
// or a named control key, never both.
type KeyEvent struct {
	Text string
	Key  Key
}

// Text builds a literal-text key event.
func Text(s string) KeyEvent { return KeyEvent{Text: s} }

// Press builds a symbolic-key event.
func Press(k Key) KeyEvent { return KeyEvent{Key: k} }

func (ev KeyEvent) String() string {
	if ev.Key != KeyNone {
		return "<" + string(ev.Key) + ">"
	}
	return ev.Text
}
