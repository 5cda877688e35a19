// Package lexer provides single-byte lookahead reading over a
// descriptor stream, plus identifier scanning, for the recursive
// descent parser in internal/parser.
package lexer

import (
	"bufio"
	"io"
)

// Lexer wraps a byte stream with one-byte pushback.
type Lexer struct {
	r   *bufio.Reader
	pos int
}

// New builds a Lexer reading from r.
func New(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r)}
}

// Pos returns the number of bytes consumed so far, for error messages.
func (l *Lexer) Pos() int { return l.pos }

// Next returns the next byte, or io.EOF when the stream is exhausted.
func (l *Lexer) Next() (byte, error) {
	b, err := l.r.ReadByte()
	if err != nil {
		return 0, err
	}
	l.pos++
	return b, nil
}

// Unread pushes the last byte read by Next back onto the stream. It
// may only be called once between calls to Next.
func (l *Lexer) Unread() error {
	if err := l.r.UnreadByte(); err != nil {
		return err
	}
	l.pos--
	return nil
}

// Peek returns the next byte without consuming it.
func (l *Lexer) Peek() (byte, error) {
	b, err := l.Next()
	if err != nil {
		return 0, err
	}
	if err := l.Unread(); err != nil {
		return 0, err
	}
	return b, nil
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameCont(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

// ReadName scans a [A-Za-z_][A-Za-z0-9_]* identifier. It returns an
// empty string and io.EOF if the stream ends before any byte is read,
// and returns what it has with no error once a non-name byte is
// encountered (that byte is pushed back).
func (l *Lexer) ReadName() (string, error) {
	first, err := l.Next()
	if err != nil {
		return "", err
	}
	if !isNameStart(first) {
		_ = l.Unread()
		return "", nil
	}

	buf := []byte{first}
	for {
		c, err := l.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if !isNameCont(c) {
			_ = l.Unread()
			break
		}
		buf = append(buf, c)
	}
	return string(buf), nil
}
